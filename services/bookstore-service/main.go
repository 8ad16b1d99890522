package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ashendes/bookstore/internal/cart"
	"github.com/ashendes/bookstore/internal/checkout"
	"github.com/ashendes/bookstore/internal/metrics"
	"github.com/ashendes/bookstore/internal/models"
	"github.com/ashendes/bookstore/internal/notify"
	"github.com/ashendes/bookstore/internal/pricing"
	"github.com/ashendes/bookstore/internal/store"
)

// BookstoreService wires the cart manager, the checkout orchestrator and
// the store behind the HTTP surface
type BookstoreService struct {
	store    *store.Memory
	carts    *cart.Manager
	checkout *checkout.Orchestrator
}

var bookstore *BookstoreService

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	cfg := pricingConfigFromEnv()

	st := store.NewMemory()
	if getEnv("SEED_DEMO_DATA", "true") == "true" {
		seedDemoData(st)
	}

	var notifier checkout.Notifier
	if url := getEnv("RECEIPT_WEBHOOK_URL", ""); url != "" {
		notifier = notify.NewReceipts(url)
	}

	bookstore = &BookstoreService{
		store:    st,
		carts:    cart.NewManager(st, cfg),
		checkout: checkout.New(st, cfg, notifier),
	}

	router := gin.Default()

	// Add Prometheus middleware
	router.Use(metrics.PrometheusMiddleware("bookstore-service"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Catalog endpoints
	router.GET("/books", listBooks)
	router.GET("/books/:bookId", getBook)

	// Cart endpoints
	router.GET("/cart", getCart)
	router.POST("/cart/items", addCartItem)
	router.PATCH("/cart/items/:bookId", updateCartItem)
	router.DELETE("/cart/items/:bookId", removeCartItem)
	router.POST("/cart/coupon", applyCoupon)
	router.DELETE("/cart/coupon", removeCoupon)

	// Order endpoints
	router.POST("/checkout", checkoutCart)
	router.GET("/orders", listOrders)
	router.GET("/orders/:orderId", getOrder)
	router.POST("/payments/:orderId/status", updatePaymentStatus)

	// Admin endpoints
	router.POST("/admin/books", createBook)
	router.PUT("/admin/books/:bookId", updateBook)
	router.POST("/admin/coupons", createCoupon)
	router.POST("/admin/customers", createCustomer)
	router.POST("/admin/orders/:orderId/status", updateOrderStatus)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := getEnv("PORT", "8080")
	log.WithFields(log.Fields{
		"free_shipping_threshold": cfg.FreeShippingThreshold.String(),
		"flat_shipping_fee":       cfg.FlatShippingFee.String(),
	}).Info("Bookstore Service starting on port " + port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// pricingConfigFromEnv builds the pricing rule tables from env with the
// defaults as fallback
func pricingConfigFromEnv() pricing.Config {
	cfg := pricing.DefaultConfig()
	cfg.FreeShippingThreshold = decimalEnv("FREE_SHIPPING_THRESHOLD", cfg.FreeShippingThreshold)
	cfg.FlatShippingFee = decimalEnv("FLAT_SHIPPING_FEE", cfg.FlatShippingFee)
	cfg.FirstTimeDiscount = decimalEnv("FIRST_TIME_DISCOUNT", cfg.FirstTimeDiscount)

	// ORDER_VALUE_TIERS format: "2000:100,5000:300" (threshold:discount)
	if raw := getEnv("ORDER_VALUE_TIERS", ""); raw != "" {
		var tiers []pricing.Tier
		for _, part := range strings.Split(raw, ",") {
			fields := strings.SplitN(part, ":", 2)
			if len(fields) != 2 {
				continue
			}
			threshold, err1 := decimal.NewFromString(strings.TrimSpace(fields[0]))
			discount, err2 := decimal.NewFromString(strings.TrimSpace(fields[1]))
			if err1 != nil || err2 != nil {
				log.Warn("Ignoring malformed order value tier: ", part)
				continue
			}
			tiers = append(tiers, pricing.Tier{Threshold: threshold, Discount: discount})
		}
		if len(tiers) > 0 {
			cfg.OrderValueTiers = tiers
		}
	}
	return cfg
}

// seedDemoData loads a small catalog, a demo coupon and a demo customer
func seedDemoData(st *store.Memory) {
	books := []*models.Book{
		{ID: "book-1", Title: "The Go Programming Language", Author: "Donovan & Kernighan", Category: "Programming", Price: decimal.NewFromFloat(500.00), Stock: 25, ISBN: "9780134190440"},
		{ID: "book-2", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Category: "Programming", Price: decimal.NewFromFloat(650.00), Stock: 12, ISBN: "9781449373320"},
		{ID: "book-3", Title: "The Pragmatic Programmer", Author: "Hunt & Thomas", Category: "Programming", Price: decimal.NewFromFloat(450.00), Stock: 30, ISBN: "9780135957059"},
		{ID: "book-4", Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", Category: "Fantasy", Price: decimal.NewFromFloat(220.00), Stock: 8, ISBN: "9780547773742"},
		{ID: "book-5", Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Category: "Science Fiction", Price: decimal.NewFromFloat(240.00), Stock: 0, ISBN: "9780441478125"},
	}
	now := time.Now()
	err := st.RunInTransaction(context.Background(), func(tx store.Tx) error {
		for _, b := range books {
			tx.PutBook(b)
			metrics.StockLevel.WithLabelValues(b.ID).Set(float64(b.Stock))
		}
		tx.PutCoupon(&models.Coupon{
			Code:        "WELCOME10",
			Type:        models.DiscountPercentage,
			Value:       decimal.NewFromInt(10),
			ValidFrom:   now.AddDate(0, -1, 0),
			ValidUntil:  now.AddDate(0, 11, 0),
			MaxUsage:    1000,
			MinPurchase: decimal.NewFromInt(500),
		})
		tx.PutCustomer(&models.Customer{
			ID:               "customer-1",
			AccountID:        "demo",
			Name:             "Demo Customer",
			Phone:            "555-0100",
			Address:          "1 Demo Street",
			FirstTimeBuyer:   true,
			RegistrationDate: now,
		})
		return nil
	})
	if err != nil {
		log.Fatal("Failed to seed demo data: ", err)
	}
	log.WithField("books", len(books)).Info("Demo data seeded")
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// decimalEnv parses a decimal environment variable with fallback
func decimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.WithField("key", key).Warn("Invalid decimal in env, using fallback: ", err)
		return fallback
	}
	return d
}
