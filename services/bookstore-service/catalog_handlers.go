package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ashendes/bookstore/internal/coupon"
	"github.com/ashendes/bookstore/internal/metrics"
	"github.com/ashendes/bookstore/internal/models"
	"github.com/ashendes/bookstore/internal/store"
)

// listBooks returns the catalog
func listBooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"books": bookstore.store.ListBooks(c.Request.Context())})
}

// getBook returns one catalog book
func getBook(c *gin.Context) {
	book, err := bookstore.store.GetBook(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// createBook adds a catalog book
func createBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	book := &models.Book{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		ISBN:        req.ISBN,
		Description: req.Description,
	}
	err := bookstore.store.RunInTransaction(c.Request.Context(), func(tx store.Tx) error {
		tx.PutBook(book)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.StockLevel.WithLabelValues(book.ID).Set(float64(book.Stock))
	c.JSON(http.StatusCreated, book)
}

// updateBook changes a book's price or stock
func updateBook(c *gin.Context) {
	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var book *models.Book
	err := bookstore.store.RunInTransaction(c.Request.Context(), func(tx store.Tx) error {
		var err error
		book, err = tx.Book(c.Param("bookId"))
		if err != nil {
			return err
		}
		if req.Price != nil {
			book.Price = req.Price.Round(2)
		}
		if req.Stock != nil {
			book.Stock = *req.Stock
		}
		tx.PutBook(book)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.StockLevel.WithLabelValues(book.ID).Set(float64(book.Stock))
	c.JSON(http.StatusOK, book)
}

// createCoupon adds a coupon
func createCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	cpn := &models.Coupon{
		Code:        coupon.NormalizeCode(req.Code),
		Type:        req.Type,
		Value:       req.Value,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		MaxUsage:    req.MaxUsage,
		MinPurchase: req.MinPurchase,
	}
	err := bookstore.store.RunInTransaction(c.Request.Context(), func(tx store.Tx) error {
		tx.PutCoupon(cpn)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithField("code", cpn.Code).Info("Coupon created")
	c.JSON(http.StatusCreated, cpn)
}

// createCustomer registers a customer profile
func createCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	customer := &models.Customer{
		ID:               uuid.New().String(),
		AccountID:        req.AccountID,
		Name:             req.Name,
		Phone:            req.Phone,
		Address:          req.Address,
		FirstTimeBuyer:   true,
		RegistrationDate: time.Now(),
	}
	err := bookstore.store.RunInTransaction(c.Request.Context(), func(tx store.Tx) error {
		tx.PutCustomer(customer)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}
