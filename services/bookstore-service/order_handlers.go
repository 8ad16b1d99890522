package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ashendes/bookstore/internal/metrics"
	"github.com/ashendes/bookstore/internal/models"
)

// checkoutCart converts the customer's cart into an order
func checkoutCart(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, models.CheckoutResponse{
			Status:  "failed",
			Message: "Invalid request: " + err.Error(),
		})
		return
	}

	start := time.Now()
	order, err := bookstore.checkout.Checkout(c.Request.Context(), id, req)
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		log.WithField("customer_id", id).Warn("Checkout failed: ", err)
		writeError(c, err)
		return
	}

	metrics.OrdersTotal.WithLabelValues(order.Status).Inc()
	metrics.PaymentAmount.Observe(order.TotalAmount.InexactFloat64())
	for _, item := range order.Items {
		if book, err := bookstore.store.GetBook(c.Request.Context(), item.BookID); err == nil {
			metrics.StockLevel.WithLabelValues(book.ID).Set(float64(book.Stock))
		}
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		OrderID: order.ID,
		Status:  order.Status,
		Message: "Order placed successfully",
		Total:   order.TotalAmount,
	})
}

// listOrders returns the customer's order history
func listOrders(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	orders := bookstore.store.ListOrdersByCustomer(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder returns one order with its payment
func getOrder(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	order, err := bookstore.store.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if order.CustomerID != id {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	payment, err := bookstore.store.GetPaymentByOrder(c.Request.Context(), order.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "payment": payment})
}

// updatePaymentStatus records a payment status change and lets the
// orchestrator apply the order transition it implies
func updatePaymentStatus(c *gin.Context) {
	var req models.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	payment, err := bookstore.checkout.OnPaymentStatusChanged(
		c.Request.Context(), c.Param("orderId"), req.Status, req.TransactionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// updateOrderStatus applies an admin order status transition
func updateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := bookstore.checkout.UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
