package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashendes/bookstore/internal/metrics"
	"github.com/ashendes/bookstore/internal/models"
)

func cartOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CartOperationsTotal.WithLabelValues(op, result).Inc()
}

// getCart returns the customer's priced cart, creating it on first access
func getCart(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	view, err := bookstore.carts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// addCartItem adds a book to the cart
func addCartItem(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	view, err := bookstore.carts.AddItem(c.Request.Context(), id, req.BookID, req.Quantity)
	cartOp("add_item", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateCartItem adjusts a cart line quantity by a signed delta
func updateCartItem(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	view, err := bookstore.carts.UpdateQuantity(c.Request.Context(), id, c.Param("bookId"), req.Delta)
	cartOp("update_quantity", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// removeCartItem deletes a cart line
func removeCartItem(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	view, err := bookstore.carts.RemoveItem(c.Request.Context(), id, c.Param("bookId"))
	cartOp("remove_item", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// applyCoupon validates and attaches a coupon to the cart
func applyCoupon(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req models.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	view, err := bookstore.carts.ApplyCoupon(c.Request.Context(), id, req.Code)
	cartOp("apply_coupon", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// removeCoupon detaches the applied coupon, if any
func removeCoupon(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	view, err := bookstore.carts.RemoveCoupon(c.Request.Context(), id)
	cartOp("remove_coupon", err)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
