package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/metrics"
)

// writeError maps a typed core error onto an HTTP status and a uniform
// error payload
func writeError(c *gin.Context, err error) {
	var checkoutErr *errs.CheckoutError
	stage := ""
	if errors.As(err, &checkoutErr) {
		stage = checkoutErr.Stage
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrBookNotFound),
		errors.Is(err, errs.ErrCustomerNotFound),
		errors.Is(err, errs.ErrOrderNotFound),
		errors.Is(err, errs.ErrPaymentNotFound),
		errors.Is(err, errs.ErrCartNotFound),
		errors.Is(err, errs.ErrItemNotFound),
		errors.Is(err, errs.ErrCouponNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrOutOfStock):
		status = http.StatusConflict
	case errs.IsCouponError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrEmptyCart),
		errors.Is(err, errs.ErrInvalidQuantity),
		errors.Is(err, errs.ErrInvalidTransition):
		status = http.StatusBadRequest
	}

	if errs.IsCouponError(err) && !errors.Is(err, errs.ErrCouponNotFound) {
		metrics.CouponRejectionsTotal.WithLabelValues(errs.CouponReason(err)).Inc()
	}

	payload := gin.H{"error": err.Error()}
	if stage != "" {
		payload["stage"] = stage
	}
	c.JSON(status, payload)
}

// customerID extracts the authenticated customer from the request. The
// identity provider upstream is trusted; an absent header is unauthenticated.
func customerID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Customer-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Customer-ID header"})
		return "", false
	}
	return id, true
}
