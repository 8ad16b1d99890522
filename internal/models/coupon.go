package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType constants
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon represents a discount code. Only UsageCount is mutated after
// creation, and only by a successful checkout.
type Coupon struct {
	Code        string          `json:"code"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidUntil  time.Time       `json:"valid_until"`
	MaxUsage    int             `json:"max_usage"`
	UsageCount  int             `json:"usage_count"`
	MinPurchase decimal.Decimal `json:"min_purchase"`
}

// CouponUsage is an immutable audit record, one per redemption
type CouponUsage struct {
	ID             string          `json:"id"`
	CouponCode     string          `json:"coupon_code"`
	CustomerID     string          `json:"customer_id"`
	OrderID        string          `json:"order_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	UsedAt         time.Time       `json:"used_at"`
}

// CreateCouponRequest represents the admin request to create a coupon
type CreateCouponRequest struct {
	Code        string          `json:"code" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=percentage fixed"`
	Value       decimal.Decimal `json:"value" binding:"required"`
	ValidFrom   time.Time       `json:"valid_from" binding:"required"`
	ValidUntil  time.Time       `json:"valid_until" binding:"required"`
	MaxUsage    int             `json:"max_usage" binding:"required,gt=0"`
	MinPurchase decimal.Decimal `json:"min_purchase"`
}
