package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a frozen order line: unit price and subtotal are copied at
// creation time and never track later catalog changes
type OrderItem struct {
	OrderID   string          `json:"order_id"`
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// DeliveryInfo is the delivery snapshot captured on the order
type DeliveryInfo struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	Notes         string `json:"notes"`
}

// Order represents a completed purchase. Immutable after creation except
// for status transitions.
type Order struct {
	ID                 string          `json:"id"`
	CustomerID         string          `json:"customer_id"`
	Delivery           DeliveryInfo    `json:"delivery"`
	Items              []OrderItem     `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	CouponDiscount     decimal.Decimal `json:"coupon_discount"`
	OrderValueDiscount decimal.Decimal `json:"order_value_discount"`
	FirstTimeDiscount  decimal.Decimal `json:"first_time_discount"`
	ShippingFee        decimal.Decimal `json:"shipping_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Status             string          `json:"status"`
	OrderDate          time.Time       `json:"order_date"`
}

// OrderStatus constants
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// CheckoutRequest represents the request to convert the cart into an order
type CheckoutRequest struct {
	Delivery      DeliveryInfo `json:"delivery" binding:"required"`
	PaymentMethod string       `json:"payment_method" binding:"required,oneof=cash card upi wallet"`
}

// CheckoutResponse represents the result of a checkout attempt
type CheckoutResponse struct {
	OrderID string          `json:"order_id,omitempty"`
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Total   decimal.Decimal `json:"total"`
}

// UpdateOrderStatusRequest represents an admin order status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
}
