package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem represents a (cart, book) line; the pair is unique per cart
type CartItem struct {
	CartID   string    `json:"cart_id"`
	BookID   string    `json:"book_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// Cart is a customer's single active cart. Totals are derived by the
// pricing engine, never stored.
type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	CouponCode string     `json:"coupon_code,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FindItem returns the line for a book, or nil if the book is not in the cart
func (c *Cart) FindItem(bookID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return &c.Items[i]
		}
	}
	return nil
}

// Cart operation warnings (soft outcomes reported alongside success)
const (
	WarnStockLimitReached = "stock_limit_reached"
	WarnNoCouponApplied   = "no_coupon_applied"
)

// AddItemRequest represents the request to add a book to the cart
type AddItemRequest struct {
	BookID   string `json:"book_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// UpdateQuantityRequest adjusts a cart line by a signed delta
type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ApplyCouponRequest represents the request to attach a coupon to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CartItemView is a cart line joined with catalog data and a derived subtotal
type CartItemView struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the priced cart returned to callers
type CartView struct {
	CartID             string          `json:"cart_id"`
	Items              []CartItemView  `json:"items"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	CouponDiscount     decimal.Decimal `json:"coupon_discount"`
	OrderValueDiscount decimal.Decimal `json:"order_value_discount"`
	FirstTimeDiscount  decimal.Decimal `json:"first_time_discount"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	ShippingFee        decimal.Decimal `json:"shipping_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Warning            string          `json:"warning,omitempty"`
}
