package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/models"
)

// NormalizeCode canonicalizes a user-supplied coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a coupon against the validity window, the usage cap and
// the minimum purchase threshold, in that order, returning the first
// failing check. Pure; no side effects.
func Validate(c *models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if now.Before(c.ValidFrom) {
		return errs.ErrCouponNotYetActive
	}
	if now.After(c.ValidUntil) {
		return errs.ErrCouponExpired
	}
	if c.UsageCount >= c.MaxUsage {
		return errs.ErrCouponUsageCapReached
	}
	if subtotal.LessThan(c.MinPurchase) {
		return errs.ErrCouponBelowMinPurchase
	}
	return nil
}

// CalculateDiscount computes the discount a coupon grants on a subtotal.
// Percentage coupons interpret Value as a percentage of the subtotal, fixed
// coupons as a flat amount. The result is clamped to [0, subtotal] and
// rounded half-up to two decimal places.
func CalculateDiscount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.Type {
	case models.DiscountFixed:
		discount = c.Value
	default:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
	}
	discount = discount.Round(2)
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
