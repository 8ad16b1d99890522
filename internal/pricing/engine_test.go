package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ashendes/bookstore/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s: got %s want %s", label, got, want)
}

func tenPercentCoupon() *models.Coupon {
	return &models.Coupon{
		Code:        "SAVE10",
		Type:        models.DiscountPercentage,
		Value:       dec("10"),
		ValidFrom:   time.Now().Add(-time.Hour),
		ValidUntil:  time.Now().Add(time.Hour),
		MaxUsage:    10,
		MinPurchase: dec("500"),
	}
}

func testConfig() Config {
	return Config{
		FreeShippingThreshold: dec("1000"),
		FlatShippingFee:       dec("100"),
		FirstTimeDiscount:     dec("50"),
		OrderValueTiers: []Tier{
			{Threshold: dec("2000"), Discount: dec("100")},
			{Threshold: dec("5000"), Discount: dec("300")},
		},
	}
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("0.10"), Quantity: 3},
		{UnitPrice: dec("19.99"), Quantity: 2},
	}
	assertDec(t, "40.28", Subtotal(lines), "subtotal")
	assertDec(t, "0", Subtotal(nil), "empty subtotal")
}

func TestQuoteFreeShippingAtThreshold(t *testing.T) {
	// 500.00 x 2, no coupon: subtotal 1000, free shipping, total 1000
	q := testConfig().Quote([]Line{{UnitPrice: dec("500.00"), Quantity: 2}}, nil, false)

	assertDec(t, "1000.00", q.Subtotal, "subtotal")
	assertDec(t, "0", q.CouponDiscount, "coupon discount")
	assertDec(t, "0", q.ShippingFee, "shipping fee")
	assertDec(t, "1000.00", q.TotalAmount, "total")
}

func TestQuoteCouponPushesBackUnderShippingThreshold(t *testing.T) {
	// Same cart plus 10% coupon: discount 100, post-coupon 900 < 1000 so
	// shipping comes back, total lands on 1000 again
	q := testConfig().Quote([]Line{{UnitPrice: dec("500.00"), Quantity: 2}}, tenPercentCoupon(), false)

	assertDec(t, "1000.00", q.Subtotal, "subtotal")
	assertDec(t, "100.00", q.CouponDiscount, "coupon discount")
	assertDec(t, "100", q.ShippingFee, "shipping fee")
	assertDec(t, "1000.00", q.TotalAmount, "total")
}

func TestQuoteFirstTimeBuyer(t *testing.T) {
	q := testConfig().Quote([]Line{{UnitPrice: dec("500.00"), Quantity: 2}}, nil, true)

	assertDec(t, "50", q.FirstTimeDiscount, "first time discount")
	assertDec(t, "50", q.TotalDiscount, "total discount")
	assertDec(t, "950.00", q.TotalAmount, "total")

	// Discounts stack additively off the original subtotal
	q = testConfig().Quote([]Line{{UnitPrice: dec("500.00"), Quantity: 2}}, tenPercentCoupon(), true)
	assertDec(t, "150.00", q.TotalDiscount, "stacked discount")
	assertDec(t, "950.00", q.TotalAmount, "stacked total")
}

func TestQuoteOrderValueTiers(t *testing.T) {
	cfg := testConfig()

	q := cfg.Quote([]Line{{UnitPrice: dec("1250.00"), Quantity: 2}}, nil, false)
	assertDec(t, "100", q.OrderValueDiscount, "first tier")

	q = cfg.Quote([]Line{{UnitPrice: dec("3000.00"), Quantity: 2}}, nil, false)
	assertDec(t, "300", q.OrderValueDiscount, "highest tier wins")

	q = cfg.Quote([]Line{{UnitPrice: dec("100.00"), Quantity: 1}}, nil, false)
	assertDec(t, "0", q.OrderValueDiscount, "below all tiers")
}

func TestQuoteUnsortedTierTable(t *testing.T) {
	// Operators configure tiers as free-form env text, so the table can
	// arrive in any order; the highest qualifying threshold must still win
	cfg := testConfig()
	cfg.OrderValueTiers = []Tier{
		{Threshold: dec("5000"), Discount: dec("300")},
		{Threshold: dec("2000"), Discount: dec("100")},
	}

	q := cfg.Quote([]Line{{UnitPrice: dec("3000.00"), Quantity: 2}}, nil, false)
	assertDec(t, "300", q.OrderValueDiscount, "highest tier wins when unsorted")

	q = cfg.Quote([]Line{{UnitPrice: dec("1250.00"), Quantity: 2}}, nil, false)
	assertDec(t, "100", q.OrderValueDiscount, "lower tier still reachable")
}

func TestQuoteTotalFlooredAtZero(t *testing.T) {
	cpn := &models.Coupon{Code: "ALL", Type: models.DiscountFixed, Value: dec("100")}
	q := testConfig().Quote([]Line{{UnitPrice: dec("20.00"), Quantity: 1}}, cpn, true)

	// coupon clamps to 20, first-time 50 still stacks; total floors at 0
	assertDec(t, "20.00", q.CouponDiscount, "clamped coupon")
	assertDec(t, "0", q.TotalAmount, "floored total")
}

func TestQuoteEmptyCart(t *testing.T) {
	q := testConfig().Quote(nil, nil, false)
	assertDec(t, "0", q.Subtotal, "subtotal")
	assertDec(t, "0", q.ShippingFee, "no shipping on empty cart")
	assertDec(t, "0", q.TotalAmount, "total")
}

func TestQuoteRoundsHalfUp(t *testing.T) {
	// 3 x 33.335 = 100.005 -> 100.01
	q := testConfig().Quote([]Line{{UnitPrice: dec("33.335"), Quantity: 3}}, nil, false)
	assertDec(t, "100.01", q.Subtotal, "half-up subtotal")
}
