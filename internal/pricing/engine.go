package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ashendes/bookstore/internal/coupon"
	"github.com/ashendes/bookstore/internal/models"
)

// Line is one priced cart or order line. Callers pass the current book
// price for live carts and the frozen unit price for settled orders.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Tier grants a flat discount once the subtotal reaches Threshold
type Tier struct {
	Threshold decimal.Decimal
	Discount  decimal.Decimal
}

// Config carries the pricing rule tables
type Config struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	FirstTimeDiscount     decimal.Decimal
	// OrderValueTiers may arrive in any order; the tier with the highest
	// threshold the subtotal reaches applies.
	OrderValueTiers []Tier
}

// DefaultConfig returns the stock pricing rules; main overrides from env
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(100),
		FirstTimeDiscount:     decimal.NewFromInt(50),
		OrderValueTiers: []Tier{
			{Threshold: decimal.NewFromInt(2000), Discount: decimal.NewFromInt(100)},
			{Threshold: decimal.NewFromInt(5000), Discount: decimal.NewFromInt(300)},
		},
	}
}

// Quote is the complete price breakdown for a set of lines
type Quote struct {
	Subtotal           decimal.Decimal
	CouponDiscount     decimal.Decimal
	OrderValueDiscount decimal.Decimal
	FirstTimeDiscount  decimal.Decimal
	TotalDiscount      decimal.Decimal
	ShippingFee        decimal.Decimal
	TotalAmount        decimal.Decimal
}

// Subtotal sums unit price times quantity over all lines, rounded half-up
// to two decimal places
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// Quote computes the full stacked price breakdown. Discounts stack
// additively off the original subtotal; shipping is waived when the
// post-coupon amount reaches the free shipping threshold. The final total
// is floored at zero.
func (cfg Config) Quote(lines []Line, cpn *models.Coupon, firstTimeBuyer bool) Quote {
	q := Quote{
		Subtotal:           Subtotal(lines),
		CouponDiscount:     decimal.Zero,
		OrderValueDiscount: decimal.Zero,
		FirstTimeDiscount:  decimal.Zero,
	}

	if cpn != nil {
		q.CouponDiscount = coupon.CalculateDiscount(cpn, q.Subtotal)
	}

	var best *Tier
	for i := range cfg.OrderValueTiers {
		tier := &cfg.OrderValueTiers[i]
		if q.Subtotal.GreaterThanOrEqual(tier.Threshold) &&
			(best == nil || tier.Threshold.GreaterThan(best.Threshold)) {
			best = tier
		}
	}
	if best != nil {
		q.OrderValueDiscount = best.Discount.Round(2)
	}

	if firstTimeBuyer {
		q.FirstTimeDiscount = cfg.FirstTimeDiscount.Round(2)
	}

	switch {
	case q.Subtotal.IsZero():
		// nothing to ship
		q.ShippingFee = decimal.Zero
	case q.Subtotal.Sub(q.CouponDiscount).GreaterThanOrEqual(cfg.FreeShippingThreshold):
		q.ShippingFee = decimal.Zero
	default:
		q.ShippingFee = cfg.FlatShippingFee.Round(2)
	}

	q.TotalDiscount = q.CouponDiscount.Add(q.OrderValueDiscount).Add(q.FirstTimeDiscount).Round(2)

	total := q.Subtotal.Sub(q.TotalDiscount).Add(q.ShippingFee).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}
	q.TotalAmount = total
	return q
}
