package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validCoupon() *models.Coupon {
	return &models.Coupon{
		Code:        "SAVE10",
		Type:        models.DiscountPercentage,
		Value:       dec("10"),
		ValidFrom:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:  time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		MaxUsage:    100,
		UsageCount:  0,
		MinPurchase: dec("500"),
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("Save10"))
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mutate   func(c *models.Coupon)
		subtotal string
		wantErr  error
	}{
		{name: "valid", mutate: func(c *models.Coupon) {}, subtotal: "1000", wantErr: nil},
		{name: "subtotal exactly at minimum", mutate: func(c *models.Coupon) {}, subtotal: "500", wantErr: nil},
		{
			name:     "not yet active",
			mutate:   func(c *models.Coupon) { c.ValidFrom = now.Add(time.Hour) },
			subtotal: "1000",
			wantErr:  errs.ErrCouponNotYetActive,
		},
		{
			name:     "expired",
			mutate:   func(c *models.Coupon) { c.ValidUntil = now.Add(-time.Hour) },
			subtotal: "1000",
			wantErr:  errs.ErrCouponExpired,
		},
		{
			name:     "usage cap reached",
			mutate:   func(c *models.Coupon) { c.UsageCount = c.MaxUsage },
			subtotal: "1000",
			wantErr:  errs.ErrCouponUsageCapReached,
		},
		{
			name:     "below minimum purchase",
			mutate:   func(c *models.Coupon) {},
			subtotal: "499.99",
			wantErr:  errs.ErrCouponBelowMinPurchase,
		},
		{
			name: "window check wins over usage cap",
			mutate: func(c *models.Coupon) {
				c.ValidUntil = now.Add(-time.Hour)
				c.UsageCount = c.MaxUsage
			},
			subtotal: "1000",
			wantErr:  errs.ErrCouponExpired,
		},
		{
			name: "usage cap check wins over minimum purchase",
			mutate: func(c *models.Coupon) {
				c.UsageCount = c.MaxUsage
			},
			subtotal: "10",
			wantErr:  errs.ErrCouponUsageCapReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(c)
			err := Validate(c, dec(tt.subtotal), now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		ctype    string
		value    string
		subtotal string
		want     string
	}{
		{name: "ten percent", ctype: models.DiscountPercentage, value: "10", subtotal: "1000", want: "100"},
		{name: "percentage rounds half up", ctype: models.DiscountPercentage, value: "10", subtotal: "123.45", want: "12.35"},
		{name: "percentage over hundred clamps to subtotal", ctype: models.DiscountPercentage, value: "150", subtotal: "200", want: "200"},
		{name: "fixed amount", ctype: models.DiscountFixed, value: "50", subtotal: "1000", want: "50"},
		{name: "fixed clamps to subtotal", ctype: models.DiscountFixed, value: "500", subtotal: "300", want: "300"},
		{name: "negative value clamps to zero", ctype: models.DiscountFixed, value: "-10", subtotal: "300", want: "0"},
		{name: "zero subtotal", ctype: models.DiscountPercentage, value: "10", subtotal: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			c.Type = tt.ctype
			c.Value = dec(tt.value)

			got := CalculateDiscount(c, dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalculateDiscountNeverExceedsSubtotal(t *testing.T) {
	subtotals := []string{"0", "0.01", "1", "99.99", "1000", "123456.78"}
	values := []string{"0", "5", "50", "100", "250", "-3"}

	for _, ctype := range []string{models.DiscountPercentage, models.DiscountFixed} {
		for _, s := range subtotals {
			for _, v := range values {
				c := validCoupon()
				c.Type = ctype
				c.Value = dec(v)
				subtotal := dec(s)

				got := CalculateDiscount(c, subtotal)
				require.False(t, got.IsNegative(), "%s %s on %s went negative", ctype, v, s)
				require.True(t, got.LessThanOrEqual(subtotal), "%s %s on %s exceeds subtotal", ctype, v, s)
			}
		}
	}
}
