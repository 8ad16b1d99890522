package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/models"
	"github.com/ashendes/bookstore/internal/pricing"
	"github.com/ashendes/bookstore/internal/store"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestManager(t *testing.T) (*Manager, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	err := st.RunInTransaction(context.Background(), func(tx store.Tx) error {
		tx.PutCustomer(&models.Customer{ID: "cust-1", Name: "Ada", FirstTimeBuyer: false})
		tx.PutBook(&models.Book{ID: "b1", Title: "Book One", Price: dec("500.00"), Stock: 5})
		tx.PutBook(&models.Book{ID: "b2", Title: "Book Two", Price: dec("240.00"), Stock: 0})
		tx.PutBook(&models.Book{ID: "b3", Title: "Book Three", Price: dec("100.00"), Stock: 2})
		tx.PutCoupon(&models.Coupon{
			Code:        "SAVE10",
			Type:        models.DiscountPercentage,
			Value:       dec("10"),
			ValidFrom:   testNow.Add(-time.Hour),
			ValidUntil:  testNow.Add(time.Hour),
			MaxUsage:    10,
			MinPurchase: dec("500"),
		})
		return nil
	})
	require.NoError(t, err)

	m := NewManager(st, pricing.DefaultConfig())
	m.now = func() time.Time { return testNow }
	return m, st
}

func TestGetCreatesCartLazily(t *testing.T) {
	m, st := newTestManager(t)

	view, err := m.Get(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalAmount.IsZero())

	cart, err := st.GetCartByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", cart.CustomerID)
}

func TestGetUnknownCustomer(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, errs.ErrCustomerNotFound)
}

func TestAddItemAccumulatesSingleLine(t *testing.T) {
	m, st := newTestManager(t)

	_, err := m.AddItem(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)
	view, err := m.AddItem(context.Background(), "cust-1", "b1", 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Empty(t, view.Warning)

	cart, err := st.GetCartByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
}

func TestAddItemClampsAtStock(t *testing.T) {
	m, _ := newTestManager(t)

	view, err := m.AddItem(context.Background(), "cust-1", "b3", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, models.WarnStockLimitReached, view.Warning)

	// further adds stay clamped, still one line
	view, err = m.AddItem(context.Background(), "cust-1", "b3", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, models.WarnStockLimitReached, view.Warning)
}

func TestAddItemOutOfStock(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.AddItem(context.Background(), "cust-1", "b2", 1)
	assert.ErrorIs(t, err, errs.ErrOutOfStock)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	m, _ := newTestManager(t)

	view, err := m.AddItem(context.Background(), "cust-1", "b1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)

	_, err = m.AddItem(context.Background(), "cust-1", "b1", -2)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
}

func TestUpdateQuantity(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)

	view, err := m.UpdateQuantity(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	// increase past stock clamps with a warning
	view, err = m.UpdateQuantity(context.Background(), "cust-1", "b1", 10)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, models.WarnStockLimitReached, view.Warning)

	// decrease works down to one
	view, err = m.UpdateQuantity(context.Background(), "cust-1", "b1", -4)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)

	// decreasing to zero is rejected, removal is a distinct operation
	_, err = m.UpdateQuantity(context.Background(), "cust-1", "b1", -1)
	assert.ErrorIs(t, err, errs.ErrInvalidQuantity)

	_, err = m.UpdateQuantity(context.Background(), "cust-1", "missing", 1)
	assert.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)

	view, err := m.RemoveItem(context.Background(), "cust-1", "b1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = m.RemoveItem(context.Background(), "cust-1", "b1")
	assert.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestApplyCoupon(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)

	view, err := m.ApplyCoupon(context.Background(), "cust-1", "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", view.CouponCode)
	assert.True(t, view.CouponDiscount.Equal(dec("100.00")), "got %s", view.CouponDiscount)
	// post-coupon 900 is back under the free shipping threshold
	assert.True(t, view.ShippingFee.Equal(dec("100")), "got %s", view.ShippingFee)
	assert.True(t, view.TotalAmount.Equal(dec("1000.00")), "got %s", view.TotalAmount)
}

func TestApplyCouponFailureLeavesCartUnchanged(t *testing.T) {
	m, st := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b3", 2) // subtotal 200 < min 500
	require.NoError(t, err)

	_, err = m.ApplyCoupon(context.Background(), "cust-1", "SAVE10")
	assert.ErrorIs(t, err, errs.ErrCouponBelowMinPurchase)

	cart, err := st.GetCartByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, cart.CouponCode)
}

func TestApplyCouponNotFound(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b1", 1)
	require.NoError(t, err)

	_, err = m.ApplyCoupon(context.Background(), "cust-1", "NOPE")
	assert.ErrorIs(t, err, errs.ErrCouponNotFound)
}

func TestRemoveCoupon(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.AddItem(context.Background(), "cust-1", "b1", 2)
	require.NoError(t, err)
	_, err = m.ApplyCoupon(context.Background(), "cust-1", "SAVE10")
	require.NoError(t, err)

	view, err := m.RemoveCoupon(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, view.CouponCode)
	assert.Empty(t, view.Warning)

	// removing again is a soft no-op
	view, err = m.RemoveCoupon(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, models.WarnNoCouponApplied, view.Warning)
}

func TestConcurrentAddsSerialize(t *testing.T) {
	m, st := newTestManager(t)

	const workers = 4
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := m.AddItem(context.Background(), "cust-1", "b1", 1)
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}

	cart, err := st.GetCartByCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, workers, cart.Items[0].Quantity)
}

func TestMutationViewReflectsOwnWrite(t *testing.T) {
	// The view returned by a mutation is built under the same cart lock as
	// the write, so concurrent mutations by one customer each see a
	// distinct cumulative state, never a later goroutine's quantity.
	m, _ := newTestManager(t)

	const workers = 5
	quantities := make(chan int, workers)
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			view, err := m.AddItem(context.Background(), "cust-1", "b1", 1)
			if err == nil {
				quantities <- view.Items[0].Quantity
			}
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}
	close(quantities)

	seen := map[int]bool{}
	for q := range quantities {
		assert.False(t, seen[q], "duplicate quantity %d in returned views", q)
		seen[q] = true
	}
	for q := 1; q <= workers; q++ {
		assert.True(t, seen[q], "no returned view observed quantity %d", q)
	}
}
