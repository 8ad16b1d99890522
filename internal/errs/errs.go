package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cart, coupon and checkout flows. Callers branch
// with errors.Is; wrapping adds entity context.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrItemNotFound     = errors.New("item not in cart")
	ErrInvalidQuantity  = errors.New("invalid quantity")

	ErrOutOfStock = errors.New("out of stock")

	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponNotYetActive     = errors.New("coupon not yet active")
	ErrCouponExpired          = errors.New("coupon expired")
	ErrCouponUsageCapReached  = errors.New("coupon usage cap reached")
	ErrCouponBelowMinPurchase = errors.New("cart subtotal below coupon minimum purchase")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// OutOfStock wraps ErrOutOfStock with the offending book
func OutOfStock(bookID string) error {
	return fmt.Errorf("%w: book %s", ErrOutOfStock, bookID)
}

// CheckoutError reports which stage of the checkout sequence failed. The
// whole transaction has been rolled back by the time it is returned.
type CheckoutError struct {
	Stage string
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout failed at %s: %v", e.Stage, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// IsCouponError reports whether err belongs to the coupon error family
func IsCouponError(err error) bool {
	return errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrCouponNotYetActive) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponUsageCapReached) ||
		errors.Is(err, ErrCouponBelowMinPurchase)
}

// CouponReason maps a coupon error to a short reason label for metrics and
// API payloads
func CouponReason(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponNotYetActive):
		return "not_yet_active"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponUsageCapReached):
		return "usage_cap_reached"
	case errors.Is(err, ErrCouponBelowMinPurchase):
		return "below_minimum_purchase"
	default:
		return "unknown"
	}
}
