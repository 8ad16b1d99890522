package store

import (
	"context"

	"github.com/ashendes/bookstore/internal/models"
)

// Tx is the staged view of the store inside a transaction. Reads see
// earlier writes of the same transaction; nothing is visible outside until
// the transaction function returns nil.
type Tx interface {
	Book(id string) (*models.Book, error)
	PutBook(b *models.Book)

	Customer(id string) (*models.Customer, error)
	PutCustomer(c *models.Customer)

	Coupon(code string) (*models.Coupon, error)
	PutCoupon(c *models.Coupon)

	Cart(customerID string) (*models.Cart, bool)
	PutCart(c *models.Cart)

	Order(id string) (*models.Order, error)
	PutOrder(o *models.Order)

	PaymentByOrder(orderID string) (*models.Payment, error)
	PutPayment(p *models.Payment)

	AddCouponUsage(u *models.CouponUsage)
}

// Store is the persistence boundary consumed by the cart manager and the
// checkout orchestrator. RunInTransaction commits all-or-nothing;
// WithCartLock serializes mutations of one customer's cart.
type Store interface {
	GetBook(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context) []*models.Book
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetCoupon(ctx context.Context, code string) (*models.Coupon, error)
	GetCartByCustomer(ctx context.Context, customerID string) (*models.Cart, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) []*models.Order
	GetPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error)
	ListCouponUsages(ctx context.Context, couponCode string) []*models.CouponUsage

	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
	WithCartLock(customerID string, fn func() error) error
}
