package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ashendes/bookstore/internal/coupon"
	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/models"
	"github.com/ashendes/bookstore/internal/pricing"
	"github.com/ashendes/bookstore/internal/store"
)

// Manager mutates a customer's single active cart. Every operation runs
// read-validate-write under the customer's cart lock, so concurrent
// requests for the same cart serialize instead of losing updates.
type Manager struct {
	store   store.Store
	pricing pricing.Config

	now func() time.Time
}

// NewManager creates a cart manager
func NewManager(s store.Store, cfg pricing.Config) *Manager {
	return &Manager{store: s, pricing: cfg, now: time.Now}
}

// Get returns the priced cart, creating it lazily on first access
func (m *Manager) Get(ctx context.Context, customerID string) (*models.CartView, error) {
	var view *models.CartView
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			if _, err := tx.Customer(customerID); err != nil {
				return err
			}
			m.ensureCart(tx, customerID)
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem adds a book to the cart, accumulating quantity for an existing
// line. The quantity is clamped at the book's stock; a clamp is reported
// as a warning, not an error. A book with zero stock cannot be added.
func (m *Manager) AddItem(ctx context.Context, customerID, bookID string, qty int) (*models.CartView, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, errs.ErrInvalidQuantity
	}

	var (
		view    *models.CartView
		warning string
	)
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			if _, err := tx.Customer(customerID); err != nil {
				return err
			}
			book, err := tx.Book(bookID)
			if err != nil {
				return err
			}
			if book.Stock <= 0 {
				return errs.OutOfStock(bookID)
			}

			cart := m.ensureCart(tx, customerID)
			if item := cart.FindItem(bookID); item != nil {
				target := item.Quantity + qty
				if target > book.Stock {
					target = book.Stock
					warning = models.WarnStockLimitReached
				}
				item.Quantity = target
			} else {
				target := qty
				if target > book.Stock {
					target = book.Stock
					warning = models.WarnStockLimitReached
				}
				cart.Items = append(cart.Items, models.CartItem{
					CartID:   cart.ID,
					BookID:   bookID,
					Quantity: target,
					AddedAt:  m.now(),
				})
			}
			cart.UpdatedAt = m.now()
			tx.PutCart(cart)

			log.WithFields(log.Fields{
				"customer_id": customerID,
				"book_id":     bookID,
				"quantity":    qty,
				"warning":     warning,
			}).Info("Cart item added")
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, warning)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateQuantity adjusts a cart line by a signed delta. Increases clamp at
// the book's stock with a warning; a decrease may not take the quantity
// below one, removal is a distinct operation.
func (m *Manager) UpdateQuantity(ctx context.Context, customerID, bookID string, delta int) (*models.CartView, error) {
	if delta == 0 {
		return nil, errs.ErrInvalidQuantity
	}

	var (
		view    *models.CartView
		warning string
	)
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			cart, ok := tx.Cart(customerID)
			if !ok {
				return errs.ErrCartNotFound
			}
			item := cart.FindItem(bookID)
			if item == nil {
				return errs.ErrItemNotFound
			}
			book, err := tx.Book(bookID)
			if err != nil {
				return err
			}

			target := item.Quantity + delta
			if delta > 0 && target > book.Stock {
				target = book.Stock
				warning = models.WarnStockLimitReached
			}
			if target < 1 {
				return errs.ErrInvalidQuantity
			}
			item.Quantity = target
			cart.UpdatedAt = m.now()
			tx.PutCart(cart)
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, warning)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveItem deletes a cart line
func (m *Manager) RemoveItem(ctx context.Context, customerID, bookID string) (*models.CartView, error) {
	var view *models.CartView
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			cart, ok := tx.Cart(customerID)
			if !ok {
				return errs.ErrCartNotFound
			}
			if cart.FindItem(bookID) == nil {
				return errs.ErrItemNotFound
			}
			items := cart.Items[:0]
			for _, it := range cart.Items {
				if it.BookID != bookID {
					items = append(items, it)
				}
			}
			cart.Items = items
			cart.UpdatedAt = m.now()
			tx.PutCart(cart)
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ApplyCoupon validates a coupon against the cart's current subtotal and
// attaches it. On any failure the cart is left unchanged and the specific
// reason is returned.
func (m *Manager) ApplyCoupon(ctx context.Context, customerID, code string) (*models.CartView, error) {
	code = coupon.NormalizeCode(code)
	var view *models.CartView
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			cpn, err := tx.Coupon(code)
			if err != nil {
				return err
			}
			cart, ok := tx.Cart(customerID)
			if !ok {
				return errs.ErrCartNotFound
			}
			lines, err := txLines(tx, cart)
			if err != nil {
				return err
			}
			if err := coupon.Validate(cpn, pricing.Subtotal(lines), m.now()); err != nil {
				return err
			}
			cart.CouponCode = cpn.Code
			cart.UpdatedAt = m.now()
			tx.PutCart(cart)

			log.WithFields(log.Fields{
				"customer_id": customerID,
				"coupon_code": cpn.Code,
			}).Info("Coupon applied to cart")
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveCoupon detaches the applied coupon. Removing when none is applied
// is a no-op reported as a warning.
func (m *Manager) RemoveCoupon(ctx context.Context, customerID string) (*models.CartView, error) {
	var (
		view    *models.CartView
		warning string
	)
	err := m.store.WithCartLock(customerID, func() error {
		err := m.store.RunInTransaction(ctx, func(tx store.Tx) error {
			cart, ok := tx.Cart(customerID)
			if !ok {
				return errs.ErrCartNotFound
			}
			if cart.CouponCode == "" {
				warning = models.WarnNoCouponApplied
				return nil
			}
			cart.CouponCode = ""
			cart.UpdatedAt = m.now()
			tx.PutCart(cart)
			return nil
		})
		if err != nil {
			return err
		}
		view, err = m.buildView(ctx, customerID, warning)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (m *Manager) ensureCart(tx store.Tx, customerID string) *models.Cart {
	cart, ok := tx.Cart(customerID)
	if !ok {
		cart = &models.Cart{
			ID:         uuid.New().String(),
			CustomerID: customerID,
			CreatedAt:  m.now(),
			UpdatedAt:  m.now(),
		}
		tx.PutCart(cart)
	}
	return cart
}

func txLines(tx store.Tx, cart *models.Cart) ([]pricing.Line, error) {
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		book, err := tx.Book(it.BookID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pricing.Line{UnitPrice: book.Price, Quantity: it.Quantity})
	}
	return lines, nil
}

// buildView prices the cart with current catalog prices and the applied
// coupon, if it is still valid
func (m *Manager) buildView(ctx context.Context, customerID, warning string) (*models.CartView, error) {
	cart, err := m.store.GetCartByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer, err := m.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(cart.Items))
	views := make([]models.CartItemView, 0, len(cart.Items))
	for _, it := range cart.Items {
		book, err := m.store.GetBook(ctx, it.BookID)
		if err != nil {
			return nil, err
		}
		line := pricing.Line{UnitPrice: book.Price, Quantity: it.Quantity}
		lines = append(lines, line)
		views = append(views, models.CartItemView{
			BookID:    it.BookID,
			Title:     book.Title,
			UnitPrice: book.Price,
			Quantity:  it.Quantity,
			Subtotal:  book.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		})
	}

	var cpn *models.Coupon
	if cart.CouponCode != "" {
		c, err := m.store.GetCoupon(ctx, cart.CouponCode)
		if err == nil && coupon.Validate(c, pricing.Subtotal(lines), m.now()) == nil {
			cpn = c
		}
	}

	q := m.pricing.Quote(lines, cpn, customer.FirstTimeBuyer)
	return &models.CartView{
		CartID:             cart.ID,
		Items:              views,
		CouponCode:         cart.CouponCode,
		Subtotal:           q.Subtotal,
		CouponDiscount:     q.CouponDiscount,
		OrderValueDiscount: q.OrderValueDiscount,
		FirstTimeDiscount:  q.FirstTimeDiscount,
		TotalDiscount:      q.TotalDiscount,
		ShippingFee:        q.ShippingFee,
		TotalAmount:        q.TotalAmount,
		Warning:            warning,
	}, nil
}
