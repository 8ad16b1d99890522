package checkout

import (
	"context"
	"fmt"
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

// Notifier publishes a receipt for a committed order. Failures are logged
// and never fail the checkout.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *models.Order) error
}

// Orchestrator converts a priced cart into an order graph in one
// transaction: order, frozen order items, stock decrements, coupon usage,
// payment, cart clear. Any failure rolls back every effect.
type Orchestrator struct {
	store    store.Store
	pricing  pricing.Config
	notifier Notifier

	now func() time.Time
}

// New creates a checkout orchestrator. notifier may be nil.
func New(s store.Store, cfg pricing.Config, notifier Notifier) *Orchestrator {
	return &Orchestrator{store: s, pricing: cfg, notifier: notifier, now: time.Now}
}

// Checkout commits the customer's cart as an order and returns it
func (o *Orchestrator) Checkout(ctx context.Context, customerID string, req models.CheckoutRequest) (*models.Order, error) {
	var order *models.Order

	err := o.store.WithCartLock(customerID, func() error {
		return o.store.RunInTransaction(ctx, func(tx store.Tx) error {
			customer, err := tx.Customer(customerID)
			if err != nil {
				return &errs.CheckoutError{Stage: "precondition", Err: err}
			}
			cart, ok := tx.Cart(customerID)
			if !ok || len(cart.Items) == 0 {
				return &errs.CheckoutError{Stage: "precondition", Err: errs.ErrEmptyCart}
			}

			// Freeze prices and decrement stock line by line. Stock is
			// re-validated here, not trusted from cart state.
			now := o.now()
			orderID := uuid.New().String()
			lines := make([]pricing.Line, 0, len(cart.Items))
			items := make([]models.OrderItem, 0, len(cart.Items))
			for _, it := range cart.Items {
				book, err := tx.Book(it.BookID)
				if err != nil {
					return &errs.CheckoutError{Stage: "stock", Err: err}
				}
				if book.Stock < it.Quantity {
					return &errs.CheckoutError{Stage: "stock", Err: errs.OutOfStock(book.ID)}
				}
				book.Stock -= it.Quantity
				tx.PutBook(book)

				unitPrice := book.Price.Round(2)
				items = append(items, models.OrderItem{
					OrderID:   orderID,
					BookID:    book.ID,
					Title:     book.Title,
					Quantity:  it.Quantity,
					UnitPrice: unitPrice,
					Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
				})
				lines = append(lines, pricing.Line{UnitPrice: unitPrice, Quantity: it.Quantity})
			}

			var cpn *models.Coupon
			if cart.CouponCode != "" {
				cpn, err = tx.Coupon(cart.CouponCode)
				if err != nil {
					return &errs.CheckoutError{Stage: "coupon", Err: err}
				}
				if err := coupon.Validate(cpn, pricing.Subtotal(lines), now); err != nil {
					return &errs.CheckoutError{Stage: "coupon", Err: err}
				}
			}

			quote := o.pricing.Quote(lines, cpn, customer.FirstTimeBuyer)

			order = &models.Order{
				ID:                 orderID,
				CustomerID:         customerID,
				Delivery:           req.Delivery,
				Items:              items,
				Subtotal:           quote.Subtotal,
				CouponDiscount:     quote.CouponDiscount,
				OrderValueDiscount: quote.OrderValueDiscount,
				FirstTimeDiscount:  quote.FirstTimeDiscount,
				ShippingFee:        quote.ShippingFee,
				TotalAmount:        quote.TotalAmount,
				Status:             models.OrderStatusPending,
				OrderDate:          now,
			}
			if cpn != nil {
				order.CouponCode = cpn.Code
				cpn.UsageCount++
				tx.PutCoupon(cpn)
				tx.AddCouponUsage(&models.CouponUsage{
					ID:             uuid.New().String(),
					CouponCode:     cpn.Code,
					CustomerID:     customerID,
					OrderID:        orderID,
					DiscountAmount: quote.CouponDiscount,
					UsedAt:         now,
				})
			}

			if customer.FirstTimeBuyer {
				customer.FirstTimeBuyer = false
				tx.PutCustomer(customer)
			}

			// Settlement is synchronous: the payment is recorded paid and
			// the paid transition promotes the pending order.
			payment := &models.Payment{
				ID:            uuid.New().String(),
				OrderID:       orderID,
				Amount:        quote.TotalAmount,
				Method:        req.PaymentMethod,
				Status:        models.PaymentStatusPaid,
				TransactionID: uuid.New().String(),
				Date:          now,
			}
			applyPaymentTransition(order, payment)
			tx.PutPayment(payment)
			tx.PutOrder(order)

			cart.Items = nil
			cart.CouponCode = ""
			cart.UpdatedAt = now
			tx.PutCart(cart)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"items":       len(order.Items),
		"total":       order.TotalAmount.String(),
	}).Info("Checkout committed")

	if o.notifier != nil {
		if err := o.notifier.OrderPlaced(ctx, order); err != nil {
			log.WithField("order_id", order.ID).Warn("Receipt notification failed: ", err)
		}
	}
	return order, nil
}

// OnPaymentStatusChanged applies a payment status change and, when a
// payment turns paid while its order is still pending, promotes the order
// to confirmed. This is the explicit replacement for the old implicit
// payment-save hook.
func (o *Orchestrator) OnPaymentStatusChanged(ctx context.Context, orderID, status, transactionID string) (*models.Payment, error) {
	var payment *models.Payment
	err := o.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		payment, err = tx.PaymentByOrder(orderID)
		if err != nil {
			return err
		}
		if !validPaymentTransition(payment.Status, status) {
			return fmt.Errorf("%w: payment %s -> %s", errs.ErrInvalidTransition, payment.Status, status)
		}
		payment.Status = status
		if transactionID != "" {
			payment.TransactionID = transactionID
		}
		tx.PutPayment(payment)

		order, err := tx.Order(orderID)
		if err != nil {
			return err
		}
		if applyPaymentTransition(order, payment) {
			tx.PutOrder(order)
			log.WithFields(log.Fields{
				"order_id": orderID,
				"status":   order.Status,
			}).Info("Order promoted by payment status change")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateOrderStatus applies an admin order status transition
func (o *Orchestrator) UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	var order *models.Order
	err := o.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		order, err = tx.Order(orderID)
		if err != nil {
			return err
		}
		if !validOrderTransition(order.Status, status) {
			return fmt.Errorf("%w: order %s -> %s", errs.ErrInvalidTransition, order.Status, status)
		}
		order.Status = status
		tx.PutOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// applyPaymentTransition promotes a pending order to confirmed once its
// payment is paid; reports whether the order changed
func applyPaymentTransition(order *models.Order, payment *models.Payment) bool {
	if payment.Status == models.PaymentStatusPaid && order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusConfirmed
		return true
	}
	return false
}

func validPaymentTransition(from, to string) bool {
	switch from {
	case models.PaymentStatusUnpaid:
		return to == models.PaymentStatusPaid || to == models.PaymentStatusFailed
	case models.PaymentStatusFailed:
		return to == models.PaymentStatusPaid
	case models.PaymentStatusPaid:
		return to == models.PaymentStatusRefunded
	default:
		return false
	}
}

func validOrderTransition(from, to string) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusConfirmed || to == models.OrderStatusCancelled
	case models.OrderStatusConfirmed:
		return to == models.OrderStatusShipped || to == models.OrderStatusCancelled
	case models.OrderStatusShipped:
		return to == models.OrderStatusDelivered
	default:
		return false
	}
}
