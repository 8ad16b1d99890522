package store

import (
	"context"
	"sync"

	"github.com/ashendes/bookstore/internal/coupon"
	"github.com/ashendes/bookstore/internal/errs"
	"github.com/ashendes/bookstore/internal/models"
)

// Memory is an in-memory Store. All state lives in maps behind a single
// RWMutex; transactions stage writes privately and apply them under the
// write lock, so a failed transaction leaves no trace and concurrent
// checkouts observe stock serially.
type Memory struct {
	mu           sync.RWMutex
	books        map[string]*models.Book
	customers    map[string]*models.Customer
	coupons      map[string]*models.Coupon
	carts        map[string]*models.Cart // keyed by customer id: one cart per customer
	orders       map[string]*models.Order
	payments     map[string]*models.Payment // keyed by order id
	couponUsages []*models.CouponUsage

	cartLocksMu sync.Mutex
	cartLocks   map[string]*sync.Mutex
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		books:     make(map[string]*models.Book),
		customers: make(map[string]*models.Customer),
		coupons:   make(map[string]*models.Coupon),
		carts:     make(map[string]*models.Cart),
		orders:    make(map[string]*models.Order),
		payments:  make(map[string]*models.Payment),
		cartLocks: make(map[string]*sync.Mutex),
	}
}

func cloneBook(b *models.Book) *models.Book {
	c := *b
	return &c
}

func cloneCustomer(c *models.Customer) *models.Customer {
	cp := *c
	return &cp
}

func cloneCoupon(c *models.Coupon) *models.Coupon {
	cp := *c
	return &cp
}

func cloneCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func clonePayment(p *models.Payment) *models.Payment {
	cp := *p
	return &cp
}

func (s *Memory) GetBook(ctx context.Context, id string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, errs.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (s *Memory) ListBooks(ctx context.Context) []*models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, cloneBook(b))
	}
	return out
}

func (s *Memory) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, errs.ErrCustomerNotFound
	}
	return cloneCustomer(c), nil
}

func (s *Memory) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coupons[coupon.NormalizeCode(code)]
	if !ok {
		return nil, errs.ErrCouponNotFound
	}
	return cloneCoupon(c), nil
}

func (s *Memory) GetCartByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[customerID]
	if !ok {
		return nil, errs.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (s *Memory) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *Memory) ListOrdersByCustomer(ctx context.Context, customerID string) []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

func (s *Memory) GetPaymentByOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[orderID]
	if !ok {
		return nil, errs.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (s *Memory) ListCouponUsages(ctx context.Context, couponCode string) []*models.CouponUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code := coupon.NormalizeCode(couponCode)
	var out []*models.CouponUsage
	for _, u := range s.couponUsages {
		if u.CouponCode == code {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out
}

// RunInTransaction runs fn against a staged view under the write lock and
// applies the staged writes only when fn returns nil
func (s *Memory) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:         s,
		books:     make(map[string]*models.Book),
		customers: make(map[string]*models.Customer),
		coupons:   make(map[string]*models.Coupon),
		carts:     make(map[string]*models.Cart),
		orders:    make(map[string]*models.Order),
		payments:  make(map[string]*models.Payment),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// WithCartLock serializes cart mutations for one customer
func (s *Memory) WithCartLock(customerID string, fn func() error) error {
	s.cartLocksMu.Lock()
	l, ok := s.cartLocks[customerID]
	if !ok {
		l = &sync.Mutex{}
		s.cartLocks[customerID] = l
	}
	s.cartLocksMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}

// memTx stages writes in private maps and reads through to the base state
type memTx struct {
	s         *Memory
	books     map[string]*models.Book
	customers map[string]*models.Customer
	coupons   map[string]*models.Coupon
	carts     map[string]*models.Cart
	orders    map[string]*models.Order
	payments  map[string]*models.Payment
	usages    []*models.CouponUsage
}

func (tx *memTx) Book(id string) (*models.Book, error) {
	if b, ok := tx.books[id]; ok {
		return cloneBook(b), nil
	}
	if b, ok := tx.s.books[id]; ok {
		return cloneBook(b), nil
	}
	return nil, errs.ErrBookNotFound
}

func (tx *memTx) PutBook(b *models.Book) {
	tx.books[b.ID] = cloneBook(b)
}

func (tx *memTx) Customer(id string) (*models.Customer, error) {
	if c, ok := tx.customers[id]; ok {
		return cloneCustomer(c), nil
	}
	if c, ok := tx.s.customers[id]; ok {
		return cloneCustomer(c), nil
	}
	return nil, errs.ErrCustomerNotFound
}

func (tx *memTx) PutCustomer(c *models.Customer) {
	tx.customers[c.ID] = cloneCustomer(c)
}

func (tx *memTx) Coupon(code string) (*models.Coupon, error) {
	code = coupon.NormalizeCode(code)
	if c, ok := tx.coupons[code]; ok {
		return cloneCoupon(c), nil
	}
	if c, ok := tx.s.coupons[code]; ok {
		return cloneCoupon(c), nil
	}
	return nil, errs.ErrCouponNotFound
}

func (tx *memTx) PutCoupon(c *models.Coupon) {
	cp := cloneCoupon(c)
	cp.Code = coupon.NormalizeCode(cp.Code)
	tx.coupons[cp.Code] = cp
}

func (tx *memTx) Cart(customerID string) (*models.Cart, bool) {
	if c, ok := tx.carts[customerID]; ok {
		return cloneCart(c), true
	}
	if c, ok := tx.s.carts[customerID]; ok {
		return cloneCart(c), true
	}
	return nil, false
}

func (tx *memTx) PutCart(c *models.Cart) {
	tx.carts[c.CustomerID] = cloneCart(c)
}

func (tx *memTx) Order(id string) (*models.Order, error) {
	if o, ok := tx.orders[id]; ok {
		return cloneOrder(o), nil
	}
	if o, ok := tx.s.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, errs.ErrOrderNotFound
}

func (tx *memTx) PutOrder(o *models.Order) {
	tx.orders[o.ID] = cloneOrder(o)
}

func (tx *memTx) PaymentByOrder(orderID string) (*models.Payment, error) {
	if p, ok := tx.payments[orderID]; ok {
		return clonePayment(p), nil
	}
	if p, ok := tx.s.payments[orderID]; ok {
		return clonePayment(p), nil
	}
	return nil, errs.ErrPaymentNotFound
}

func (tx *memTx) PutPayment(p *models.Payment) {
	tx.payments[p.OrderID] = clonePayment(p)
}

func (tx *memTx) AddCouponUsage(u *models.CouponUsage) {
	cp := *u
	cp.CouponCode = coupon.NormalizeCode(cp.CouponCode)
	tx.usages = append(tx.usages, &cp)
}

func (tx *memTx) commit() {
	for id, b := range tx.books {
		tx.s.books[id] = b
	}
	for id, c := range tx.customers {
		tx.s.customers[id] = c
	}
	for code, c := range tx.coupons {
		tx.s.coupons[code] = c
	}
	for id, c := range tx.carts {
		tx.s.carts[id] = c
	}
	for id, o := range tx.orders {
		tx.s.orders[id] = o
	}
	for id, p := range tx.payments {
		tx.s.payments[id] = p
	}
	tx.s.couponUsages = append(tx.s.couponUsages, tx.usages...)
}
