// Package memory is an in-process implementation of every repository and
// of txn.Manager. Transactions are serialized by a single mutex and roll
// back by restoring a snapshot, so it gives the same all-or-nothing and
// no-lost-update guarantees as the postgres implementation.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

type txKey struct{}

type kvEntry struct {
	data      []byte
	expiresAt time.Time
}

type tables struct {
	seq map[string]uint

	products   map[uint]product.Product
	variations map[uint]product.Variation
	movements  []inventory.StockMovement
	alerts     map[uint]inventory.StockAlert
	coupons    map[uint]coupon.Coupon
	usages     []coupon.CouponUsage
	orders     map[uint]order.Order
	items      []order.OrderItem
	history    []order.OrderHistory
	categories map[uint]product.Category
	brands     map[uint]product.Brand
	reviews    map[uint]product.Review
	votes      []product.ReviewVote
}

// Store holds all tables in memory
type Store struct {
	mu sync.Mutex
	t  tables

	failMu   sync.Mutex
	failures map[string]error

	kvMu sync.Mutex
	kv   map[string]kvEntry
}

// New creates an empty store
func New() *Store {
	return &Store{
		t: tables{
			seq:        make(map[string]uint),
			products:   make(map[uint]product.Product),
			variations: make(map[uint]product.Variation),
			alerts:     make(map[uint]inventory.StockAlert),
			coupons:    make(map[uint]coupon.Coupon),
			orders:     make(map[uint]order.Order),
			categories: make(map[uint]product.Category),
			brands:     make(map[uint]product.Brand),
			reviews:    make(map[uint]product.Review),
		},
		failures: make(map[string]error),
		kv:       make(map[string]kvEntry),
	}
}

// FailOn makes every later call of the named repository method return err.
// A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

// WithinTx runs fn holding the store lock. Nested calls join the outer
// transaction. When fn fails every table is put back as it was.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.t = saved
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store lock unless ctx already runs inside a transaction
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID(table string) uint {
	s.t.seq[table]++
	return s.t.seq[table]
}

func (t tables) clone() tables {
	c := tables{
		seq:        make(map[string]uint, len(t.seq)),
		products:   make(map[uint]product.Product, len(t.products)),
		variations: make(map[uint]product.Variation, len(t.variations)),
		movements:  append([]inventory.StockMovement(nil), t.movements...),
		alerts:     make(map[uint]inventory.StockAlert, len(t.alerts)),
		coupons:    make(map[uint]coupon.Coupon, len(t.coupons)),
		usages:     append([]coupon.CouponUsage(nil), t.usages...),
		orders:     make(map[uint]order.Order, len(t.orders)),
		items:      append([]order.OrderItem(nil), t.items...),
		history:    append([]order.OrderHistory(nil), t.history...),
		categories: make(map[uint]product.Category, len(t.categories)),
		brands:     make(map[uint]product.Brand, len(t.brands)),
		reviews:    make(map[uint]product.Review, len(t.reviews)),
		votes:      append([]product.ReviewVote(nil), t.votes...),
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.variations {
		c.variations[k] = v
	}
	for k, v := range t.alerts {
		c.alerts[k] = v
	}
	for k, v := range t.coupons {
		c.coupons[k] = v
	}
	for k, v := range t.orders {
		c.orders[k] = v
	}
	for k, v := range t.categories {
		c.categories[k] = v
	}
	for k, v := range t.brands {
		c.brands[k] = v
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	return c
}

// window applies offset/limit to n rows; a zero limit means all rows
func window(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

func now() time.Time {
	return time.Now().UTC()
}

// Key/value store used for carts and applied coupons. It is not part of
// the transactional tables.

// GetJSON decodes the value at key into dest, reporting whether it existed
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if err := s.fail("GetJSON"); err != nil {
		return false, err
	}
	s.kvMu.Lock()
	defer s.kvMu.Unlock()

	e, ok := s.kv[key]
	if !ok {
		return false, nil
	}
	if !e.expiresAt.IsZero() && now().After(e.expiresAt) {
		delete(s.kv, key)
		return false, nil
	}
	return true, json.Unmarshal(e.data, dest)
}

// SetJSON stores value as JSON with an optional expiration
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.fail("SetJSON"); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.kvMu.Lock()
	defer s.kvMu.Unlock()

	e := kvEntry{data: data}
	if expiration > 0 {
		e.expiresAt = now().Add(expiration)
	}
	s.kv[key] = e
	return nil
}

// Del deletes keys
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if err := s.fail("Del"); err != nil {
		return err
	}
	s.kvMu.Lock()
	defer s.kvMu.Unlock()
	for _, k := range keys {
		delete(s.kv, k)
	}
	return nil
}

var (
	_ product.Repository         = (*Store)(nil)
	_ product.CategoryRepository = (*Store)(nil)
	_ product.ReviewRepository   = (*Store)(nil)
	_ inventory.Repository       = (*Store)(nil)
	_ coupon.Repository          = (*Store)(nil)
	_ order.Repository           = (*Store)(nil)
	_ txn.Manager                = (*Store)(nil)
)
