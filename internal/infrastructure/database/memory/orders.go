package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// CreateOrder inserts the order and its items
func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	if err := s.fail("CreateOrder"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("duplicate key value violates unique constraint \"orders_order_number_key\"")
		}
	}

	ts := now()
	if err := o.BeforeSave(nil); err != nil {
		return err
	}
	o.ID = s.nextID("orders")
	if o.CreatedAt.IsZero() {
		o.CreatedAt = ts
	}
	o.UpdatedAt = ts

	for i := range o.Items {
		item := &o.Items[i]
		item.ID = s.nextID("order_items")
		item.OrderID = o.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = ts
		}
		s.t.items = append(s.t.items, *item)
	}

	s.t.orders[o.ID] = orderRow(o)
	return nil
}

// SaveOrder updates the order row
func (s *Store) SaveOrder(ctx context.Context, o *order.Order) error {
	if err := s.fail("SaveOrder"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	for id, existing := range s.t.orders {
		if id != o.ID && existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("duplicate key value violates unique constraint \"orders_order_number_key\"")
		}
	}
	if err := o.BeforeSave(nil); err != nil {
		return err
	}
	o.UpdatedAt = now()
	s.t.orders[o.ID] = orderRow(o)
	return nil
}

// GetOrder loads an order with items and history
func (s *Store) GetOrder(ctx context.Context, id uint) (*order.Order, error) {
	if err := s.fail("GetOrder"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()
	return s.loadOrder(id)
}

// GetOrderByNumber loads an order by its order number
func (s *Store) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	if err := s.fail("GetOrderByNumber"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for id, o := range s.t.orders {
		if o.OrderNumber == number {
			return s.loadOrder(id)
		}
	}
	return nil, order.ErrOrderNotFound
}

// LockOrder loads an order; the transaction lock already serializes it
func (s *Store) LockOrder(ctx context.Context, id uint) (*order.Order, error) {
	if err := s.fail("LockOrder"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()
	return s.loadOrder(id)
}

// ListOrders filters orders, newest first unless sorted otherwise
func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	if err := s.fail("ListOrders"); err != nil {
		return nil, 0, err
	}
	defer s.lock(ctx)()

	var rows []order.Order
	for _, o := range s.t.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && (o.UserID == nil || *o.UserID != *filter.UserID) {
			continue
		}
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && o.CreatedAt.After(*filter.To) {
			continue
		}
		rows = append(rows, o)
	}

	asc := filter.SortOrder == "asc"
	sort.Slice(rows, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "total_amount":
			less = rows[i].TotalAmount.LessThan(rows[j].TotalAmount)
		case "order_number":
			less = rows[i].OrderNumber < rows[j].OrderNumber
		default:
			less = rows[i].ID < rows[j].ID
		}
		if asc {
			return less
		}
		return !less
	})

	start, end := window(len(rows), filter.Offset, filter.Limit)
	orders := make([]order.Order, 0, end-start)
	for _, row := range rows[start:end] {
		o, _ := s.loadOrder(row.ID)
		orders = append(orders, *o)
	}
	return orders, int64(len(rows)), nil
}

// AppendHistory inserts a history row
func (s *Store) AppendHistory(ctx context.Context, h *order.OrderHistory) error {
	if err := s.fail("AppendHistory"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	h.ID = s.nextID("order_history")
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now()
	}
	s.t.history = append(s.t.history, *h)
	return nil
}

// CountByStatus counts orders per status
func (s *Store) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	if err := s.fail("CountByStatus"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	counts := make(map[order.OrderStatus]int64)
	for _, o := range s.t.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (s *Store) loadOrder(id uint) (*order.Order, error) {
	row, ok := s.t.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	o := row
	for _, item := range s.t.items {
		if item.OrderID == id {
			o.Items = append(o.Items, item)
		}
	}
	for _, h := range s.t.history {
		if h.OrderID == id {
			o.History = append(o.History, h)
		}
	}
	return &o, nil
}

func orderRow(o *order.Order) order.Order {
	row := *o
	row.Items = nil
	row.History = nil
	return row
}
