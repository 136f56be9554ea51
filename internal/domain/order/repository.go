// internal/domain/order/repository.go
package order

import (
	"context"
	"time"
)

// ListFilter narrows an order listing
type ListFilter struct {
	Status    OrderStatus
	UserID    *uint
	From      *time.Time
	To        *time.Time
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// Repository is the persistence contract for orders. Items are written
// with the order and never updated afterwards.
type Repository interface {
	// CreateOrder inserts the order together with its Items
	CreateOrder(ctx context.Context, o *Order) error
	// SaveOrder updates the order row only
	SaveOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uint) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	// LockOrder loads the order and its items under a row lock
	LockOrder(ctx context.Context, id uint) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	AppendHistory(ctx context.Context, h *OrderHistory) error
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}
