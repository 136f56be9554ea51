// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"total_amount": "total_amount",
	"order_number": "order_number",
	"status":       "status",
}

// OrderRepository is the gorm implementation of order.Repository
type OrderRepository struct {
	baseRepository
}

// NewOrderRepository creates an order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{baseRepository{db: db}}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	if err := r.getDB(ctx).Omit("History").Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) SaveOrder(ctx context.Context, o *order.Order) error {
	if err := r.getDB(ctx).Omit(clause.Associations).Save(o).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id uint) (*order.Order, error) {
	var o order.Order
	if err := r.withDetails(r.getDB(ctx)).First(&o, id).Error; err != nil {
		return nil, translate(err, order.ErrOrderNotFound, "retrieve order")
	}
	return &o, nil
}

func (r *OrderRepository) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.withDetails(r.getDB(ctx)).Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, translate(err, order.ErrOrderNotFound, "retrieve order")
	}
	return &o, nil
}

func (r *OrderRepository) LockOrder(ctx context.Context, id uint) (*order.Order, error) {
	db := r.getDB(ctx)

	var o order.Order
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, translate(err, order.ErrOrderNotFound, "lock order")
	}
	if err := db.Where("order_id = ?", id).Order("id").Find(&o.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	query := r.getDB(ctx).Model(&order.Order{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []order.Order
	query = query.Preload("Items").Order(buildOrderClause(filter.SortBy, filter.SortOrder))
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) AppendHistory(ctx context.Context, h *order.OrderHistory) error {
	if err := r.getDB(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to append order history: %w", err)
	}
	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	var rows []struct {
		Status order.OrderStatus
		Count  int64
	}
	err := r.getDB(ctx).Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[order.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *OrderRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// buildOrderClause only lets whitelisted columns into ORDER BY
func buildOrderClause(sortBy, sortOrder string) string {
	column, ok := orderSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s, id %s", column, sortOrder, sortOrder)
}
