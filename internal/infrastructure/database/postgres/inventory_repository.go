// internal/infrastructure/database/postgres/inventory_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// InventoryRepository is the gorm implementation of inventory.Repository
type InventoryRepository struct {
	baseRepository
}

// NewInventoryRepository creates an inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{baseRepository{db: db}}
}

func (r *InventoryRepository) AppendMovement(ctx context.Context, m *inventory.StockMovement) error {
	if err := r.getDB(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to append stock movement: %w", err)
	}
	return nil
}

func (r *InventoryRepository) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.getDB(ctx).Model(&inventory.StockMovement{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.VariationID != nil {
		query = query.Where("variation_id = ?", *filter.VariationID)
	}
	if filter.Type != "" {
		query = query.Where("movement_type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("performed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("performed_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	var movements []inventory.StockMovement
	query = query.Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, total, nil
}

func (r *InventoryRepository) SumMovements(ctx context.Context, target inventory.Target) (int, error) {
	var total int
	err := targetScope(r.getDB(ctx).Model(&inventory.StockMovement{}), target).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum stock movements: %w", err)
	}
	return total, nil
}

func (r *InventoryRepository) SumReferenced(ctx context.Context, target inventory.Target, refType inventory.ReferenceType, refID uint) (int, error) {
	var total int
	err := targetScope(r.getDB(ctx).Model(&inventory.StockMovement{}), target).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum referenced stock movements: %w", err)
	}
	return total, nil
}

func (r *InventoryRepository) FindOpenAlert(ctx context.Context, target inventory.Target) (*inventory.StockAlert, error) {
	var a inventory.StockAlert
	err := targetScope(r.getDB(ctx), target).
		Where("is_resolved = ?", false).
		Order("id DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock alert: %w", err)
	}
	return &a, nil
}

func (r *InventoryRepository) CreateAlert(ctx context.Context, a *inventory.StockAlert) error {
	if err := r.getDB(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create stock alert: %w", err)
	}
	return nil
}

func (r *InventoryRepository) SaveAlert(ctx context.Context, a *inventory.StockAlert) error {
	if err := r.getDB(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to save stock alert: %w", err)
	}
	return nil
}

func (r *InventoryRepository) GetAlert(ctx context.Context, id uint) (*inventory.StockAlert, error) {
	var a inventory.StockAlert
	if err := r.getDB(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, inventory.ErrAlertNotFound, "retrieve stock alert")
	}
	return &a, nil
}

func (r *InventoryRepository) ListAlerts(ctx context.Context, openOnly bool) ([]inventory.StockAlert, error) {
	query := r.getDB(ctx).Order("id DESC")
	if openOnly {
		query = query.Where("is_resolved = ?", false)
	}

	var alerts []inventory.StockAlert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock alerts: %w", err)
	}
	return alerts, nil
}

func targetScope(db *gorm.DB, target inventory.Target) *gorm.DB {
	db = db.Where("product_id = ?", target.ProductID)
	if target.VariationID == nil {
		return db.Where("variation_id IS NULL")
	}
	return db.Where("variation_id = ?", *target.VariationID)
}
