// internal/infrastructure/database/postgres/product_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the gorm implementation of product.Repository
type ProductRepository struct {
	baseRepository
}

// NewProductRepository creates a product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{baseRepository{db: db}}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *product.Product) error {
	if err := r.getDB(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return product.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	err := r.getDB(ctx).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, product.ErrProductNotFound, "retrieve product")
	}
	return &p, nil
}

func (r *ProductRepository) GetProductBySKU(ctx context.Context, sku string) (*product.Product, error) {
	var p product.Product
	err := r.getDB(ctx).
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("sku = ?", sku).
		First(&p).Error
	if err != nil {
		return nil, translate(err, product.ErrProductNotFound, "retrieve product")
	}
	return &p, nil
}

// SlugExists looks past soft deletes; the unique index still holds those rows
func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.getDB(ctx).Unscoped().Model(&product.Product{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return count > 0, nil
}

// LockProduct takes FOR UPDATE locks on the product row and its variation
// rows; they are held until the surrounding transaction ends
func (r *ProductRepository) LockProduct(ctx context.Context, id uint) (*product.Product, error) {
	db := r.getDB(ctx)

	var p product.Product
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, translate(err, product.ErrProductNotFound, "lock product")
	}
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", id).
		Order("id").
		Find(&p.Variations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock product variations: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) SaveProduct(ctx context.Context, p *product.Product) error {
	if err := r.getDB(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *ProductRepository) SaveVariation(ctx context.Context, v *product.Variation) error {
	if err := r.getDB(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to save variation: %w", err)
	}
	return nil
}

func (r *ProductRepository) ListProducts(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	query := r.getDB(ctx).Model(&product.Product{})

	if len(filter.Statuses) > 0 {
		query = query.Where("stock_status IN ?", filter.Statuses)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", term, term)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []product.Product
	query = query.Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).Order("id")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) HasOrderItems(ctx context.Context, productID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&order.OrderItem{}).Where("product_id = ?", productID).Limit(1).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order items: %w", err)
	}
	return count > 0, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	if err := db.Where("product_id = ?", id).Delete(&product.Variation{}).Error; err != nil {
		return fmt.Errorf("failed to delete variations: %w", err)
	}
	result := db.Delete(&product.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}
