// internal/infrastructure/database/postgres/category_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// CategoryRepository is the gorm implementation of product.CategoryRepository
type CategoryRepository struct {
	baseRepository
}

// NewCategoryRepository creates a category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{baseRepository{db: db}}
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, c *product.Category) error {
	if err := r.getDB(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return product.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetCategory(ctx context.Context, id uint) (*product.Category, error) {
	var c product.Category
	if err := r.getDB(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, product.ErrCategoryNotFound, "retrieve category")
	}
	return &c, nil
}

func (r *CategoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*product.Category, error) {
	var c product.Category
	if err := r.getDB(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err, product.ErrCategoryNotFound, "retrieve category")
	}
	return &c, nil
}

func (r *CategoryRepository) SaveCategory(ctx context.Context, c *product.Category) error {
	if err := r.getDB(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context, includeInactive bool) ([]product.Category, error) {
	query := r.getDB(ctx).Model(&product.Category{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var categories []product.Category
	if err := query.Order("sort_order, name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&product.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) CreateBrand(ctx context.Context, b *product.Brand) error {
	if err := r.getDB(ctx).Create(b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return product.ErrDuplicateBrand
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetBrand(ctx context.Context, id uint) (*product.Brand, error) {
	var b product.Brand
	if err := r.getDB(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err, product.ErrBrandNotFound, "retrieve brand")
	}
	return &b, nil
}

func (r *CategoryRepository) SaveBrand(ctx context.Context, b *product.Brand) error {
	if err := r.getDB(ctx).Save(b).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return product.ErrDuplicateBrand
		}
		return fmt.Errorf("failed to save brand: %w", err)
	}
	return nil
}

func (r *CategoryRepository) ListBrands(ctx context.Context, includeInactive bool) ([]product.Brand, error) {
	query := r.getDB(ctx).Model(&product.Brand{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var brands []product.Brand
	if err := query.Order("sort_order, name").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}
