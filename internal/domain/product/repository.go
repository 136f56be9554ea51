// internal/domain/product/repository.go
package product

import "context"

// ListFilter narrows a product listing
type ListFilter struct {
	Statuses []StockStatus
	Active   *bool
	Search   string
	// CategoryIDs matches products in any of the listed categories
	CategoryIDs []uint
	BrandID     *uint
	Offset      int
	Limit       int
}

// Repository is the persistence contract for products and variations.
// Lookups return ErrProductNotFound / ErrVariationNotFound on a miss.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uint) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	// SlugExists reports whether any product, deleted ones included, holds slug
	SlugExists(ctx context.Context, slug string) (bool, error)
	// LockProduct loads the product and its variations with a row lock
	// held until the surrounding transaction ends.
	LockProduct(ctx context.Context, id uint) (*Product, error)
	SaveProduct(ctx context.Context, p *Product) error
	SaveVariation(ctx context.Context, v *Variation) error
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	HasOrderItems(ctx context.Context, productID uint) (bool, error)
	DeleteProduct(ctx context.Context, id uint) error
}
