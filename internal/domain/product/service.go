// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/paging"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

var maxGSTRate = decimal.NewFromInt(100)

// Service handles catalog business logic that does not touch the stock ledger
type Service struct {
	repo       Repository
	categories CategoryRepository
	tx         txn.Manager
	logger     *logrus.Logger
}

// NewService creates a new product service
func NewService(repo Repository, categories CategoryRepository, tx txn.Manager, logger *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		tx:         tx,
		logger:     logger,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page        int           `form:"page,default=1"`
	Limit       int           `form:"limit,default=20"`
	StockStatus []StockStatus `form:"stock_status"`
	Active      *bool         `form:"active"`
	Search      string        `form:"search"`
	// CategoryID includes products of every subcategory
	CategoryID *uint `form:"category_id"`
	BrandID    *uint `form:"brand_id"`
}

// ListResponse represents products with pagination
type ListResponse struct {
	Products   []Product         `json:"products"`
	Pagination paging.Pagination `json:"pagination"`
}

// UpdateSettingsRequest carries the catalog fields an admin may change.
// Stock quantity is deliberately absent: it only moves through the ledger.
type UpdateSettingsRequest struct {
	Name              *string          `json:"name,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	GSTRate           *decimal.Decimal `json:"gst_rate,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	AllowBackorders   *bool            `json:"allow_backorders,omitempty"`
	TrackInventory    *bool            `json:"track_inventory,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	MinCartQuantity   *int             `json:"min_cart_quantity,omitempty"`
	MaxCartQuantity   *int             `json:"max_cart_quantity,omitempty"`
	// CategoryID and BrandID of 0 detach the product
	CategoryID *uint `json:"category_id,omitempty"`
	BrandID    *uint `json:"brand_id,omitempty"`
}

// GetProduct retrieves a product with its variations
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// GetProductBySKU retrieves a product by SKU
func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetProductBySKU(ctx, sku)
}

// ListProducts retrieves products with filtering and pagination
func (s *Service) ListProducts(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	page, limit := paging.Normalize(req.Page, req.Limit)

	filter := ListFilter{
		Statuses: req.StockStatus,
		Active:   req.Active,
		Search:   req.Search,
		BrandID:  req.BrandID,
		Offset:   paging.Offset(page, limit),
		Limit:    limit,
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		all, err := s.categories.ListCategories(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve categories: %w", err)
		}
		filter.CategoryIDs = subtree(all, *req.CategoryID)
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ListResponse{
		Products:   products,
		Pagination: paging.New(page, limit, total),
	}, nil
}

// UpdateSettings changes catalog settings and re-derives stock status.
// No movement is written because the quantity does not change.
func (s *Service) UpdateSettings(ctx context.Context, id uint, req *UpdateSettingsRequest) (*Product, error) {
	var updated *Product

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.LockProduct(ctx, id)
		if err != nil {
			return err
		}

		if err := applySettings(p, req); err != nil {
			return err
		}
		if err := s.applyClassification(ctx, p, req); err != nil {
			return err
		}

		p.RefreshStockStatus()
		if err := s.repo.SaveProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		// Tracking is inherited, so variation statuses may have changed too
		for i := range p.Variations {
			v := &p.Variations[i]
			v.RefreshStockStatus(p.TrackInventory)
			if err := s.repo.SaveVariation(ctx, v); err != nil {
				return fmt.Errorf("failed to update variation: %w", err)
			}
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id":   updated.ID,
		"stock_status": updated.StockStatus,
	}).Info("Product settings updated")

	return updated, nil
}

// DeleteProduct removes a product. Products referenced by orders are
// deactivated instead so order history keeps resolving.
func (s *Service) DeleteProduct(ctx context.Context, id uint) (deactivated bool, err error) {
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.LockProduct(ctx, id)
		if err != nil {
			return err
		}

		referenced, err := s.repo.HasOrderItems(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check order references: %w", err)
		}

		if !referenced {
			return s.repo.DeleteProduct(ctx, id)
		}

		p.IsActive = false
		deactivated = true
		return s.repo.SaveProduct(ctx, p)
	})
	return deactivated, err
}

func (s *Service) applyClassification(ctx context.Context, p *Product, req *UpdateSettingsRequest) error {
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			if _, err := s.categories.GetCategory(ctx, *req.CategoryID); err != nil {
				return err
			}
			id := *req.CategoryID
			p.CategoryID = &id
		}
	}
	if req.BrandID != nil {
		if *req.BrandID == 0 {
			p.BrandID = nil
		} else {
			if _, err := s.categories.GetBrand(ctx, *req.BrandID); err != nil {
				return err
			}
			id := *req.BrandID
			p.BrandID = &id
		}
	}
	return nil
}

func applySettings(p *Product, req *UpdateSettingsRequest) error {
	if req.Name != nil {
		if *req.Name == "" {
			return ErrInvalidSettings.WithMessage("Product name is required")
		}
		p.Name = *req.Name
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return ErrInvalidSettings.WithMessage("Price must be greater than zero")
		}
		p.Price = req.Price.Round(2)
	}
	if req.GSTRate != nil {
		if req.GSTRate.IsNegative() || req.GSTRate.GreaterThan(maxGSTRate) {
			return ErrInvalidSettings.WithMessage("GST rate must be between 0 and 100")
		}
		p.GSTRate = req.GSTRate.Round(2)
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return ErrInvalidSettings.WithMessage("Low stock threshold cannot be negative")
		}
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.AllowBackorders != nil {
		p.AllowBackorders = *req.AllowBackorders
	}
	if req.TrackInventory != nil {
		p.TrackInventory = *req.TrackInventory
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.MinCartQuantity != nil {
		p.MinCartQuantity = *req.MinCartQuantity
	}
	if req.MaxCartQuantity != nil {
		p.MaxCartQuantity = *req.MaxCartQuantity
	}
	if p.MinCartQuantity < 1 || p.MaxCartQuantity < p.MinCartQuantity {
		return ErrInvalidSettings.WithMessage("Cart quantity limits must satisfy 1 <= min <= max")
	}
	return nil
}
