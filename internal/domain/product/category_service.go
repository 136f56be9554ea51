// internal/domain/product/category_service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

// CategoryService handles category and brand business logic
type CategoryService struct {
	repo     CategoryRepository
	products Repository
	tx       txn.Manager
	logger   *logrus.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(repo CategoryRepository, products Repository, tx txn.Manager, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		products: products,
		tx:       tx,
		logger:   logger,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ParentID    *uint   `json:"parent_id"`
	MakeRoot    bool    `json:"make_root"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// BrandRequest represents brand creation and update data
type BrandRequest struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	LogoURL       string `json:"logo_url"`
	WebsiteURL    string `json:"website_url"`
	IsIndianBrand bool   `json:"is_indian_brand"`
	SortOrder     int    `json:"sort_order"`
	IsActive      *bool  `json:"is_active"`
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// GetCategoryBySlug retrieves an active category by slug
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// ListCategories returns the flat category list
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetCategoryTree returns active categories nested under their parents.
// A subcategory of an inactive category is hidden with it.
func (s *CategoryService) GetCategoryTree(ctx context.Context) ([]CategoryTree, error) {
	all, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	var roots []CategoryTree
	for _, node := range buildTree(all) {
		if node.ParentID == nil {
			roots = append(roots, node)
		}
	}
	return activeOnly(roots), nil
}

func activeOnly(nodes []CategoryTree) []CategoryTree {
	var kept []CategoryTree
	for _, n := range nodes {
		if !n.IsActive {
			continue
		}
		n.Children = activeOnly(n.Children)
		kept = append(kept, n)
	}
	return kept
}

// CreateCategory creates a category under an optional parent
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidCategory.WithMessage("Category name is required")
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, ErrInvalidCategory.WithMessage("Category slug must contain letters or digits")
	}

	c := &Category{
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if c.ParentID != nil {
			if _, err := s.repo.GetCategory(ctx, *c.ParentID); err != nil {
				return err
			}
		}
		if _, err := s.repo.GetCategoryBySlug(ctx, c.Slug); err == nil {
			return ErrDuplicateCategory
		}
		return s.repo.CreateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category_id": c.ID,
		"slug":        c.Slug,
	}).Info("Category created")
	return c, nil
}

// UpdateCategory changes a category. Moving it below one of its own
// descendants is rejected.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	var updated *Category

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrInvalidCategory.WithMessage("Category name is required")
			}
			c.Name = name
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.ImageURL != nil {
			c.ImageURL = *req.ImageURL
		}
		if req.SortOrder != nil {
			c.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		if req.IsFeatured != nil {
			c.IsFeatured = *req.IsFeatured
		}

		switch {
		case req.MakeRoot:
			c.ParentID = nil
		case req.ParentID != nil:
			if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
				return err
			}
			parent := *req.ParentID
			c.ParentID = &parent
		}

		if err := s.repo.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CategoryService) checkParent(ctx context.Context, id, parentID uint) error {
	if parentID == id {
		return ErrInvalidCategory.WithMessage("Category cannot be its own parent")
	}
	if _, err := s.repo.GetCategory(ctx, parentID); err != nil {
		return err
	}

	all, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to retrieve categories: %w", err)
	}
	for _, below := range subtree(all, id) {
		if below == parentID {
			return ErrInvalidCategory.WithMessage("Category cannot move below its own subcategory")
		}
	}
	return nil
}

// DeleteCategory removes a category that has no products and no
// subcategories
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetCategory(ctx, id); err != nil {
			return err
		}

		all, err := s.repo.ListCategories(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to retrieve categories: %w", err)
		}
		if len(subtree(all, id)) > 1 {
			return ErrCategoryInUse.WithMessage("Category still has subcategories")
		}

		_, count, err := s.products.ListProducts(ctx, ListFilter{CategoryIDs: []uint{id}, Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to count category products: %w", err)
		}
		if count > 0 {
			return ErrCategoryInUse.WithMessage("Category still has %d products", count)
		}

		return s.repo.DeleteCategory(ctx, id)
	})
}

// ListBrands returns brands ordered by sort order, then name
func (s *CategoryService) ListBrands(ctx context.Context, includeInactive bool) ([]Brand, error) {
	brands, err := s.repo.ListBrands(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve brands: %w", err)
	}
	return brands, nil
}

// GetBrand retrieves a brand by ID
func (s *CategoryService) GetBrand(ctx context.Context, id uint) (*Brand, error) {
	return s.repo.GetBrand(ctx, id)
}

// CreateBrand creates a brand; the slug must be unique
func (s *CategoryService) CreateBrand(ctx context.Context, req *BrandRequest) (*Brand, error) {
	b := &Brand{}
	if err := applyBrand(b, req); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		brands, err := s.repo.ListBrands(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to retrieve brands: %w", err)
		}
		for _, existing := range brands {
			if existing.Slug == b.Slug {
				return ErrDuplicateBrand
			}
		}
		return s.repo.CreateBrand(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBrand replaces a brand's details
func (s *CategoryService) UpdateBrand(ctx context.Context, id uint, req *BrandRequest) (*Brand, error) {
	var updated *Brand

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetBrand(ctx, id)
		if err != nil {
			return err
		}
		if err := applyBrand(b, req); err != nil {
			return err
		}

		brands, err := s.repo.ListBrands(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to retrieve brands: %w", err)
		}
		for _, existing := range brands {
			if existing.ID != b.ID && existing.Slug == b.Slug {
				return ErrDuplicateBrand
			}
		}

		if err := s.repo.SaveBrand(ctx, b); err != nil {
			return fmt.Errorf("failed to update brand: %w", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyBrand(b *Brand, req *BrandRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrInvalidCategory.WithMessage("Brand name is required")
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return ErrInvalidCategory.WithMessage("Brand slug must contain letters or digits")
	}

	b.Name = name
	b.Slug = slug
	b.Description = req.Description
	b.LogoURL = req.LogoURL
	b.WebsiteURL = req.WebsiteURL
	b.IsIndianBrand = req.IsIndianBrand
	b.SortOrder = req.SortOrder
	b.IsActive = true
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	return nil
}
