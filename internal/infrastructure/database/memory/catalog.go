package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CreateCategory inserts c, enforcing the unique slug
func (s *Store) CreateCategory(ctx context.Context, c *product.Category) error {
	if err := s.fail("CreateCategory"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.categories {
		if existing.Slug == c.Slug {
			return fmt.Errorf("duplicate key value violates unique constraint \"categories_slug_key\"")
		}
	}
	ts := now()
	c.ID = s.nextID("categories")
	c.CreatedAt, c.UpdatedAt = ts, ts
	s.t.categories[c.ID] = *c
	return nil
}

// GetCategory loads a category by ID
func (s *Store) GetCategory(ctx context.Context, id uint) (*product.Category, error) {
	if err := s.fail("GetCategory"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	c, ok := s.t.categories[id]
	if !ok {
		return nil, product.ErrCategoryNotFound
	}
	return &c, nil
}

// GetCategoryBySlug loads a category by slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*product.Category, error) {
	if err := s.fail("GetCategoryBySlug"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for _, c := range s.t.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, product.ErrCategoryNotFound
}

// SaveCategory updates a category row
func (s *Store) SaveCategory(ctx context.Context, c *product.Category) error {
	if err := s.fail("SaveCategory"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.categories[c.ID]; !ok {
		return product.ErrCategoryNotFound
	}
	c.UpdatedAt = now()
	s.t.categories[c.ID] = *c
	return nil
}

// ListCategories returns categories ordered by sort order, then name
func (s *Store) ListCategories(ctx context.Context, includeInactive bool) ([]product.Category, error) {
	if err := s.fail("ListCategories"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	categories := make([]product.Category, 0, len(s.t.categories))
	for _, c := range s.t.categories {
		if includeInactive || c.IsActive {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// DeleteCategory removes a category
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.fail("DeleteCategory"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.categories[id]; !ok {
		return product.ErrCategoryNotFound
	}
	delete(s.t.categories, id)
	return nil
}

// CreateBrand inserts b, enforcing the unique slug
func (s *Store) CreateBrand(ctx context.Context, b *product.Brand) error {
	if err := s.fail("CreateBrand"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.brands {
		if existing.Slug == b.Slug {
			return fmt.Errorf("duplicate key value violates unique constraint \"brands_slug_key\"")
		}
	}
	ts := now()
	b.ID = s.nextID("brands")
	b.CreatedAt, b.UpdatedAt = ts, ts
	s.t.brands[b.ID] = *b
	return nil
}

// GetBrand loads a brand by ID
func (s *Store) GetBrand(ctx context.Context, id uint) (*product.Brand, error) {
	if err := s.fail("GetBrand"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	b, ok := s.t.brands[id]
	if !ok {
		return nil, product.ErrBrandNotFound
	}
	return &b, nil
}

// SaveBrand updates a brand row
func (s *Store) SaveBrand(ctx context.Context, b *product.Brand) error {
	if err := s.fail("SaveBrand"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.brands[b.ID]; !ok {
		return product.ErrBrandNotFound
	}
	b.UpdatedAt = now()
	s.t.brands[b.ID] = *b
	return nil
}

// ListBrands returns brands ordered by sort order, then name
func (s *Store) ListBrands(ctx context.Context, includeInactive bool) ([]product.Brand, error) {
	if err := s.fail("ListBrands"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	brands := make([]product.Brand, 0, len(s.t.brands))
	for _, b := range s.t.brands {
		if includeInactive || b.IsActive {
			brands = append(brands, b)
		}
	}
	sort.Slice(brands, func(i, j int) bool {
		if brands[i].SortOrder != brands[j].SortOrder {
			return brands[i].SortOrder < brands[j].SortOrder
		}
		return brands[i].Name < brands[j].Name
	})
	return brands, nil
}
