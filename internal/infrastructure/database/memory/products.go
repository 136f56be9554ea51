package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CreateProduct inserts p and its variations, assigning IDs
func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	if err := s.fail("CreateProduct"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	for _, existing := range s.t.products {
		if existing.SKU == p.SKU {
			return fmt.Errorf("duplicate key value violates unique constraint \"products_sku_key\"")
		}
		if existing.Slug == p.Slug {
			return fmt.Errorf("duplicate key value violates unique constraint \"products_slug_key\"")
		}
	}

	ts := now()
	if err := p.BeforeSave(nil); err != nil {
		return err
	}
	p.ID = s.nextID("products")
	p.CreatedAt, p.UpdatedAt = ts, ts

	for i := range p.Variations {
		v := &p.Variations[i]
		v.ID = s.nextID("product_variations")
		v.ProductID = p.ID
		v.CreatedAt, v.UpdatedAt = ts, ts
		s.t.variations[v.ID] = *v
	}

	row := *p
	row.Variations = nil
	s.t.products[p.ID] = row
	return nil
}

// GetProduct loads a product with its variations
func (s *Store) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	if err := s.fail("GetProduct"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()
	return s.loadProduct(id)
}

// GetProductBySKU loads a product by SKU
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*product.Product, error) {
	if err := s.fail("GetProductBySKU"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for id, p := range s.t.products {
		if p.SKU == sku {
			return s.loadProduct(id)
		}
	}
	return nil, product.ErrProductNotFound
}

// SlugExists reports whether a product holds slug
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	if err := s.fail("SlugExists"); err != nil {
		return false, err
	}
	defer s.lock(ctx)()

	for _, p := range s.t.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// LockProduct loads a product; the transaction lock already serializes it
func (s *Store) LockProduct(ctx context.Context, id uint) (*product.Product, error) {
	if err := s.fail("LockProduct"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()
	return s.loadProduct(id)
}

// SaveProduct updates the product row
func (s *Store) SaveProduct(ctx context.Context, p *product.Product) error {
	if err := s.fail("SaveProduct"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	if err := p.BeforeSave(nil); err != nil {
		return err
	}
	p.UpdatedAt = now()

	row := *p
	row.Variations = nil
	s.t.products[p.ID] = row
	return nil
}

// SaveVariation updates a variation row
func (s *Store) SaveVariation(ctx context.Context, v *product.Variation) error {
	if err := s.fail("SaveVariation"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.variations[v.ID]; !ok {
		return product.ErrVariationNotFound
	}
	v.UpdatedAt = now()
	s.t.variations[v.ID] = *v
	return nil
}

// ListProducts filters products ordered by ID
func (s *Store) ListProducts(ctx context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	if err := s.fail("ListProducts"); err != nil {
		return nil, 0, err
	}
	defer s.lock(ctx)()

	search := strings.ToLower(filter.Search)
	var ids []uint
	for id, p := range s.t.products {
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, p.StockStatus) {
			continue
		}
		if filter.Active != nil && p.IsActive != *filter.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		if len(filter.CategoryIDs) > 0 && (p.CategoryID == nil || !hasID(filter.CategoryIDs, *p.CategoryID)) {
			continue
		}
		if filter.BrandID != nil && !sameID(p.BrandID, filter.BrandID) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start, end := window(len(ids), filter.Offset, filter.Limit)
	products := make([]product.Product, 0, end-start)
	for _, id := range ids[start:end] {
		p, _ := s.loadProduct(id)
		products = append(products, *p)
	}
	return products, int64(len(ids)), nil
}

// HasOrderItems reports whether any order line references the product
func (s *Store) HasOrderItems(ctx context.Context, productID uint) (bool, error) {
	if err := s.fail("HasOrderItems"); err != nil {
		return false, err
	}
	defer s.lock(ctx)()

	for _, item := range s.t.items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// DeleteProduct removes a product and its variations
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.fail("DeleteProduct"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(s.t.products, id)
	for vid, v := range s.t.variations {
		if v.ProductID == id {
			delete(s.t.variations, vid)
		}
	}
	return nil
}

func (s *Store) loadProduct(id uint) (*product.Product, error) {
	row, ok := s.t.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}

	p := row
	p.Variations = nil
	for _, v := range s.t.variations {
		if v.ProductID == id {
			p.Variations = append(p.Variations, v)
		}
	}
	sort.Slice(p.Variations, func(i, j int) bool { return p.Variations[i].ID < p.Variations[j].ID })
	return &p, nil
}

func hasStatus(statuses []product.StockStatus, st product.StockStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func hasID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
