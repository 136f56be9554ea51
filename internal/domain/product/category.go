// internal/domain/product/category.go
package product

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Category groups products; categories nest through ParentID
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"not null" json:"sort_order"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	IsFeatured  bool           `gorm:"not null" json:"is_featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Brand is the maker a product is sold under
type Brand struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	LogoURL       string         `gorm:"size:500" json:"logo_url"`
	WebsiteURL    string         `gorm:"size:500" json:"website_url"`
	IsIndianBrand bool           `gorm:"not null" json:"is_indian_brand"`
	SortOrder     int            `gorm:"not null" json:"sort_order"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }
func (Brand) TableName() string    { return "brands" }

// CategoryTree is a category with its active subcategories
type CategoryTree struct {
	Category
	Children []CategoryTree `json:"children,omitempty"`
}

// CategoryRepository is the persistence contract for categories and brands.
// Lookups return ErrCategoryNotFound / ErrBrandNotFound on a miss.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uint) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	SaveCategory(ctx context.Context, c *Category) error
	// ListCategories returns categories ordered by sort order, then name
	ListCategories(ctx context.Context, includeInactive bool) ([]Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateBrand(ctx context.Context, b *Brand) error
	GetBrand(ctx context.Context, id uint) (*Brand, error)
	SaveBrand(ctx context.Context, b *Brand) error
	ListBrands(ctx context.Context, includeInactive bool) ([]Brand, error)
}

// subtree returns id and the IDs of every category below it
func subtree(categories []Category, id uint) []uint {
	children := make(map[uint][]uint)
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []uint{id}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}

// buildTree nests categories under their parents. Categories whose parent
// is not in the list become roots.
func buildTree(categories []Category) []CategoryTree {
	present := make(map[uint]bool, len(categories))
	for _, c := range categories {
		present[c.ID] = true
	}

	var build func(parent *uint) []CategoryTree
	build = func(parent *uint) []CategoryTree {
		var nodes []CategoryTree
		for _, c := range categories {
			isChild := parent != nil && c.ParentID != nil && *c.ParentID == *parent
			isRoot := parent == nil && (c.ParentID == nil || !present[*c.ParentID])
			if !isChild && !isRoot {
				continue
			}
			id := c.ID
			nodes = append(nodes, CategoryTree{Category: c, Children: build(&id)})
		}
		return nodes
	}
	return build(nil)
}
