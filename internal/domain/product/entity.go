// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockStatus represents the derived availability of a product or variation
type StockStatus string

const (
	StockStatusInStock     StockStatus = "in_stock"
	StockStatusLowStock    StockStatus = "low_stock"
	StockStatusOutOfStock  StockStatus = "out_of_stock"
	StockStatusOnBackorder StockStatus = "on_backorder"
)

// DefaultGSTRate is applied when a product is created without a rate
var DefaultGSTRate = decimal.NewFromInt(18)

// Product represents the product entity
type Product struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	SKU               string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string          `gorm:"not null;size:255" json:"name"`
	Slug              string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description       string          `gorm:"type:text" json:"description"`
	CategoryID        *uint           `gorm:"index" json:"category_id,omitempty"`
	BrandID           *uint           `gorm:"index" json:"brand_id,omitempty"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	ComparePrice      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"compare_price"`
	GSTRate           decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	HSNCode           string          `gorm:"size:10" json:"hsn_code"`
	IsActive          bool            `gorm:"not null" json:"is_active"`
	TrackInventory    bool            `gorm:"not null" json:"track_inventory"`
	StockQuantity     int             `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null" json:"low_stock_threshold"`
	AllowBackorders   bool            `gorm:"default:false" json:"allow_backorders"`
	StockStatus       StockStatus     `gorm:"size:20;not null;index" json:"stock_status"`
	TotalSold         int             `gorm:"not null;default:0" json:"total_sold"`
	MinCartQuantity   int             `gorm:"not null" json:"min_cart_quantity"`
	MaxCartQuantity   int             `gorm:"not null" json:"max_cart_quantity"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Variations []Variation `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"variations,omitempty"`
}

// Variation is a sellable variant with its own stock. Inventory tracking is
// inherited from the parent product.
type Variation struct {
	ID                uint                `gorm:"primaryKey" json:"id"`
	ProductID         uint                `gorm:"not null;index" json:"product_id"`
	SKU               string              `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name              string              `gorm:"not null;size:255" json:"name"`
	Price             decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	StockQuantity     int                 `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int                 `gorm:"not null" json:"low_stock_threshold"`
	AllowBackorders   bool                `gorm:"default:false" json:"allow_backorders"`
	StockStatus       StockStatus         `gorm:"size:20;not null" json:"stock_status"`
	TotalSold         int                 `gorm:"not null;default:0" json:"total_sold"`
	IsActive          bool                `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string   { return "products" }
func (Variation) TableName() string { return "product_variations" }

// Stock is the input of the stock status derivation
type Stock struct {
	Quantity          int
	LowStockThreshold int
	AllowBackorders   bool
	Tracked           bool
}

// Status derives the stock status. It is the only place a status is decided.
func (s Stock) Status() StockStatus {
	if !s.Tracked {
		return StockStatusInStock
	}

	switch {
	case s.Quantity <= 0 && s.AllowBackorders:
		return StockStatusOnBackorder
	case s.Quantity <= 0:
		return StockStatusOutOfStock
	case s.Quantity <= s.LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// CanSupply reports whether quantity units can be sold right now
func (s Stock) CanSupply(quantity int) bool {
	if !s.Tracked || s.AllowBackorders {
		return true
	}
	return s.Quantity >= quantity
}

// IsPurchasable reports whether the status allows adding to a cart
func (st StockStatus) IsPurchasable() bool {
	return st == StockStatusInStock || st == StockStatusLowStock || st == StockStatusOnBackorder
}

// Business methods for Product

// Stock returns the product-level stock inputs
func (p *Product) Stock() Stock {
	return Stock{
		Quantity:          p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		AllowBackorders:   p.AllowBackorders,
		Tracked:           p.TrackInventory,
	}
}

// RefreshStockStatus recomputes StockStatus from the current stock fields
func (p *Product) RefreshStockStatus() {
	p.StockStatus = p.Stock().Status()
}

// BeforeSave hook keeps the stored status consistent with quantity
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	p.RefreshStockStatus()
	return nil
}

// IsInStock checks if product is available for purchase
func (p *Product) IsInStock() bool {
	return p.Stock().Status().IsPurchasable()
}

// IsLowStock checks if a tracked product is at or below its threshold
func (p *Product) IsLowStock() bool {
	return p.TrackInventory && p.StockQuantity <= p.LowStockThreshold
}

// GetDiscountPercentage returns the markdown against the compare price
func (p *Product) GetDiscountPercentage() int {
	if p.ComparePrice.IsPositive() && p.Price.LessThan(p.ComparePrice) {
		return int(p.ComparePrice.Sub(p.Price).Mul(decimal.NewFromInt(100)).Div(p.ComparePrice).IntPart())
	}
	return 0
}

// FindVariation returns the loaded variation with the given id
func (p *Product) FindVariation(id uint) (*Variation, bool) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// Business methods for Variation

// Stock returns the variation stock inputs; tracked comes from the product
func (v *Variation) Stock(tracked bool) Stock {
	return Stock{
		Quantity:          v.StockQuantity,
		LowStockThreshold: v.LowStockThreshold,
		AllowBackorders:   v.AllowBackorders,
		Tracked:           tracked,
	}
}

// RefreshStockStatus recomputes StockStatus from the current stock fields
func (v *Variation) RefreshStockStatus(tracked bool) {
	v.StockStatus = v.Stock(tracked).Status()
}

// EffectivePrice returns the variation override or the product price
func (v *Variation) EffectivePrice(productPrice decimal.Decimal) decimal.Decimal {
	if v.Price.Valid {
		return v.Price.Decimal
	}
	return productPrice
}
