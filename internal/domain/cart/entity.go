// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Cart is the stored cart of a user or guest session (kept in redis)
type Cart struct {
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one stored cart line. Prices are not stored; they are read from
// the catalog whenever the cart is shown or checked out.
type Item struct {
	ProductID   uint      `json:"product_id"`
	VariationID *uint     `json:"variation_id,omitempty"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// Owner identifies whose cart it is. A signed-in user wins over a session.
type Owner struct {
	UserID    *uint
	SessionID string
}

// ItemView is a cart line priced against the live catalog
type ItemView struct {
	ProductID     uint                `json:"product_id"`
	VariationID   *uint               `json:"variation_id,omitempty"`
	Name          string              `json:"name"`
	SKU           string              `json:"sku"`
	VariationName string              `json:"variation_name,omitempty"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	Quantity      int                 `json:"quantity"`
	LineTotal     decimal.Decimal     `json:"line_total"`
	StockStatus   product.StockStatus `json:"stock_status"`
	Available     bool                `json:"available"`
}

// View is the cart as returned to the shopper
type View struct {
	Items         []ItemView      `json:"items"`
	ItemCount     int             `json:"item_count"`     // Number of unique items
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	Subtotal      decimal.Decimal `json:"subtotal"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (c *Cart) find(productID uint, variationID *uint) int {
	for i, item := range c.Items {
		if item.ProductID == productID && sameVariation(item.VariationID, variationID) {
			return i
		}
	}
	return -1
}

func sameVariation(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
