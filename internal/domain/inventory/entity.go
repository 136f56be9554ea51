// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReturn     MovementType = "return"
)

// IsValid reports whether t is a known movement type
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment, MovementTypeReturn:
		return true
	}
	return false
}

// ReferenceType identifies what caused a movement
type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "order"
	ReferenceAdmin      ReferenceType = "admin"
	ReferenceAdjustment ReferenceType = "adjustment"
	ReferenceOther      ReferenceType = "other"
)

// AlertType represents the kind of stock alert
type AlertType string

const (
	AlertTypeLowStock   AlertType = "low_stock"
	AlertTypeOutOfStock AlertType = "out_of_stock"
)

// StockMovement is an immutable ledger entry. StockAfter always equals
// StockBefore + Quantity; rows are only ever inserted.
type StockMovement struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	ProductID           uint          `gorm:"not null;index" json:"product_id"`
	VariationID         *uint         `gorm:"index" json:"variation_id,omitempty"`
	MovementType        MovementType  `gorm:"size:20;not null;index" json:"movement_type"`
	Quantity            int           `gorm:"not null" json:"quantity"`
	BackorderedQuantity int           `gorm:"not null;default:0" json:"backordered_quantity"`
	StockBefore         int           `gorm:"not null" json:"stock_before"`
	StockAfter          int           `gorm:"not null" json:"stock_after"`
	ReferenceType       ReferenceType `gorm:"size:20;default:'other'" json:"reference_type"`
	ReferenceID         *uint         `gorm:"index" json:"reference_id,omitempty"`
	Reason              string        `gorm:"type:text" json:"reason"`
	PerformedBy         *uint         `gorm:"index" json:"performed_by,omitempty"`
	PerformedAt         time.Time     `gorm:"not null;index" json:"performed_at"`
}

// StockAlert flags a product or variation that dropped to low or no stock
type StockAlert struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProductID    uint       `gorm:"not null;index" json:"product_id"`
	VariationID  *uint      `gorm:"index" json:"variation_id,omitempty"`
	AlertType    AlertType  `gorm:"size:20;not null" json:"alert_type"`
	CurrentStock int        `gorm:"not null" json:"current_stock"`
	Threshold    int        `gorm:"not null" json:"threshold"`
	IsResolved   bool       `gorm:"default:false;index" json:"is_resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   *uint      `json:"resolved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName overrides
func (StockMovement) TableName() string { return "stock_movements" }
func (StockAlert) TableName() string    { return "stock_alerts" }

// Target identifies the stock counter a ledger call operates on: the
// product itself, or one of its variations.
type Target struct {
	ProductID   uint  `json:"product_id" binding:"required"`
	VariationID *uint `json:"variation_id,omitempty"`
}

// alertTypeFor maps a derived stock status to the alert it should raise
func alertTypeFor(status product.StockStatus) (AlertType, bool) {
	switch status {
	case product.StockStatusLowStock:
		return AlertTypeLowStock, true
	case product.StockStatusOutOfStock, product.StockStatusOnBackorder:
		return AlertTypeOutOfStock, true
	}
	return "", false
}
