// internal/domain/inventory/repository.go
package inventory

import (
	"context"
	"time"
)

// MovementFilter narrows a ledger listing
type MovementFilter struct {
	ProductID   *uint
	VariationID *uint
	Type        MovementType
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

// Repository is the persistence contract for the ledger. There is no
// update or delete for movements.
type Repository interface {
	AppendMovement(ctx context.Context, m *StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)
	// SumMovements totals the movement quantities of exactly this target;
	// a nil VariationID means product-level movements only.
	SumMovements(ctx context.Context, target Target) (int, error)
	// SumReferenced totals the movement quantities of exactly this target
	// that were booked against one reference
	SumReferenced(ctx context.Context, target Target, refType ReferenceType, refID uint) (int, error)

	// FindOpenAlert returns nil, nil when the target has no unresolved alert
	FindOpenAlert(ctx context.Context, target Target) (*StockAlert, error)
	CreateAlert(ctx context.Context, a *StockAlert) error
	SaveAlert(ctx context.Context, a *StockAlert) error
	GetAlert(ctx context.Context, id uint) (*StockAlert, error)
	ListAlerts(ctx context.Context, openOnly bool) ([]StockAlert, error)
}
