package memory

import (
	"context"
	"sort"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// AppendMovement inserts a ledger row
func (s *Store) AppendMovement(ctx context.Context, m *inventory.StockMovement) error {
	if err := s.fail("AppendMovement"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	m.ID = s.nextID("stock_movements")
	if m.PerformedAt.IsZero() {
		m.PerformedAt = now()
	}
	s.t.movements = append(s.t.movements, *m)
	return nil
}

// ListMovements returns movements newest first
func (s *Store) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	if err := s.fail("ListMovements"); err != nil {
		return nil, 0, err
	}
	defer s.lock(ctx)()

	var rows []inventory.StockMovement
	for _, m := range s.t.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.VariationID != nil && (m.VariationID == nil || *m.VariationID != *filter.VariationID) {
			continue
		}
		if filter.Type != "" && m.MovementType != filter.Type {
			continue
		}
		if filter.From != nil && m.PerformedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.PerformedAt.After(*filter.To) {
			continue
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })

	start, end := window(len(rows), filter.Offset, filter.Limit)
	return append([]inventory.StockMovement{}, rows[start:end]...), int64(len(rows)), nil
}

// SumMovements totals the quantities recorded for exactly target
func (s *Store) SumMovements(ctx context.Context, target inventory.Target) (int, error) {
	if err := s.fail("SumMovements"); err != nil {
		return 0, err
	}
	defer s.lock(ctx)()

	total := 0
	for _, m := range s.t.movements {
		if m.ProductID == target.ProductID && sameID(m.VariationID, target.VariationID) {
			total += m.Quantity
		}
	}
	return total, nil
}

// SumReferenced totals the quantities of target booked against one reference
func (s *Store) SumReferenced(ctx context.Context, target inventory.Target, refType inventory.ReferenceType, refID uint) (int, error) {
	if err := s.fail("SumReferenced"); err != nil {
		return 0, err
	}
	defer s.lock(ctx)()

	total := 0
	for _, m := range s.t.movements {
		if m.ProductID != target.ProductID || !sameID(m.VariationID, target.VariationID) {
			continue
		}
		if m.ReferenceType == refType && m.ReferenceID != nil && *m.ReferenceID == refID {
			total += m.Quantity
		}
	}
	return total, nil
}

// FindOpenAlert returns the unresolved alert of target, if any
func (s *Store) FindOpenAlert(ctx context.Context, target inventory.Target) (*inventory.StockAlert, error) {
	if err := s.fail("FindOpenAlert"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	for _, a := range s.t.alerts {
		if !a.IsResolved && a.ProductID == target.ProductID && sameID(a.VariationID, target.VariationID) {
			alert := a
			return &alert, nil
		}
	}
	return nil, nil
}

// CreateAlert inserts an alert
func (s *Store) CreateAlert(ctx context.Context, a *inventory.StockAlert) error {
	if err := s.fail("CreateAlert"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	a.ID = s.nextID("stock_alerts")
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	s.t.alerts[a.ID] = *a
	return nil
}

// SaveAlert updates an alert
func (s *Store) SaveAlert(ctx context.Context, a *inventory.StockAlert) error {
	if err := s.fail("SaveAlert"); err != nil {
		return err
	}
	defer s.lock(ctx)()

	if _, ok := s.t.alerts[a.ID]; !ok {
		return inventory.ErrAlertNotFound
	}
	s.t.alerts[a.ID] = *a
	return nil
}

// GetAlert loads an alert by ID
func (s *Store) GetAlert(ctx context.Context, id uint) (*inventory.StockAlert, error) {
	if err := s.fail("GetAlert"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	a, ok := s.t.alerts[id]
	if !ok {
		return nil, inventory.ErrAlertNotFound
	}
	return &a, nil
}

// ListAlerts returns alerts newest first
func (s *Store) ListAlerts(ctx context.Context, openOnly bool) ([]inventory.StockAlert, error) {
	if err := s.fail("ListAlerts"); err != nil {
		return nil, err
	}
	defer s.lock(ctx)()

	alerts := []inventory.StockAlert{}
	for _, a := range s.t.alerts {
		if openOnly && a.IsResolved {
			continue
		}
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID > alerts[j].ID })
	return alerts, nil
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
