// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
	"github.com/your-org/storefront-backend/internal/pkg/paging"
	"github.com/your-org/storefront-backend/internal/pkg/txn"
)

// Service handles the stock ledger. Every public mutation runs in one
// transaction: the counter row is locked, updated, and its movement is
// appended together, so a failure leaves neither behind.
type Service struct {
	products   product.Repository
	categories product.CategoryRepository
	repo       Repository
	tx         txn.Manager
	logger     *logrus.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService creates a new inventory service
func NewService(products product.Repository, categories product.CategoryRepository, repo Repository, tx txn.Manager, logger *logrus.Logger, m *metrics.Metrics) *Service {
	return &Service{
		products:   products,
		categories: categories,
		repo:       repo,
		tx:         tx,
		logger:     logger,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Change describes one ledger mutation
type Change struct {
	Target
	Quantity      int
	Type          MovementType
	Reason        string
	Actor         *uint
	ReferenceType ReferenceType
	ReferenceID   *uint
}

// SetStockRequest represents an admin stock adjustment
type SetStockRequest struct {
	Target
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// BulkSetStockRequest represents the stock management screen's bulk save
type BulkSetStockRequest struct {
	Adjustments []SetStockRequest `json:"adjustments" binding:"required,min=1,dive"`
	Reason      string            `json:"reason"`
}

// MovementListRequest represents ledger query parameters
type MovementListRequest struct {
	Page        int          `form:"page,default=1"`
	Limit       int          `form:"limit,default=20"`
	ProductID   *uint        `form:"product_id"`
	VariationID *uint        `form:"variation_id"`
	Type        MovementType `form:"type"`
	DateFrom    *time.Time   `form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time   `form:"date_to" time_format:"2006-01-02"`
}

// MovementListResponse represents movements with pagination
type MovementListResponse struct {
	Movements  []StockMovement   `json:"movements"`
	Pagination paging.Pagination `json:"pagination"`
}

// Reconciliation compares a counter with the sum of its ledger
type Reconciliation struct {
	Target
	Tracked       bool `json:"tracked"`
	StockQuantity int  `json:"stock_quantity"`
	LedgerTotal   int  `json:"ledger_total"`
	Balanced      bool `json:"balanced"`
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU               string                   `json:"sku" binding:"required"`
	Name              string                   `json:"name" binding:"required"`
	Slug              string                   `json:"slug"`
	Description       string                   `json:"description"`
	CategoryID        *uint                    `json:"category_id,omitempty"`
	BrandID           *uint                    `json:"brand_id,omitempty"`
	Price             decimal.Decimal          `json:"price" binding:"required"`
	ComparePrice      decimal.Decimal          `json:"compare_price"`
	GSTRate           *decimal.Decimal         `json:"gst_rate,omitempty"`
	HSNCode           string                   `json:"hsn_code"`
	TrackInventory    *bool                    `json:"track_inventory,omitempty"`
	InitialStock      int                      `json:"initial_stock"`
	LowStockThreshold *int                     `json:"low_stock_threshold,omitempty"`
	AllowBackorders   bool                     `json:"allow_backorders"`
	MinCartQuantity   int                      `json:"min_cart_quantity"`
	MaxCartQuantity   int                      `json:"max_cart_quantity"`
	Variations        []CreateVariationRequest `json:"variations,omitempty"`
}

// CreateVariationRequest represents variation creation data
type CreateVariationRequest struct {
	SKU               string           `json:"sku" binding:"required"`
	Name              string           `json:"name" binding:"required"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	InitialStock      int              `json:"initial_stock"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	AllowBackorders   bool             `json:"allow_backorders"`
}

// ReduceStock takes quantity units out of stock. It fails without touching
// anything when quantity <= 0, or when stock is short and backorders are off.
// Untracked products succeed with a nil movement.
func (s *Service) ReduceStock(ctx context.Context, ch Change) (*StockMovement, error) {
	if ch.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if ch.Type == "" {
		ch.Type = MovementTypeSale
	}
	if ch.Reason == "" {
		ch.Reason = "Sale"
	}
	if ch.ReferenceType == "" {
		ch.ReferenceType = ReferenceOrder
	}
	if !ch.Type.IsValid() {
		return nil, ErrInvalidMovementType
	}

	var movement *StockMovement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.lockCounter(ctx, ch.Target)
		if err != nil {
			return err
		}
		if !c.tracked() {
			return nil
		}

		p, err := planReduction(c.stock(), ch.Quantity, c.sku())
		if err != nil {
			return err
		}

		c.setQuantity(p.after)
		if ch.Type == MovementTypeSale {
			c.addSold(ch.Quantity)
		}

		movement, err = s.record(ctx, c, ch, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorded(movement)
	return movement, nil
}

// AddStock puts quantity units into stock
func (s *Service) AddStock(ctx context.Context, ch Change) (*StockMovement, error) {
	if ch.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if ch.Type == "" {
		ch.Type = MovementTypePurchase
	}
	if ch.Reason == "" {
		ch.Reason = "Stock adjustment"
	}
	if ch.ReferenceType == "" {
		ch.ReferenceType = ReferenceAdjustment
	}
	if !ch.Type.IsValid() {
		return nil, ErrInvalidMovementType
	}

	var movement *StockMovement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.lockCounter(ctx, ch.Target)
		if err != nil {
			return err
		}
		if !c.tracked() {
			return nil
		}

		p, err := planAddition(c.stock(), ch.Quantity)
		if err != nil {
			return err
		}

		c.setQuantity(p.after)
		if ch.Type == MovementTypeReturn {
			c.addSold(-ch.Quantity)
		}

		movement, err = s.record(ctx, c, ch, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorded(movement)
	return movement, nil
}

// ReturnStock reverses sales booked against ch's reference. Only the units
// that reference still holds out of stock come back, so backordered units
// and earlier returns are not restored twice. The sold counter drops by the
// full quantity. Nothing to restore yields a nil movement.
func (s *Service) ReturnStock(ctx context.Context, ch Change) (*StockMovement, error) {
	if ch.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if ch.ReferenceID == nil {
		return nil, ErrInvalidQuantity.WithMessage("A return must name the reference it reverses")
	}
	ch.Type = MovementTypeReturn
	if ch.Reason == "" {
		ch.Reason = "Return"
	}
	if ch.ReferenceType == "" {
		ch.ReferenceType = ReferenceOrder
	}

	var movement *StockMovement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.lockCounter(ctx, ch.Target)
		if err != nil {
			return err
		}
		if !c.tracked() {
			return nil
		}

		net, err := s.repo.SumReferenced(ctx, c.target(), ch.ReferenceType, *ch.ReferenceID)
		if err != nil {
			return fmt.Errorf("failed to sum referenced movements: %w", err)
		}

		p, err := planReturn(c.stock(), ch.Quantity, -net)
		if err != nil {
			return err
		}
		c.addSold(-ch.Quantity)

		if p.applied == 0 {
			if err := c.save(ctx, s.products); err != nil {
				return fmt.Errorf("failed to update stock: %w", err)
			}
			return nil
		}

		c.setQuantity(p.after)
		movement, err = s.record(ctx, c, ch, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorded(movement)
	return movement, nil
}

// SetStock moves a counter to an absolute quantity by recording the delta
// as an adjustment through AddStock/ReduceStock. A zero delta records nothing.
func (s *Service) SetStock(ctx context.Context, req SetStockRequest, actor *uint) (*StockMovement, error) {
	if req.Quantity < 0 {
		return nil, ErrNegativeStock
	}
	reason := req.Reason
	if reason == "" {
		reason = "Manual stock adjustment"
	}

	var movement *StockMovement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.lockCounter(ctx, req.Target)
		if err != nil {
			return err
		}
		if !c.tracked() {
			return nil
		}

		delta := req.Quantity - c.stock().Quantity
		ch := Change{
			Target:        req.Target,
			Type:          MovementTypeAdjustment,
			Reason:        reason,
			Actor:         actor,
			ReferenceType: ReferenceAdmin,
		}

		switch {
		case delta > 0:
			ch.Quantity = delta
			movement, err = s.AddStock(ctx, ch)
		case delta < 0:
			ch.Quantity = -delta
			movement, err = s.ReduceStock(ctx, ch)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// BulkSetStock applies several adjustments all-or-nothing
func (s *Service) BulkSetStock(ctx context.Context, req *BulkSetStockRequest, actor *uint) ([]StockMovement, error) {
	if len(req.Adjustments) == 0 {
		return nil, ErrInvalidQuantity.WithMessage("No stock adjustments supplied")
	}

	var movements []StockMovement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, adj := range req.Adjustments {
			if adj.Reason == "" {
				adj.Reason = req.Reason
			}
			m, err := s.SetStock(ctx, adj, actor)
			if err != nil {
				return fmt.Errorf("product %d: %w", adj.ProductID, err)
			}
			if m != nil {
				movements = append(movements, *m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// Reconcile checks the ledger invariant for one counter
func (s *Service) Reconcile(ctx context.Context, target Target) (*Reconciliation, error) {
	p, err := s.products.GetProduct(ctx, target.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := resolveCounter(p, target.VariationID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.SumMovements(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements: %w", err)
	}

	stock := c.stock().Quantity
	return &Reconciliation{
		Target:        target,
		Tracked:       c.tracked(),
		StockQuantity: stock,
		LedgerTotal:   total,
		Balanced:      stock == total,
	}, nil
}

// ListMovements retrieves ledger entries with filtering and pagination
func (s *Service) ListMovements(ctx context.Context, req *MovementListRequest) (*MovementListResponse, error) {
	if req.Type != "" && !req.Type.IsValid() {
		return nil, ErrInvalidMovementType
	}
	page, limit := paging.Normalize(req.Page, req.Limit)

	movements, total, err := s.repo.ListMovements(ctx, MovementFilter{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Type:        req.Type,
		From:        req.DateFrom,
		To:          req.DateTo,
		Offset:      paging.Offset(page, limit),
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return &MovementListResponse{
		Movements:  movements,
		Pagination: paging.New(page, limit, total),
	}, nil
}

// ListAlerts retrieves stock alerts, newest first
func (s *Service) ListAlerts(ctx context.Context, openOnly bool) ([]StockAlert, error) {
	alerts, err := s.repo.ListAlerts(ctx, openOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve alerts: %w", err)
	}
	return alerts, nil
}

// ResolveAlert marks an alert handled by an admin
func (s *Service) ResolveAlert(ctx context.Context, id uint, actor *uint) (*StockAlert, error) {
	var alert *StockAlert
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetAlert(ctx, id)
		if err != nil {
			return err
		}
		if a.IsResolved {
			return ErrAlertResolved
		}
		now := s.now()
		a.IsResolved = true
		a.ResolvedAt = &now
		a.ResolvedBy = actor
		alert = a
		return s.repo.SaveAlert(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// CreateProduct creates a product and its variations at zero stock and
// books the opening quantities as purchase movements in the same
// transaction, so the ledger reconciles from the first row.
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest, actor *uint) (*product.Product, error) {
	p, err := newProduct(req)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetProductBySKU(ctx, p.SKU); err == nil {
			return product.ErrDuplicateSKU
		}
		if err := s.assignSlug(ctx, p); err != nil {
			return err
		}
		if p.CategoryID != nil {
			if _, err := s.categories.GetCategory(ctx, *p.CategoryID); err != nil {
				return err
			}
		}
		if p.BrandID != nil {
			if _, err := s.categories.GetBrand(ctx, *p.BrandID); err != nil {
				return err
			}
		}
		if err := s.products.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		opening := Change{
			Type:          MovementTypePurchase,
			Reason:        "Opening stock",
			Actor:         actor,
			ReferenceType: ReferenceAdmin,
		}
		if req.InitialStock > 0 {
			opening.Target = Target{ProductID: p.ID}
			opening.Quantity = req.InitialStock
			if _, err := s.AddStock(ctx, opening); err != nil {
				return err
			}
		}
		for i, vr := range req.Variations {
			if vr.InitialStock <= 0 {
				continue
			}
			id := p.Variations[i].ID
			opening.Target = Target{ProductID: p.ID, VariationID: &id}
			opening.Quantity = vr.InitialStock
			if _, err := s.AddStock(ctx, opening); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": p.ID,
		"sku":        p.SKU,
	}).Info("Product created")

	return s.products.GetProduct(ctx, p.ID)
}

// Private helper methods

func (s *Service) lockCounter(ctx context.Context, target Target) (*counter, error) {
	p, err := s.products.LockProduct(ctx, target.ProductID)
	if err != nil {
		return nil, err
	}
	return resolveCounter(p, target.VariationID)
}

// record persists the counter, appends the movement and keeps alerts in step
func (s *Service) record(ctx context.Context, c *counter, ch Change, p plan) (*StockMovement, error) {
	if err := c.save(ctx, s.products); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	movement := &StockMovement{
		ProductID:           c.product.ID,
		VariationID:         c.target().VariationID,
		MovementType:        ch.Type,
		Quantity:            p.applied,
		BackorderedQuantity: p.backordered,
		StockBefore:         p.before,
		StockAfter:          p.after,
		ReferenceType:       ch.ReferenceType,
		ReferenceID:         ch.ReferenceID,
		Reason:              ch.Reason,
		PerformedBy:         ch.Actor,
		PerformedAt:         s.now(),
	}
	if err := s.repo.AppendMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := s.syncAlert(ctx, c, ch.Actor); err != nil {
		return nil, err
	}
	return movement, nil
}

// syncAlert opens an alert when a counter enters low/out of stock and
// resolves the open one once it is back in stock
func (s *Service) syncAlert(ctx context.Context, c *counter, actor *uint) error {
	target := c.target()
	open, err := s.repo.FindOpenAlert(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to load stock alert: %w", err)
	}

	stock := c.stock()
	alertType, raise := alertTypeFor(c.status())

	switch {
	case raise && open == nil:
		return s.repo.CreateAlert(ctx, &StockAlert{
			ProductID:    target.ProductID,
			VariationID:  target.VariationID,
			AlertType:    alertType,
			CurrentStock: stock.Quantity,
			Threshold:    stock.LowStockThreshold,
			CreatedAt:    s.now(),
		})
	case raise:
		open.AlertType = alertType
		open.CurrentStock = stock.Quantity
		open.Threshold = stock.LowStockThreshold
		return s.repo.SaveAlert(ctx, open)
	case open != nil:
		now := s.now()
		open.IsResolved = true
		open.ResolvedAt = &now
		open.ResolvedBy = actor
		open.CurrentStock = stock.Quantity
		return s.repo.SaveAlert(ctx, open)
	}
	return nil
}

func (s *Service) recorded(m *StockMovement) {
	if m == nil {
		return
	}
	s.metrics.StockMoved(string(m.MovementType))
	s.logger.WithFields(logrus.Fields{
		"product_id":     m.ProductID,
		"variation_id":   m.VariationID,
		"movement_type":  m.MovementType,
		"quantity":       m.Quantity,
		"stock_after":    m.StockAfter,
		"reference_type": m.ReferenceType,
		"reference_id":   m.ReferenceID,
	}).Info("Stock movement recorded")
}

func newProduct(req *CreateProductRequest) (*product.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)
	if sku == "" || name == "" {
		return nil, ErrInvalidProduct.WithMessage("SKU and name are required")
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidProduct.WithMessage("Price must be greater than zero")
	}
	if req.InitialStock < 0 {
		return nil, ErrNegativeStock
	}

	tracked := true
	if req.TrackInventory != nil {
		tracked = *req.TrackInventory
	}
	if !tracked && req.InitialStock > 0 {
		return nil, ErrInvalidProduct.WithMessage("Initial stock requires inventory tracking")
	}

	p := &product.Product{
		SKU:               sku,
		Name:              name,
		Slug:              strings.TrimSpace(req.Slug),
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		BrandID:           req.BrandID,
		Price:             req.Price.Round(2),
		ComparePrice:      req.ComparePrice.Round(2),
		GSTRate:           product.DefaultGSTRate,
		HSNCode:           req.HSNCode,
		IsActive:          true,
		TrackInventory:    tracked,
		LowStockThreshold: 5,
		AllowBackorders:   req.AllowBackorders,
		MinCartQuantity:   req.MinCartQuantity,
		MaxCartQuantity:   req.MaxCartQuantity,
	}
	if req.GSTRate != nil {
		if req.GSTRate.IsNegative() || req.GSTRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrInvalidProduct.WithMessage("GST rate must be between 0 and 100")
		}
		p.GSTRate = req.GSTRate.Round(2)
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, ErrInvalidProduct.WithMessage("Low stock threshold cannot be negative")
		}
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if p.MinCartQuantity == 0 {
		p.MinCartQuantity = 1
	}
	if p.MaxCartQuantity == 0 {
		p.MaxCartQuantity = 10
	}
	if p.MinCartQuantity < 1 || p.MaxCartQuantity < p.MinCartQuantity {
		return nil, ErrInvalidProduct.WithMessage("Cart quantity limits must satisfy 1 <= min <= max")
	}

	for _, vr := range req.Variations {
		if strings.TrimSpace(vr.SKU) == "" || strings.TrimSpace(vr.Name) == "" {
			return nil, ErrInvalidProduct.WithMessage("Variation SKU and name are required")
		}
		if vr.InitialStock < 0 {
			return nil, ErrNegativeStock
		}
		if !tracked && vr.InitialStock > 0 {
			return nil, ErrInvalidProduct.WithMessage("Initial stock requires inventory tracking")
		}
		v := product.Variation{
			SKU:               strings.TrimSpace(vr.SKU),
			Name:              strings.TrimSpace(vr.Name),
			LowStockThreshold: p.LowStockThreshold,
			AllowBackorders:   vr.AllowBackorders,
			IsActive:          true,
		}
		if vr.Price != nil {
			if !vr.Price.IsPositive() {
				return nil, ErrInvalidProduct.WithMessage("Variation price must be greater than zero")
			}
			v.Price = decimal.NewNullDecimal(vr.Price.Round(2))
		}
		if vr.LowStockThreshold != nil {
			if *vr.LowStockThreshold < 0 {
				return nil, ErrInvalidProduct.WithMessage("Low stock threshold cannot be negative")
			}
			v.LowStockThreshold = *vr.LowStockThreshold
		}
		v.RefreshStockStatus(tracked)
		p.Variations = append(p.Variations, v)
	}

	p.RefreshStockStatus()
	return p, nil
}

// maxSlugSuffix bounds the -2, -3, ... search for a free generated slug
const maxSlugSuffix = 100

// assignSlug keeps an explicit slug as long as it is free. Otherwise the
// slug is generated from the name, or the SKU when the name has no usable
// characters, and numbered until it is unique.
func (s *Service) assignSlug(ctx context.Context, p *product.Product) error {
	if p.Slug != "" {
		taken, err := s.products.SlugExists(ctx, p.Slug)
		if err != nil {
			return err
		}
		if taken {
			return product.ErrDuplicateSlug
		}
		return nil
	}

	base := product.Slugify(p.Name)
	if base == "" {
		base = product.Slugify(p.SKU)
	}
	if base == "" {
		base = "product-" + strings.ToLower(uuid.NewString()[:8])
	}

	candidate := base
	for n := 2; n <= maxSlugSuffix+1; n++ {
		taken, err := s.products.SlugExists(ctx, candidate)
		if err != nil {
			return err
		}
		if !taken {
			p.Slug = candidate
			return nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return product.ErrDuplicateSlug.WithMessage("No free slug left for %s", base)
}
