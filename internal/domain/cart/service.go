// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Store is the key/value store carts live in
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service handles cart business logic
type Service struct {
	products product.Repository
	store    Store
	config   config.CommerceConfig
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService creates a new cart service
func NewService(products product.Repository, store Store, cfg config.CommerceConfig, logger *logrus.Logger) *Service {
	return &Service{
		products: products,
		store:    store,
		config:   cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID   uint  `json:"product_id" binding:"required"`
	VariationID *uint `json:"variation_id"`
	Quantity    int   `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	VariationID *uint `json:"variation_id"`
	Quantity    int   `json:"quantity" binding:"min=0"`
}

// GetCart retrieves the cart priced against the current catalog
func (s *Service) GetCart(ctx context.Context, owner Owner) (*View, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem adds quantity units of a product, merging with an existing line
func (s *Service) AddItem(ctx context.Context, owner Owner, req *AddItemRequest) (*View, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	idx := c.find(req.ProductID, req.VariationID)
	if idx >= 0 {
		quantity += c.Items[idx].Quantity
	}

	if err := s.checkAvailability(ctx, req.ProductID, req.VariationID, quantity); err != nil {
		return nil, err
	}

	if idx >= 0 {
		c.Items[idx].Quantity = quantity
	} else {
		c.Items = append(c.Items, Item{
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Quantity:    quantity,
			AddedAt:     s.now(),
		})
	}

	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// UpdateItem sets the quantity of a line; zero removes it
func (s *Service) UpdateItem(ctx context.Context, owner Owner, productID uint, req *UpdateItemRequest) (*View, error) {
	if req.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Quantity == 0 {
		return s.RemoveItem(ctx, owner, productID, req.VariationID)
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	idx := c.find(productID, req.VariationID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if err := s.checkAvailability(ctx, productID, req.VariationID, req.Quantity); err != nil {
		return nil, err
	}

	c.Items[idx].Quantity = req.Quantity
	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// RemoveItem removes a line from the cart
func (s *Service) RemoveItem(ctx context.Context, owner Owner, productID uint, variationID *uint) (*View, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	idx := c.find(productID, variationID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)

	if err := s.save(ctx, owner, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, owner Owner) error {
	key, err := cartKey(owner)
	if err != nil {
		return err
	}
	if err := s.store.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Snapshot returns the cart lines in the form checkout takes them
func (s *Service) Snapshot(ctx context.Context, owner Owner) ([]order.LineRequest, error) {
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineRequest, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, order.LineRequest{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}
	return lines, nil
}

// MergeGuestCart moves a guest session cart into the user's cart after
// sign-in. Quantities of matching lines are added up to the product's
// maximum cart quantity.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, sessionID string) error {
	guestOwner := Owner{SessionID: sessionID}
	userOwner := Owner{UserID: &userID}

	guest, err := s.load(ctx, guestOwner)
	if err != nil {
		return err
	}
	if len(guest.Items) == 0 {
		return nil
	}

	c, err := s.load(ctx, userOwner)
	if err != nil {
		return err
	}

	for _, item := range guest.Items {
		quantity := item.Quantity
		idx := c.find(item.ProductID, item.VariationID)
		if idx >= 0 {
			quantity += c.Items[idx].Quantity
		}

		p, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil || !p.IsActive {
			continue
		}
		if quantity > p.MaxCartQuantity {
			quantity = p.MaxCartQuantity
		}

		if idx >= 0 {
			c.Items[idx].Quantity = quantity
		} else {
			item.Quantity = quantity
			c.Items = append(c.Items, item)
		}
	}

	if err := s.save(ctx, userOwner, c); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(guest.Items),
	}).Info("Guest cart merged")

	return s.ClearCart(ctx, guestOwner)
}

// Private helper methods

func (s *Service) checkAvailability(ctx context.Context, productID uint, variationID *uint, quantity int) error {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return ErrProductUnavailable.WithMessage("'%s' is not available", p.Name)
	}
	if quantity < p.MinCartQuantity || quantity > p.MaxCartQuantity {
		return ErrQuantityLimit.WithMessage("Quantity for '%s' must be between %d and %d",
			p.Name, p.MinCartQuantity, p.MaxCartQuantity)
	}

	stock := p.Stock()
	if variationID != nil {
		v, ok := p.FindVariation(*variationID)
		if !ok {
			return product.ErrVariationNotFound
		}
		if !v.IsActive {
			return ErrProductUnavailable.WithMessage("'%s - %s' is not available", p.Name, v.Name)
		}
		stock = v.Stock(p.TrackInventory)
	}

	if !stock.CanSupply(quantity) {
		if stock.Quantity <= 0 {
			return ErrInsufficientStock.WithMessage("'%s' is out of stock", p.Name)
		}
		return ErrInsufficientStock.WithMessage("Only %d left in stock for '%s'", stock.Quantity, p.Name)
	}
	return nil
}

func (s *Service) view(ctx context.Context, c *Cart) (*View, error) {
	v := &View{
		Items:     make([]ItemView, 0, len(c.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: c.UpdatedAt,
	}

	for _, item := range c.Items {
		p, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				continue
			}
			return nil, err
		}

		iv := ItemView{
			ProductID:   p.ID,
			Name:        p.Name,
			SKU:         p.SKU,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
			StockStatus: p.StockStatus,
		}
		stock := p.Stock()
		active := p.IsActive

		if item.VariationID != nil {
			variation, ok := p.FindVariation(*item.VariationID)
			if !ok {
				continue
			}
			iv.VariationID = &variation.ID
			iv.VariationName = variation.Name
			iv.SKU = variation.SKU
			iv.UnitPrice = variation.EffectivePrice(p.Price)
			iv.StockStatus = variation.StockStatus
			stock = variation.Stock(p.TrackInventory)
			active = active && variation.IsActive
		}

		iv.LineTotal = iv.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		iv.Available = active && stock.CanSupply(item.Quantity)

		v.Items = append(v.Items, iv)
		v.ItemCount++
		v.TotalQuantity += item.Quantity
		v.Subtotal = v.Subtotal.Add(iv.LineTotal)
	}

	v.Subtotal = v.Subtotal.Round(2)
	return v, nil
}

func (s *Service) load(ctx context.Context, owner Owner) (*Cart, error) {
	key, err := cartKey(owner)
	if err != nil {
		return nil, err
	}

	var c Cart
	found, err := s.store.GetJSON(ctx, key, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		now := s.now()
		return &Cart{Items: []Item{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, owner Owner, c *Cart) error {
	key, err := cartKey(owner)
	if err != nil {
		return err
	}

	c.UpdatedAt = s.now()
	if err := s.store.SetJSON(ctx, key, c, s.config.CartTTL); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func cartKey(owner Owner) (string, error) {
	if owner.UserID != nil {
		return fmt.Sprintf("cart:user:%d", *owner.UserID), nil
	}
	if owner.SessionID == "" {
		return "", ErrNoOwner
	}
	return "cart:session:" + owner.SessionID, nil
}
