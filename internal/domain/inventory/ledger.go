// internal/domain/inventory/ledger.go
package inventory

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// plan is the outcome of applying one change to a stock counter
type plan struct {
	before      int
	after       int
	applied     int // after - before
	backordered int
}

// planReduction decides how a reduction of quantity units lands on stock.
// Without backorders the request must be fully covered. With backorders
// stock floors at zero and the uncovered remainder is backordered.
func planReduction(stock product.Stock, quantity int, sku string) (plan, error) {
	if quantity <= 0 {
		return plan{}, ErrInvalidQuantity
	}
	if !stock.CanSupply(quantity) {
		return plan{}, ErrInsufficientStock.WithMessage(
			"Insufficient stock for %s: available %d, requested %d", sku, stock.Quantity, quantity)
	}

	after := stock.Quantity - quantity
	if after < 0 {
		after = 0
	}
	applied := after - stock.Quantity

	return plan{
		before:      stock.Quantity,
		after:       after,
		applied:     applied,
		backordered: quantity + applied,
	}, nil
}

// planAddition adds quantity units to stock
func planAddition(stock product.Stock, quantity int) (plan, error) {
	if quantity <= 0 {
		return plan{}, ErrInvalidQuantity
	}
	return plan{
		before:  stock.Quantity,
		after:   stock.Quantity + quantity,
		applied: quantity,
	}, nil
}

// planReturn restores at most the outstanding units a reference actually
// took out of stock. Backordered units never left stock, so they are not
// put back. A zero plan means there is nothing to restore.
func planReturn(stock product.Stock, quantity, outstanding int) (plan, error) {
	if quantity <= 0 {
		return plan{}, ErrInvalidQuantity
	}
	restore := min(quantity, outstanding)
	if restore <= 0 {
		return plan{before: stock.Quantity, after: stock.Quantity}, nil
	}
	return planAddition(stock, restore)
}

// counter is the stock-carrying row a ledger call mutates
type counter struct {
	product   *product.Product
	variation *product.Variation
}

func resolveCounter(p *product.Product, variationID *uint) (*counter, error) {
	if variationID == nil {
		return &counter{product: p}, nil
	}
	v, ok := p.FindVariation(*variationID)
	if !ok {
		return nil, product.ErrVariationNotFound
	}
	return &counter{product: p, variation: v}, nil
}

func (c *counter) tracked() bool {
	return c.product.TrackInventory
}

func (c *counter) stock() product.Stock {
	if c.variation != nil {
		return c.variation.Stock(c.product.TrackInventory)
	}
	return c.product.Stock()
}

func (c *counter) sku() string {
	if c.variation != nil {
		return c.variation.SKU
	}
	return c.product.SKU
}

func (c *counter) status() product.StockStatus {
	if c.variation != nil {
		return c.variation.StockStatus
	}
	return c.product.StockStatus
}

func (c *counter) target() Target {
	t := Target{ProductID: c.product.ID}
	if c.variation != nil {
		id := c.variation.ID
		t.VariationID = &id
	}
	return t
}

// setQuantity writes the new quantity and re-derives the status
func (c *counter) setQuantity(quantity int) {
	if c.variation != nil {
		c.variation.StockQuantity = quantity
		c.variation.RefreshStockStatus(c.product.TrackInventory)
		return
	}
	c.product.StockQuantity = quantity
	c.product.RefreshStockStatus()
}

// addSold moves the cumulative sold counter, never below zero
func (c *counter) addSold(delta int) {
	sold := &c.product.TotalSold
	if c.variation != nil {
		sold = &c.variation.TotalSold
	}
	*sold += delta
	if *sold < 0 {
		*sold = 0
	}
}

func (c *counter) save(ctx context.Context, repo product.Repository) error {
	if c.variation != nil {
		return repo.SaveVariation(ctx, c.variation)
	}
	return repo.SaveProduct(ctx, c.product)
}
