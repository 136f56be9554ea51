// internal/domain/order/totals.go
package order

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Line is one cart line with the product data snapshotted at checkout
type Line struct {
	ProductID     uint            `json:"product_id"`
	VariationID   *uint           `json:"variation_id,omitempty"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	VariationName string          `json:"variation_name,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
}

// PricedLine is a line with its total and GST worked out
type PricedLine struct {
	Line
	LineTotal decimal.Decimal `json:"line_total"`
	GSTAmount decimal.Decimal `json:"gst_amount"`
}

// Pricing holds the shipping policy and the seller's GST registration state
type Pricing struct {
	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	SellerState           string
}

// Adjustment is what a validated coupon contributes to the totals
type Adjustment struct {
	Discount     decimal.Decimal
	FreeShipping bool
}

// GSTComponent is one row of the GST breakdown, grouped by rate
type GSTComponent struct {
	Rate         decimal.Decimal `json:"rate"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	IGST         decimal.Decimal `json:"igst"`
	Total        decimal.Decimal `json:"total"`
}

// Totals is the full price computation of an order
type Totals struct {
	Lines          []PricedLine    `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	FreeShipping   bool            `json:"free_shipping"`
	InterState     bool            `json:"inter_state"`
	GSTBreakdown   []GSTComponent  `json:"gst_breakdown"`
}

// Subtotal sums unit price x quantity over the lines
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(lineTotal(l))
	}
	return subtotal.Round(2)
}

// Calculate prices lines for delivery to shippingState. GST is computed
// and rounded per line, then summed, because rates differ per product.
// The discount is capped at the subtotal and the total floors at zero.
func Calculate(lines []Line, pricing Pricing, adj Adjustment, shippingState string) Totals {
	t := Totals{
		Lines:      make([]PricedLine, 0, len(lines)),
		Subtotal:   decimal.Zero,
		TaxAmount:  decimal.Zero,
		InterState: !sameState(pricing.SellerState, shippingState),
	}

	for _, l := range lines {
		total := lineTotal(l)
		gst := total.Mul(l.GSTRate).Div(hundred).Round(2)
		t.Lines = append(t.Lines, PricedLine{Line: l, LineTotal: total, GSTAmount: gst})
		t.Subtotal = t.Subtotal.Add(total)
		t.TaxAmount = t.TaxAmount.Add(gst)
	}
	t.Subtotal = t.Subtotal.Round(2)

	t.ShippingAmount = pricing.ShippingFlatFee.Round(2)
	if len(lines) == 0 || t.Subtotal.GreaterThanOrEqual(pricing.FreeShippingThreshold) || adj.FreeShipping {
		t.ShippingAmount = decimal.Zero
		t.FreeShipping = len(lines) > 0
	}

	t.DiscountAmount = adj.Discount.Round(2)
	if t.DiscountAmount.GreaterThan(t.Subtotal) {
		t.DiscountAmount = t.Subtotal
	}
	if t.DiscountAmount.IsNegative() {
		t.DiscountAmount = decimal.Zero
	}

	t.TotalAmount = grandTotal(t.Subtotal, t.ShippingAmount, t.TaxAmount, t.DiscountAmount)
	t.GSTBreakdown = breakdown(t.Lines, t.InterState)
	return t
}

// grandTotal is subtotal + shipping + tax - discount, floored at zero
func grandTotal(subtotal, shipping, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

func lineTotal(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// breakdown groups GST by rate. Intra-state supplies split it evenly into
// CGST and SGST (any odd paisa goes to SGST); inter-state supplies are IGST.
func breakdown(lines []PricedLine, interState bool) []GSTComponent {
	byRate := make(map[string]*GSTComponent)
	var order []string

	for _, l := range lines {
		key := l.GSTRate.StringFixed(2)
		c, ok := byRate[key]
		if !ok {
			c = &GSTComponent{Rate: l.GSTRate, TaxableValue: decimal.Zero, Total: decimal.Zero}
			byRate[key] = c
			order = append(order, key)
		}
		c.TaxableValue = c.TaxableValue.Add(l.LineTotal)
		c.Total = c.Total.Add(l.GSTAmount)
	}

	sort.Slice(order, func(i, j int) bool {
		return byRate[order[i]].Rate.LessThan(byRate[order[j]].Rate)
	})

	components := make([]GSTComponent, 0, len(order))
	for _, key := range order {
		c := byRate[key]
		if interState {
			c.IGST = c.Total
			c.CGST = decimal.Zero
			c.SGST = decimal.Zero
		} else {
			c.CGST = c.Total.Div(two).RoundDown(2)
			c.SGST = c.Total.Sub(c.CGST)
			c.IGST = decimal.Zero
		}
		components = append(components, *c)
	}
	return components
}

func sameState(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
