package model

import "github.com/shopspring/decimal"

// LineItem is one product in the cart. The product fields are a snapshot taken
// when the item was first added; they serialize flat next to the quantity.
type LineItem struct {
	Product
	Quantity int `json:"cantidad"`
}

// ProductID returns the identity of the line item.
func (i LineItem) ProductID() int64 {
	return i.ID
}

// UnitPrice returns the price per unit captured in the snapshot.
func (i LineItem) UnitPrice() decimal.Decimal {
	return i.Price
}

// Subtotal is unit price times quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of line items. Totals are always derived from the items.
type Cart struct {
	Items []LineItem
}

// Total returns the sum of unit price times quantity over all items.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities, not the number of line items.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no line items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
