package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order on the backend.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pendiente"
	OrderInProgress OrderStatus = "en_proceso"
	OrderCompleted  OrderStatus = "completado"
	OrderCancelled  OrderStatus = "cancelado"
)

// Label returns the display name of the status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pending"
	case OrderInProgress:
		return "In progress"
	case OrderCompleted:
		return "Completed"
	case OrderCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Order is an order header. Products is filled client-side from the details.
type Order struct {
	ID       int64           `json:"id"`
	ClientID int64           `json:"cliente"`
	Date     time.Time       `json:"fecha"`
	Status   OrderStatus     `json:"estado"`
	Total    decimal.Decimal `json:"total"`
	Products []OrderDetail   `json:"-"`
}

// orderDateLayouts are tried in order. Values without a zone are read as UTC.
var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// parseOrderDate parses the order date formats the backend produces.
func parseOrderDate(value string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order date %q", value)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		Date *string `json:"fecha"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.Date = time.Time{}
	if aux.Date == nil || *aux.Date == "" {
		return nil
	}
	date, err := parseOrderDate(*aux.Date)
	if err != nil {
		return fmt.Errorf("failed to decode order %d: %w", o.ID, err)
	}
	o.Date = date
	return nil
}

// OrderDetail is one line of an order.
type OrderDetail struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"pedido,omitempty"`
	Product   ProductRef      `json:"producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ProductRef is a product reference that the backend sends either as a bare id
// or as an embedded product object.
type ProductRef struct {
	ID      int64
	Product *Product
}

// Resolved reports whether the full product is known.
func (r ProductRef) Resolved() bool {
	return r.Product != nil && r.Product.Image != ""
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ProductRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var p Product
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to decode product: %w", err)
		}
		*r = ProductRef{ID: p.ID, Product: &p}
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("failed to decode product id: %w", err)
	}
	*r = ProductRef{ID: id}
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.Product != nil {
		return json.Marshal(r.Product)
	}
	return json.Marshal(r.ID)
}

// OrderLine is a product and quantity sent when creating an order.
type OrderLine struct {
	ProductID int64 `json:"producto"`
	Quantity  int   `json:"cantidad"`
}

// NewOrder is the payload for creating an order.
type NewOrder struct {
	ClientID int64       `json:"cliente"`
	Status   OrderStatus `json:"estado"`
	Details  []OrderLine `json:"detalles"`
}
