package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dtroode/storefront/internal/model"
)

// OrderService covers orders and their detail lines.
type OrderService struct {
	c *Client
}

var _ model.OrderAPI = (*OrderService)(nil)

// List returns one page of the orders visible to the current user. page < 1
// asks for the first page.
func (s *OrderService) List(ctx context.Context, page int) (model.Page[model.Order], error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	var raw json.RawMessage
	if err := s.c.send(ctx, request{method: http.MethodGet, path: "pedidos/", query: query, auth: true}, &raw); err != nil {
		return model.Page[model.Order]{}, err
	}
	return decodeList[model.Order](raw)
}

// Get returns one order header.
func (s *OrderService) Get(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	if err := s.c.sendJSON(ctx, http.MethodGet, itemPath("pedidos", id), true, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create places an order.
func (s *OrderService) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	var o model.Order
	if err := s.c.sendJSON(ctx, http.MethodPost, "pedidos/", true, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update replaces an order.
func (s *OrderService) Update(ctx context.Context, id int64, in model.NewOrder) (*model.Order, error) {
	var o model.Order
	if err := s.c.sendJSON(ctx, http.MethodPut, itemPath("pedidos", id), true, in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.c.sendJSON(ctx, http.MethodDelete, itemPath("pedidos", id), true, nil, nil)
}

// Details returns the lines of an order.
func (s *OrderService) Details(ctx context.Context, id int64) ([]model.OrderDetail, error) {
	var raw json.RawMessage
	if err := s.c.sendJSON(ctx, http.MethodGet, itemPath("pedidos", id, "detalles"), true, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[model.OrderDetail](raw)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// AddProduct appends a line to an existing order.
func (s *OrderService) AddProduct(ctx context.Context, id int64, line model.OrderLine) (*model.OrderDetail, error) {
	var d model.OrderDetail
	if err := s.c.sendJSON(ctx, http.MethodPost, itemPath("pedidos", id, "agregar_producto"), true, line, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
