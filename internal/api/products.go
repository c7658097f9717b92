package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dtroode/storefront/internal/model"
)

// ProductService covers the product catalog. Reads are public.
type ProductService struct {
	c *Client
}

var _ model.ProductAPI = (*ProductService)(nil)

// List returns one page of products matching the filter.
func (s *ProductService) List(ctx context.Context, filter model.ProductFilter) (model.Page[model.Product], error) {
	var raw json.RawMessage
	err := s.c.send(ctx, request{method: http.MethodGet, path: "productos/", query: filter.Values()}, &raw)
	if err != nil {
		return model.Page[model.Product]{}, err
	}
	return decodeList[model.Product](raw)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if err := s.c.send(ctx, request{method: http.MethodGet, path: itemPath("productos", id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product. The image, if any, is uploaded in the same request.
func (s *ProductService) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	var p model.Product
	if err := s.c.sendForm(ctx, http.MethodPost, "productos/", productFields(in), "imagen", in.Image, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a product.
func (s *ProductService) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	var p model.Product
	if err := s.c.sendForm(ctx, http.MethodPut, itemPath("productos", id), productFields(in), "imagen", in.Image, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.c.send(ctx, request{method: http.MethodDelete, path: itemPath("productos", id), auth: true}, nil)
}

// Orders lists the orders that include the product.
func (s *ProductService) Orders(ctx context.Context, id int64) ([]model.Order, error) {
	var raw json.RawMessage
	if err := s.c.send(ctx, request{method: http.MethodGet, path: itemPath("productos", id, "pedidos"), auth: true}, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[model.Order](raw)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func productFields(in model.ProductInput) []formField {
	fields := []formField{
		{name: "nombre", value: in.Name},
		{name: "precio", value: in.Price.StringFixed(2)},
		{name: "stock", value: strconv.Itoa(in.Stock)},
	}
	if in.Description != "" {
		fields = append(fields, formField{name: "descripcion", value: in.Description})
	}
	return fields
}
