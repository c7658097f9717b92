package service

import (
	"context"
	"fmt"

	"github.com/dtroode/storefront/internal/model"
)

// Catalog browses products.
type Catalog struct {
	products model.ProductAPI
}

// NewCatalog creates new Catalog instance.
func NewCatalog(products model.ProductAPI) *Catalog {
	return &Catalog{products: products}
}

// List returns one page of products.
func (c *Catalog) List(ctx context.Context, filter model.ProductFilter) (model.Page[model.Product], error) {
	v := &validator{}
	v.check(filter.MinPrice == nil || !filter.MinPrice.IsNegative(), "min_price", "must not be negative")
	v.check(filter.MinPrice == nil || filter.MaxPrice == nil || !filter.MinPrice.GreaterThan(*filter.MaxPrice),
		"max_price", "must not be below the minimum price")
	if err := v.err(); err != nil {
		return model.Page[model.Product]{}, err
	}

	page, err := c.products.List(ctx, filter)
	if err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

// Get returns one product.
func (c *Catalog) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := c.products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}
