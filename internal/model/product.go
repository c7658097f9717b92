package model

import (
	"io"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as returned by the backend.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion,omitempty"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Image       string          `json:"imagen,omitempty"`
}

// ProductOrdering enumerates the sort orders accepted by the product list.
type ProductOrdering string

const (
	OrderByName         ProductOrdering = "nombre"
	OrderByPriceAsc     ProductOrdering = "precio"
	OrderByPriceDesc    ProductOrdering = "-precio"
	OrderByAvailability ProductOrdering = "-stock"
)

// ProductFilter holds the query parameters of the product list.
type ProductFilter struct {
	Page     int
	Search   string
	Ordering ProductOrdering
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
}

// Values encodes the filter as query parameters, skipping unset fields.
func (f ProductFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Ordering != "" {
		v.Set("ordering", string(f.Ordering))
	}
	if f.MinPrice != nil {
		v.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("max_price", f.MaxPrice.String())
	}
	if f.InStock {
		v.Set("stock__gt", "0")
	}
	return v
}

// Upload is a file sent as part of a multipart form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProductInput is the payload for creating or updating a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       *Upload
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}
