package model

import "context"

// ProductAPI reads the catalog.
type ProductAPI interface {
	List(ctx context.Context, filter ProductFilter) (Page[Product], error)
	Get(ctx context.Context, id int64) (*Product, error)
}

// OrderAPI places and reads orders of the current user.
type OrderAPI interface {
	List(ctx context.Context, page int) (Page[Order], error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, in NewOrder) (*Order, error)
	Details(ctx context.Context, id int64) ([]OrderDetail, error)
}

// ClientAPI reads and updates client records.
type ClientAPI interface {
	Get(ctx context.Context, id int64) (*Client, error)
	Update(ctx context.Context, id int64, in ClientInput) (*Client, error)
}

// AccountAPI creates accounts.
type AccountAPI interface {
	Register(ctx context.Context, r Registration) (map[string]any, error)
	LinkUserClient(ctx context.Context, r LinkRequest) (map[string]any, error)
}
