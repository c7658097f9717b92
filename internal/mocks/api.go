package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/storefront/internal/model"
)

// ProductAPI is a mock of model.ProductAPI.
type ProductAPI struct {
	mock.Mock
}

var _ model.ProductAPI = (*ProductAPI)(nil)

func (m *ProductAPI) List(ctx context.Context, filter model.ProductFilter) (model.Page[model.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *ProductAPI) Get(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

// OrderAPI is a mock of model.OrderAPI.
type OrderAPI struct {
	mock.Mock
}

var _ model.OrderAPI = (*OrderAPI)(nil)

func (m *OrderAPI) List(ctx context.Context, page int) (model.Page[model.Order], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Order]), args.Error(1)
}

func (m *OrderAPI) Get(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *OrderAPI) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *OrderAPI) Details(ctx context.Context, id int64) ([]model.OrderDetail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).([]model.OrderDetail)
	return d, args.Error(1)
}

// ClientAPI is a mock of model.ClientAPI.
type ClientAPI struct {
	mock.Mock
}

var _ model.ClientAPI = (*ClientAPI)(nil)

func (m *ClientAPI) Get(ctx context.Context, id int64) (*model.Client, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Client)
	return c, args.Error(1)
}

func (m *ClientAPI) Update(ctx context.Context, id int64, in model.ClientInput) (*model.Client, error) {
	args := m.Called(ctx, id, in)
	c, _ := args.Get(0).(*model.Client)
	return c, args.Error(1)
}

// AccountAPI is a mock of model.AccountAPI.
type AccountAPI struct {
	mock.Mock
}

var _ model.AccountAPI = (*AccountAPI)(nil)

func (m *AccountAPI) Register(ctx context.Context, r model.Registration) (map[string]any, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

func (m *AccountAPI) LinkUserClient(ctx context.Context, r model.LinkRequest) (map[string]any, error) {
	args := m.Called(ctx, r)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}
