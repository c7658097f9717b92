package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/storefront/internal/cart"
	"github.com/dtroode/storefront/internal/mocks"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/storage/memory"
	"github.com/dtroode/storefront/internal/testutil"
)

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	c := cart.New(ctx, memory.New(), testutil.MakeNoopLogger())
	require.NoError(t, c.AddItem(ctx, model.Product{ID: 1, Name: "Pan", Price: decimal.NewFromInt(1000), Stock: 5}, 2))
	require.NoError(t, c.AddItem(ctx, model.Product{ID: 2, Name: "Leche", Price: decimal.NewFromInt(500), Stock: 5}, 1))
	return c
}

func TestCheckout_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	c := filledCart(t)
	orders := &mocks.OrderAPI{}

	want := model.NewOrder{
		ClientID: 50,
		Status:   model.OrderPending,
		Details: []model.OrderLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
	orders.On("Create", mock.Anything, want).Return(&model.Order{ID: 9, ClientID: 50, Status: model.OrderPending}, nil)

	order, err := NewCheckout(signedIn(50), c, orders, testutil.MakeNoopLogger()).PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), order.ID)
	assert.True(t, c.Snapshot().IsEmpty())
	orders.AssertExpectations(t)
}

func TestCheckout_Rejected(t *testing.T) {
	backendErr := errors.New("POST pedidos/: server responded 400")

	tests := []struct {
		name      string
		session   *staticSession
		empty     bool
		createErr error
		wantErr   error
	}{
		{name: "anonymous", session: anonymous(), wantErr: ErrLoginRequired},
		{name: "no client record", session: signedIn(0), wantErr: ErrClientNotLinked},
		{name: "empty cart", session: signedIn(50), empty: true, wantErr: ErrEmptyCart},
		{name: "backend rejects", session: signedIn(50), createErr: backendErr, wantErr: backendErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := filledCart(t)
			if tt.empty {
				c.Clear(ctx)
			}
			orders := &mocks.OrderAPI{}
			orders.On("Create", mock.Anything, mock.Anything).Return(nil, tt.createErr).Maybe()

			before := c.Snapshot()
			_, err := NewCheckout(tt.session, c, orders, testutil.MakeNoopLogger()).PlaceOrder(ctx)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before.ItemCount(), c.ItemCount(), "cart is kept when the order was not placed")
			if tt.createErr == nil {
				orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}
