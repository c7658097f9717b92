package service

import (
	"context"
	"fmt"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

// SessionView exposes the current authentication state.
type SessionView interface {
	Snapshot() model.Session
}

// CartView exposes the cart contents to flows that consume it.
type CartView interface {
	Snapshot() model.Cart
	Clear(ctx context.Context)
}

// Checkout turns the cart into an order.
type Checkout struct {
	session SessionView
	cart    CartView
	orders  model.OrderAPI
	logger  *logger.Logger
}

// NewCheckout creates new Checkout instance.
func NewCheckout(session SessionView, cart CartView, orders model.OrderAPI, logger *logger.Logger) *Checkout {
	return &Checkout{
		session: session,
		cart:    cart,
		orders:  orders,
		logger:  logger,
	}
}

// PlaceOrder submits the cart as a pending order for the linked client. The
// cart is cleared only after the backend accepted the order.
func (c *Checkout) PlaceOrder(ctx context.Context) (*model.Order, error) {
	sess := c.session.Snapshot()
	if !sess.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	clientID, ok := sess.ClientID()
	if !ok {
		return nil, ErrClientNotLinked
	}

	cart := c.cart.Snapshot()
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	in := model.NewOrder{
		ClientID: clientID,
		Status:   model.OrderPending,
		Details:  make([]model.OrderLine, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		in.Details = append(in.Details, model.OrderLine{ProductID: item.ProductID(), Quantity: item.Quantity})
	}

	order, err := c.orders.Create(ctx, in)
	if err != nil {
		c.logger.Error("Checkout service: failed to place order",
			"client_id", clientID,
			"items", len(in.Details),
			"error", err.Error())
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	c.cart.Clear(ctx)
	c.logger.Info("Checkout service: order placed",
		"order_id", order.ID,
		"client_id", clientID,
		"total", cart.Total().String())

	return order, nil
}
