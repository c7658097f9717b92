// Package cart holds the shopping cart: an ordered list of line items kept in
// the persistent key-value store after every change.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/notify"
)

// Store owns the cart of the running application session.
type Store struct {
	mu     sync.Mutex
	cart   model.Cart
	kv     model.KVStore
	logger *logger.Logger
	hub    *notify.Hub[model.Cart]
}

// New creates a cart hydrated from kv. Missing or unreadable data yields an empty cart.
func New(ctx context.Context, kv model.KVStore, logger *logger.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		hub:    notify.NewHub[model.Cart](),
	}
	s.cart = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) model.Cart {
	raw, found, err := s.kv.Get(ctx, model.KeyCart)
	if err != nil {
		s.logger.Warn("Cart store: failed to read persisted cart, starting empty",
			"error", err.Error())
		return model.Cart{}
	}
	if !found || raw == "" {
		return model.Cart{}
	}

	var items []model.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("Cart store: persisted cart is corrupt, starting empty",
			"error", err.Error())
		return model.Cart{}
	}

	return normalize(items)
}

// normalize drops non-positive quantities and merges duplicate products so
// hydrated data obeys the same invariants as mutations.
func normalize(items []model.LineItem) model.Cart {
	out := make([]model.LineItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return model.Cart{Items: out}
}

// AddItem increments the quantity of an existing line item for the product or
// appends a new one.
func (s *Store) AddItem(ctx context.Context, product model.Product, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.cart.Items[i].Quantity += quantity
	} else {
		s.cart.Items = append(s.cart.Items, model.LineItem{Product: product, Quantity: quantity})
	}

	s.commit(ctx)
	return nil
}

// UpdateQuantity sets the quantity of a line item. A quantity of zero or less
// removes the item. Unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.cart.Items[i].Quantity = quantity
	s.commit(ctx)
}

// RemoveItem deletes the line item for productID if present.
func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.cart.Items = append(s.cart.Items[:i:i], s.cart.Items[i+1:]...)
	s.commit(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = model.Cart{}
	s.commit(ctx)
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Item returns the line item for productID.
func (s *Store) Item(productID int64) (model.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return model.LineItem{}, false
	}
	return s.cart.Items[i], true
}

// Total returns the sum of unit price times quantity.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// ItemCount returns the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Subscribe returns a channel that receives the cart after every mutation until ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan model.Cart {
	return s.hub.Subscribe(ctx)
}

func (s *Store) indexOf(productID int64) int {
	for i, item := range s.cart.Items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// commit persists and publishes the current cart. Callers hold s.mu.
func (s *Store) commit(ctx context.Context) {
	items := s.cart.Items
	if items == nil {
		items = []model.LineItem{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("Cart store: failed to encode cart",
			"error", err.Error())
	} else if err := s.kv.Set(ctx, model.KeyCart, string(raw)); err != nil {
		s.logger.Error("Cart store: failed to persist cart",
			"items", len(items),
			"error", err.Error())
	}

	s.hub.Publish(s.cart.Clone())
}
