package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
)

// DefaultFanOut bounds the concurrent requests made while enriching orders.
const DefaultFanOut = 4

// Orders reads the order history of the signed-in user.
type Orders struct {
	orders   model.OrderAPI
	products model.ProductAPI
	logger   *logger.Logger
	fanOut   int
}

// NewOrders creates new Orders instance. fanOut < 1 means DefaultFanOut.
func NewOrders(orders model.OrderAPI, products model.ProductAPI, logger *logger.Logger, fanOut int) *Orders {
	if fanOut < 1 {
		fanOut = DefaultFanOut
	}
	return &Orders{
		orders:   orders,
		products: products,
		logger:   logger,
		fanOut:   fanOut,
	}
}

// History returns every order with its lines and their products. Only the
// order listing itself can fail; a failed detail or product lookup degrades
// that order instead.
func (o *Orders) History(ctx context.Context) ([]model.Order, error) {
	var all []model.Order
	for page := 1; ; page++ {
		res, err := o.orders.List(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to list orders: %w", err)
		}
		all = append(all, res.Results...)
		if res.Next == "" || len(res.Results) == 0 {
			break
		}
	}

	cache := newProductCache(o.products)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.fanOut)
	for i := range all {
		g.Go(func() error {
			all[i].Products = o.details(gctx, cache, all[i].ID)
			return nil
		})
	}
	_ = g.Wait()

	return all, nil
}

// Get returns one order with its lines and their products.
func (o *Orders) Get(ctx context.Context, id int64) (*model.Order, error) {
	order, err := o.orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	order.Products = o.details(ctx, newProductCache(o.products), id)
	return order, nil
}

func (o *Orders) details(ctx context.Context, cache *productCache, orderID int64) []model.OrderDetail {
	details, err := o.orders.Details(ctx, orderID)
	if err != nil {
		o.logger.Warn("Orders service: failed to load order details",
			"order_id", orderID,
			"error", err.Error())
		return []model.OrderDetail{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.fanOut)
	for i := range details {
		if details[i].Product.Resolved() {
			continue
		}
		g.Go(func() error {
			id := details[i].Product.ID
			p, err := cache.get(gctx, id)
			if err != nil {
				o.logger.Warn("Orders service: failed to load product",
					"order_id", orderID,
					"product_id", id,
					"error", err.Error())
				return nil
			}
			details[i].Product = model.ProductRef{ID: p.ID, Product: p}
			return nil
		})
	}
	_ = g.Wait()

	return details
}

// productCache deduplicates product lookups within one call.
type productCache struct {
	api model.ProductAPI

	mu      sync.Mutex
	entries map[int64]*productEntry
}

type productEntry struct {
	once    sync.Once
	product *model.Product
	err     error
}

func newProductCache(api model.ProductAPI) *productCache {
	return &productCache{api: api, entries: make(map[int64]*productEntry)}
}

func (c *productCache) get(ctx context.Context, id int64) (*model.Product, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &productEntry{}
		c.entries[id] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.product, e.err = c.api.Get(ctx, id)
	})
	return e.product, e.err
}
