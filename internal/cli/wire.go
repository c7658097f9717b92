package cli

import (
	"context"

	"github.com/dtroode/storefront/internal/api"
	"github.com/dtroode/storefront/internal/cart"
	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/model"
	"github.com/dtroode/storefront/internal/service"
	"github.com/dtroode/storefront/internal/session"
)

// Options tune the assembled App.
type Options struct {
	Inspector        model.TokenInspector
	LenientBootstrap bool
	FanOut           int
	Build            BuildInfo
}

// NewApp assembles the stores and services on top of an API client and the
// key-value store holding tokens and cart.
func NewApp(ctx context.Context, client *api.Client, kv model.KVStore, logger *logger.Logger, opts Options) *App {
	sessOpts := []session.Option{session.WithLenientBootstrap(opts.LenientBootstrap)}
	if opts.Inspector != nil {
		sessOpts = append(sessOpts, session.WithTokenInspector(opts.Inspector))
	}
	sess := session.New(kv, client.Auth, logger, sessOpts...)
	c := cart.New(ctx, kv, logger)

	return &App{
		Session:   sess,
		Cart:      c,
		Catalog:   service.NewCatalog(client.Products),
		Checkout:  service.NewCheckout(sess, c, client.Orders, logger),
		Orders:    service.NewOrders(client.Orders, client.Products, logger, opts.FanOut),
		Profile:   service.NewProfile(sess, client.Clients, logger),
		Account:   service.NewAccount(client.Auth, logger),
		Dashboard: client.Dashboard,
		Logger:    logger,
		Build:     opts.Build,
	}
}
