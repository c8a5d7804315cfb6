package main

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/address"
	"storefront/internal/api"
	"storefront/internal/blobstore"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/order"
	"storefront/internal/session"
	"storefront/internal/wishlist"

	"go.uber.org/zap"
)

// app holds the wired services shared by every command.
type app struct {
	cfg       *config.Config
	blobs     blobstore.Store
	client    *api.Client
	catalog   *api.Catalog
	session   *session.Manager
	cart      cart.Service
	flow      *checkout.Flow
	orders    order.Service
	addresses address.Service
	wishlist  *wishlist.Service
	publisher events.Publisher
	metrics   *metrics.Registry
}

// appBuilder lets tests swap the remote API and blob store.
type appBuilder func(ctx context.Context) (*app, error)

func buildFromConfig(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(cliEnv(cfg.AppEnv))

	blobs, err := blobstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	return newApp(ctx, cfg, blobs, publisher, api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	})
}

// cliEnv keeps development logs quiet on the terminal unless production JSON is asked for.
func cliEnv(env string) string {
	if env == "production" {
		return env
	}
	return "cli"
}

func newApp(ctx context.Context, cfg *config.Config, blobs blobstore.Store, publisher events.Publisher, opts api.Options) (*app, error) {
	log := logger.FromCtx(ctx)

	sess := session.NewManager(blobs)
	if _, err := sess.Load(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		log.Warn("failed to restore session", zap.Error(err))
	}

	opts.Tokens = sess
	client := api.NewClient(opts)

	catalog, err := api.NewCatalog(client, cfg.CatalogCacheSize)
	if err != nil {
		return nil, err
	}

	fallback, err := cfg.Fallback.Rules()
	if err != nil {
		return nil, err
	}
	policy, err := order.ParseStockPolicy(cfg.StockValidation)
	if err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()

	cartSvc := cart.NewService(cart.NewStore(), blobs, client, cart.Options{
		AutoPromo: cfg.AutoPromo,
		Metrics:   registry,
	})
	if _, err := cartSvc.Load(ctx); err != nil {
		log.Warn("cart restored empty", zap.Error(err))
	}

	flow := checkout.NewFlow(cartSvc, blobs)

	orders := order.NewService(cartSvc, client, flow, order.NewRepository(blobs), publisher, order.Options{
		StockPolicy: policy,
		Fallback:    fallback,
		Metrics:     registry,
	})

	// account sync only makes sense while signed in
	var addrRemote address.Remote
	var wishRemote wishlist.Remote
	if _, ok := sess.User(); ok {
		addrRemote = client
		wishRemote = client
	}

	wl := wishlist.NewService(blobs, wishRemote)
	if _, err := wl.Load(ctx); err != nil {
		log.Warn("wishlist restored empty", zap.Error(err))
	}

	return &app{
		cfg:       cfg,
		blobs:     blobs,
		client:    client,
		catalog:   catalog,
		session:   sess,
		cart:      cartSvc,
		flow:      flow,
		orders:    orders,
		addresses: address.NewService(address.NewRepository(blobs), addrRemote),
		wishlist:  wl,
		publisher: publisher,
		metrics:   registry,
	}, nil
}

func (a *app) Close() {
	if a == nil {
		return
	}
	a.client.Close()
	if err := a.publisher.Close(); err != nil {
		logger.L().Warn("failed to close event publisher", zap.Error(err))
	}
	if err := a.blobs.Close(); err != nil {
		logger.L().Warn("failed to close blob store", zap.Error(err))
	}
}
