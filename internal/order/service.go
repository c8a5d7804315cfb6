package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/pricing"

	"go.uber.org/zap"
)

// Gateway is the remote side of order submission.
type Gateway interface {
	ValidateStock(ctx context.Context, items []cart.PromoItem) (*api.StockReport, error)
	CreateOrder(ctx context.Context, req api.OrderRequest) (*api.OrderResponse, error)
	ListOrders(ctx context.Context) ([]api.OrderView, error)
	GetOrder(ctx context.Context, orderID string) (*api.OrderView, error)
	CancelOrder(ctx context.Context, orderID string) (string, error)
	StoreConfig(ctx context.Context) (pricing.Rules, error)
}

// AddressStore holds the address captured during checkout.
type AddressStore interface {
	ClearAddress(ctx context.Context) error
}

type Service interface {
	PlaceOrder(ctx context.Context, addr checkout.Address) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	CancelOrder(ctx context.Context, orderID string) (*Order, error)
}

type Options struct {
	StockPolicy StockPolicy
	// Fallback is used when the store config cannot be fetched.
	Fallback pricing.Rules
	Metrics  *metrics.Registry

	// PublishTimeout bounds each event publish. Defaults to DefaultPublishTimeout.
	PublishTimeout time.Duration
}

const DefaultPublishTimeout = 3 * time.Second

type service struct {
	cart      cart.Service
	gateway   Gateway
	addresses AddressStore
	history   Repository
	publisher events.Publisher
	opts      Options
}

func NewService(
	c cart.Service,
	gateway Gateway,
	addresses AddressStore,
	history Repository,
	publisher events.Publisher,
	opts Options,
) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.StockPolicy == "" {
		opts.StockPolicy = StockAlways
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	return &service{
		cart:      c,
		gateway:   gateway,
		addresses: addresses,
		history:   history,
		publisher: publisher,
		opts:      opts,
	}
}

func (s *service) logger(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", method),
	)
}

func (s *service) PlaceOrder(ctx context.Context, addr checkout.Address) (*Order, error) {
	log := s.logger(ctx, "PlaceOrder")
	timer := metrics.StartTimer()

	// 1. Address
	if err := addr.Validate(); err != nil {
		log.Warn("invalid shipping address", zap.Error(err))
		return nil, err
	}

	// 2. Cart
	snap := s.cart.Snapshot()
	if snap.IsEmpty() {
		log.Warn("cart is empty")
		return nil, ErrCartEmpty
	}

	if snap.PromoStale {
		log.Info("promo computed for an older cart, re-resolving")
		fresh, err := s.cart.AutoApplyBestPromo(ctx)
		if err != nil {
			log.Warn("failed to refresh promo", zap.Error(err))
			return nil, err
		}
		if fresh.PromoStale {
			return nil, cart.ErrStalePromo
		}
		snap = fresh
	}

	// 3. Pricing
	rules, err := s.gateway.StoreConfig(ctx)
	if err != nil {
		log.Warn("store config unavailable, using fallback rules", zap.Error(err))
		rules = s.opts.Fallback
	}
	breakdown := pricing.Checkout(snap.Lines(), snap.Mode, rules)
	draft := newOrder(snap, breakdown, addr)

	// 4. Stock
	if s.checkStock(snap) {
		report, err := s.gateway.ValidateStock(ctx, snap.PromoItems())
		if err != nil {
			log.Error("stock validation failed", zap.Error(err))
			s.opts.Metrics.Counter(metrics.OrdersFailed).Inc()
			return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
		if !report.OK {
			log.Warn("insufficient stock", zap.Strings("errors", report.Errors))
			return nil, &StockError{Messages: report.Errors}
		}
	}

	// 5. Submit
	res, err := s.gateway.CreateOrder(ctx, toOrderRequest(draft))
	if err != nil {
		log.Error("order submission failed", zap.Error(err))
		s.opts.Metrics.Counter(metrics.OrdersFailed).Inc()
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	placed := mergeResponse(draft, res)

	// 6. Cleanup; the order exists server side so failures are only logged
	if _, err := s.cart.ClearCart(ctx); err != nil {
		log.Error("failed to clear cart", zap.Error(err))
	}
	if s.addresses != nil {
		if err := s.addresses.ClearAddress(ctx); err != nil {
			log.Error("failed to clear checkout address", zap.Error(err))
		}
	}
	if err := s.history.Append(ctx, placed); err != nil {
		log.Error("failed to record order history", zap.Error(err))
	}
	s.publish(ctx, log, events.OrderPlaced, placed)

	s.opts.Metrics.Counter(metrics.OrdersPlaced).Inc()
	log.Info("order placed",
		zap.String("order_id", placed.OrderID),
		zap.String("confirmation_number", placed.ConfirmationNumber),
		zap.String("total", placed.Total.StringFixed(2)),
		zap.Duration("took", timer.Duration()),
	)
	return &placed, nil
}

func (s *service) checkStock(snap cart.Snapshot) bool {
	switch s.opts.StockPolicy {
	case StockNever:
		return false
	case StockLegacyOnly:
		return snap.Mode.Kind() != pricing.KindPromo
	default:
		return true
	}
}

// publish never holds up the caller for longer than PublishTimeout; the order
// already exists when it runs.
func (s *service) publish(ctx context.Context, log *zap.Logger, eventType string, o Order) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, events.New(eventType, o.OrderID, o)); err != nil {
		log.Warn("failed to publish event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	log := s.logger(ctx, "ListOrders")

	views, err := s.gateway.ListOrders(ctx)
	if err != nil {
		log.Warn("remote order list unavailable, using local history", zap.Error(err))
		return s.history.List(ctx)
	}

	orders := make([]Order, 0, len(views))
	for _, v := range views {
		orders = append(orders, fromView(v))
	}
	return orders, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	log := s.logger(ctx, "GetOrder")

	v, err := s.gateway.GetOrder(ctx, orderID)
	switch {
	case err == nil:
		o := fromView(*v)
		return &o, nil
	case errors.Is(err, api.ErrNotFound):
		return nil, ErrOrderNotFound
	}

	log.Warn("remote order unavailable, using local history",
		zap.String("order_id", orderID),
		zap.Error(err),
	)
	return s.history.Find(ctx, orderID)
}

func (s *service) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	log := s.logger(ctx, "CancelOrder")

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		log.Warn("order not cancellable",
			zap.String("order_id", orderID),
			zap.String("status", string(o.Status)),
		)
		return nil, ErrNotCancellable
	}

	msg, err := s.gateway.CancelOrder(ctx, orderID)
	if err != nil {
		log.Error("cancel request failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}

	o.Status = StatusCancelled
	o.Message = msg
	if err := s.history.UpdateStatus(ctx, orderID, StatusCancelled); err != nil && !errors.Is(err, ErrOrderNotFound) {
		log.Error("failed to update order history", zap.Error(err))
	}
	s.publish(ctx, log, events.OrderCancelled, *o)

	log.Info("order cancelled", zap.String("order_id", orderID))
	return o, nil
}
