package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/blobstore"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/pricing"

	"go.uber.org/zap"
)

// PromoResolver is the server side promo engine.
type PromoResolver interface {
	ApplyPromo(ctx context.Context, code string, items []PromoItem) (*PromoResult, error)
	AutoPromo(ctx context.Context, items []PromoItem) (*PromoResult, error)
}

// Service defines the cart operations exposed to the storefront.
type Service interface {
	Load(ctx context.Context) (Snapshot, error)
	Snapshot() Snapshot

	AddItem(ctx context.Context, p Product, quantity int) (Snapshot, error)
	UpdateQuantity(ctx context.Context, productID int64, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, productID int64) (Snapshot, error)
	ClearCart(ctx context.Context) (Snapshot, error)

	ApplyCoupon(ctx context.Context, code string) (Snapshot, error)
	ApplyPromoCode(ctx context.Context, code string) (Snapshot, error)
	RemovePromoCode(ctx context.Context) Snapshot
	AutoApplyBestPromo(ctx context.Context) (Snapshot, error)

	// Persist writes the current cart to the blob store and reports the outcome.
	Persist(ctx context.Context) error
}

type Options struct {
	// AutoPromo asks the promo service for the best promo after every item change.
	AutoPromo bool
	Metrics   *metrics.Registry
}

type service struct {
	store    *Store
	blobs    blobstore.Store
	resolver PromoResolver
	opts     Options
}

// pricingSelection records which coupon or promo code the shopper chose.
type pricingSelection struct {
	CouponCode string `json:"couponCode,omitempty"`
	PromoCode  string `json:"promoCode,omitempty"`
}

// NewService creates a cart service. resolver may be nil when running offline.
func NewService(store *Store, blobs blobstore.Store, resolver PromoResolver, opts Options) Service {
	return &service{store: store, blobs: blobs, resolver: resolver, opts: opts}
}

func (s *service) logger(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("service", "Cart"),
		zap.String("method", method),
	)
}

func (s *service) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Load hydrates the cart from the blob store. A missing or malformed blob
// yields an empty cart; other storage failures are returned but the cart stays usable.
func (s *service) Load(ctx context.Context) (Snapshot, error) {
	log := s.logger(ctx, "Load")

	var items []LineItem
	err := blobstore.GetJSON(ctx, s.blobs, blobstore.KeyCart, &items)

	var decodeErr *blobstore.DecodeError
	switch {
	case err == nil:
	case errors.Is(err, blobstore.ErrNotFound):
		items = nil
	case errors.As(err, &decodeErr):
		log.Warn("discarding malformed cart blob", zap.Error(err))
		items = nil
	default:
		s.opts.Metrics.Counter(metrics.StorageErrors).Inc()
		log.Error("failed to read cart", zap.Error(err))
		return s.store.Hydrate(nil), fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	snap := s.store.Hydrate(items)
	log.Info("cart loaded", zap.Int("lines", len(snap.Items)))

	var sel pricingSelection
	if err := blobstore.GetJSON(ctx, s.blobs, blobstore.KeyCartPricing, &sel); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		log.Warn("ignoring unreadable pricing selection", zap.Error(err))
	}

	switch {
	case sel.CouponCode != "":
		if snap, err = s.store.ApplyLegacyCoupon(sel.CouponCode); err != nil {
			log.Warn("stored coupon no longer valid", zap.String("coupon", sel.CouponCode))
		}
	case sel.PromoCode != "" && !snap.IsEmpty():
		if snap, err = s.ApplyPromoCode(ctx, sel.PromoCode); err != nil {
			log.Warn("stored promo code not re-applied", zap.String("promo_code", sel.PromoCode), zap.Error(err))
		}
	}

	if s.opts.AutoPromo && snap.Mode.Kind() == pricing.KindNone {
		if next, err := s.autoApply(ctx, log); err == nil {
			snap = next
		} else {
			log.Warn("auto promo not applied", zap.Error(err))
		}
	}

	return snap, nil
}

func (s *service) AddItem(ctx context.Context, p Product, quantity int) (Snapshot, error) {
	log := s.logger(ctx, "AddItem").With(
		zap.Int64("product_id", p.ID),
		zap.Int("quantity", quantity),
	)

	if _, err := s.store.Add(p, quantity); err != nil {
		log.Warn("rejected cart quantity")
		return s.store.Snapshot(), err
	}

	return s.afterItemsChanged(ctx, log), nil
}

func (s *service) UpdateQuantity(ctx context.Context, productID int64, quantity int) (Snapshot, error) {
	log := s.logger(ctx, "UpdateQuantity").With(
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)

	before := s.store.Snapshot().Seq
	if snap := s.store.UpdateQuantity(productID, quantity); snap.Seq == before {
		return snap, nil
	}
	return s.afterItemsChanged(ctx, log), nil
}

func (s *service) RemoveItem(ctx context.Context, productID int64) (Snapshot, error) {
	log := s.logger(ctx, "RemoveItem").With(zap.Int64("product_id", productID))

	before := s.store.Snapshot().Seq
	if snap := s.store.Remove(productID); snap.Seq == before {
		return snap, nil
	}
	return s.afterItemsChanged(ctx, log), nil
}

func (s *service) ClearCart(ctx context.Context) (Snapshot, error) {
	log := s.logger(ctx, "ClearCart")

	snap := s.store.Clear()
	s.opts.Metrics.Counter(metrics.CartMutations).Inc()
	if err := s.Persist(ctx); err != nil {
		log.Warn("cart cleared in memory only", zap.Error(err))
	}
	log.Info("cart cleared")
	return snap, nil
}

func (s *service) ApplyCoupon(ctx context.Context, code string) (Snapshot, error) {
	log := s.logger(ctx, "ApplyCoupon").With(zap.String("coupon", code))

	snap, err := s.store.ApplyLegacyCoupon(code)
	if err != nil {
		log.Info("coupon rejected")
		return snap, err
	}

	s.opts.Metrics.Counter(metrics.CartMutations).Inc()
	if err := s.Persist(ctx); err != nil {
		log.Warn("coupon applied in memory only", zap.Error(err))
	}
	return snap, nil
}

// ApplyPromoCode asks the promo service to price the cart with code. On any
// failure the cart is left unchanged and the resolver's error is returned.
func (s *service) ApplyPromoCode(ctx context.Context, code string) (Snapshot, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	log := s.logger(ctx, "ApplyPromoCode").With(zap.String("promo_code", code))

	if code == "" {
		return s.store.Snapshot(), ErrEmptyPromoCode
	}

	snap := s.store.Snapshot()
	if snap.IsEmpty() {
		return snap, ErrCartEmpty
	}
	if s.resolver == nil {
		return snap, fmt.Errorf("apply promo %s: no promo service configured", code)
	}

	s.opts.Metrics.Counter(metrics.PromoRequests).Inc()
	res, err := s.resolver.ApplyPromo(ctx, code, snap.PromoItems())
	if err != nil {
		log.Info("promo code not applied", zap.Error(err))
		return snap, err
	}

	next, err := s.install(snap.Seq, res.toMode(code), true, log)
	if err != nil {
		return next, err
	}

	if err := s.Persist(ctx); err != nil {
		log.Warn("promo applied in memory only", zap.Error(err))
	}
	log.Info("promo code applied", zap.String("total", next.Breakdown.Total.StringFixed(2)))
	return next, nil
}

func (s *service) RemovePromoCode(ctx context.Context) Snapshot {
	snap := s.store.ClearPromo()
	if err := s.Persist(ctx); err != nil {
		s.logger(ctx, "RemovePromoCode").Warn("promo removed in memory only", zap.Error(err))
	}
	return snap
}

// AutoApplyBestPromo lets the promo service choose the best promo for the
// current items. An empty cart clears any promo instead. A code the shopper
// typed is re-validated rather than replaced, and a legacy coupon is left alone.
func (s *service) AutoApplyBestPromo(ctx context.Context) (Snapshot, error) {
	return s.autoApply(ctx, s.logger(ctx, "AutoApplyBestPromo"))
}

func (s *service) autoApply(ctx context.Context, log *zap.Logger) (Snapshot, error) {
	snap := s.store.Snapshot()

	if snap.IsEmpty() {
		return s.store.ClearPromo(), nil
	}
	if snap.Mode.Kind() == pricing.KindLegacy || s.resolver == nil {
		return snap, nil
	}

	s.opts.Metrics.Counter(metrics.PromoRequests).Inc()

	if code := snap.ManualPromo; code != "" {
		res, err := s.resolver.ApplyPromo(ctx, code, snap.PromoItems())
		if errors.Is(err, ErrPromoRejected) {
			log.Info("promo code no longer applies", zap.String("promo_code", code), zap.Error(err))
			return s.store.ClearPromo(), err
		}
		if err != nil {
			return snap, err
		}
		return s.install(snap.Seq, res.toMode(code), true, log)
	}

	res, err := s.resolver.AutoPromo(ctx, snap.PromoItems())
	if err != nil {
		return snap, err
	}
	return s.install(snap.Seq, res.toMode(""), false, log)
}

func (s *service) install(seq uint64, promo pricing.ServerPromo, manual bool, log *zap.Logger) (Snapshot, error) {
	next, err := s.store.ApplyPromo(seq, promo, manual)
	if errors.Is(err, ErrStalePromo) {
		s.opts.Metrics.Counter(metrics.PromoStaleDiscarded).Inc()
		log.Info("discarding stale promo response",
			zap.Uint64("request_seq", seq),
			zap.Uint64("cart_seq", next.Seq),
		)
	}
	return next, err
}

// afterItemsChanged persists the cart and refreshes the auto promo. Failures
// of either are logged; the in-memory cart stays authoritative.
func (s *service) afterItemsChanged(ctx context.Context, log *zap.Logger) Snapshot {
	s.opts.Metrics.Counter(metrics.CartMutations).Inc()

	if err := s.Persist(ctx); err != nil {
		log.Warn("cart changed in memory only", zap.Error(err))
	}

	if s.opts.AutoPromo {
		if _, err := s.autoApply(ctx, log); err != nil {
			log.Warn("auto promo not applied", zap.Error(err))
		}
	}
	return s.store.Snapshot()
}

func (s *service) Persist(ctx context.Context) error {
	snap := s.store.Snapshot()

	sel := pricingSelection{PromoCode: snap.ManualPromo}
	if legacy, ok := snap.Mode.(pricing.LegacyPercent); ok {
		sel.CouponCode = legacy.Code
	}

	err := blobstore.SetJSON(ctx, s.blobs, blobstore.KeyCart, snap.Items)
	if err == nil {
		err = blobstore.SetJSON(ctx, s.blobs, blobstore.KeyCartPricing, sel)
	}
	if err != nil {
		s.opts.Metrics.Counter(metrics.StorageErrors).Inc()
		return fmt.Errorf("%w: %v", ErrFailedPersistCart, err)
	}
	return nil
}
