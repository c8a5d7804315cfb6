// Package wishlist keeps the products a shopper saved for later.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"storefront/internal/blobstore"
	"storefront/internal/cart"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

// Remote mirrors wishlist changes to the shopper's account.
type Remote interface {
	UpdateWishlist(ctx context.Context, productID, action string) ([]string, error)
}

// CartAdder is the part of the cart MoveToCart needs.
type CartAdder interface {
	AddItem(ctx context.Context, p cart.Product, quantity int) (cart.Snapshot, error)
}

type Service struct {
	mu     sync.Mutex
	items  []Item
	blobs  blobstore.Store
	remote Remote
	now    func() time.Time
}

// NewService creates an empty wishlist. remote may be nil.
func NewService(blobs blobstore.Store, remote Remote) *Service {
	return &Service{blobs: blobs, remote: remote, now: time.Now}
}

func (s *Service) logger(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("service", "Wishlist"),
		zap.String("method", method),
	)
}

// Load replaces the in-memory list with the stored one. A missing blob
// yields an empty list.
func (s *Service) Load(ctx context.Context) ([]Item, error) {
	log := s.logger(ctx, "Load")

	var items []Item
	err := blobstore.GetJSON(ctx, s.blobs, blobstore.KeyWishlist, &items)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		log.Error("failed to load wishlist", zap.Error(err))
		return s.Items(), fmt.Errorf("%w: %w", ErrFailedLoadWishlist, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	log.Debug("wishlist loaded", zap.Int("count", len(items)))
	return s.Items(), nil
}

func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

func (s *Service) indexLocked(productID int64) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add saves p. A product already on the list is left untouched.
func (s *Service) Add(ctx context.Context, p cart.Product) []Item {
	log := s.logger(ctx, "Add").With(zap.Int64("product_id", p.ID))

	s.mu.Lock()
	if s.indexLocked(p.ID) >= 0 {
		s.mu.Unlock()
		log.Debug("already in wishlist")
		return s.Items()
	}
	s.items = append(s.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		AddedAt:   s.now().UTC(),
		Stock:     p.Stock,
	})
	s.mu.Unlock()

	s.afterChange(ctx, log, p.ID, "add")
	return s.Items()
}

func (s *Service) Remove(ctx context.Context, productID int64) ([]Item, error) {
	log := s.logger(ctx, "Remove").With(zap.Int64("product_id", productID))

	if _, err := s.take(productID); err != nil {
		return s.Items(), err
	}
	s.afterChange(ctx, log, productID, "remove")
	return s.Items(), nil
}

func (s *Service) take(productID int64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(productID)
	if i < 0 {
		return Item{}, ErrNotInWishlist
	}
	it := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return it, nil
}

func (s *Service) Clear(ctx context.Context) {
	log := s.logger(ctx, "Clear")

	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if err := s.Persist(ctx); err != nil {
		log.Warn("wishlist cleared in memory only", zap.Error(err))
	}
}

// MoveToCart adds one unit of the product to c, then drops it from the
// wishlist. If the cart refuses the product the wishlist is unchanged.
func (s *Service) MoveToCart(ctx context.Context, productID int64, c CartAdder) (cart.Snapshot, error) {
	log := s.logger(ctx, "MoveToCart").With(zap.Int64("product_id", productID))

	s.mu.Lock()
	i := s.indexLocked(productID)
	var it Item
	if i >= 0 {
		it = s.items[i]
	}
	s.mu.Unlock()
	if i < 0 {
		return cart.Snapshot{}, ErrNotInWishlist
	}

	snap, err := c.AddItem(ctx, it.product(), 1)
	if err != nil {
		log.Warn("cart rejected product", zap.Error(err))
		return snap, err
	}

	if _, err := s.take(productID); err == nil {
		s.afterChange(ctx, log, productID, "remove")
	}
	log.Info("moved to cart")
	return snap, nil
}

func (s *Service) afterChange(ctx context.Context, log *zap.Logger, productID int64, action string) {
	if err := s.Persist(ctx); err != nil {
		log.Warn("wishlist changed in memory only", zap.Error(err))
	}
	if s.remote == nil {
		return
	}
	if _, err := s.remote.UpdateWishlist(ctx, strconv.FormatInt(productID, 10), action); err != nil {
		log.Warn("failed to sync wishlist", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) Persist(ctx context.Context) error {
	items := s.Items()
	if err := blobstore.SetJSON(ctx, s.blobs, blobstore.KeyWishlist, items); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSaveWishlist, err)
	}
	return nil
}
