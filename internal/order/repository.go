package order

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/blobstore"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

// Repository is the local order history, newest first.
type Repository interface {
	Append(ctx context.Context, o Order) error
	List(ctx context.Context) ([]Order, error)
	Find(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type historyRepository struct {
	// serializes read-modify-write of the history blob
	mu    sync.Mutex
	blobs blobstore.Store
}

func NewRepository(blobs blobstore.Store) Repository {
	return &historyRepository{blobs: blobs}
}

func (r *historyRepository) load(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := blobstore.GetJSON(ctx, r.blobs, blobstore.KeyOrderHistory, &orders)

	var decodeErr *blobstore.DecodeError
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return nil, nil
	case errors.As(err, &decodeErr):
		logger.FromCtx(ctx).Warn("order history unreadable, starting over", zap.Error(err))
		return nil, nil
	}
	return orders, err
}

func (r *historyRepository) Append(ctx context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	orders = append([]Order{o}, orders...)
	return blobstore.SetJSON(ctx, r.blobs, blobstore.KeyOrderHistory, orders)
}

func (r *historyRepository) List(ctx context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *historyRepository) Find(ctx context.Context, orderID string) (*Order, error) {
	orders, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *historyRepository) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			orders[i].Status = status
			return blobstore.SetJSON(ctx, r.blobs, blobstore.KeyOrderHistory, orders)
		}
	}
	return ErrOrderNotFound
}
