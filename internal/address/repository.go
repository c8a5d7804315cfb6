package address

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/blobstore"
	"storefront/internal/checkout"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Load(ctx context.Context) (Book, error)
	SaveAddresses(ctx context.Context, addrs []checkout.Address) error
	SaveDefault(ctx context.Context, addr checkout.Address) error
}

type repository struct {
	blobs blobstore.Store
}

func NewRepository(blobs blobstore.Store) Repository {
	return &repository{blobs: blobs}
}

// Load reads both blobs. Missing or malformed blobs read as empty.
func (r *repository) Load(ctx context.Context) (Book, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Load"),
	)

	var book Book
	if err := r.read(ctx, blobstore.KeySavedAddresses, &book.Addresses); err != nil {
		log.Error("failed to read saved addresses", zap.Error(err))
		return Book{}, fmt.Errorf("%w: %w", ErrFailedLoadAddresses, err)
	}

	var def checkout.Address
	switch err := r.read(ctx, blobstore.KeyDefaultAddress, &def); {
	case err != nil:
		log.Error("failed to read default address", zap.Error(err))
		return Book{}, fmt.Errorf("%w: %w", ErrFailedLoadAddresses, err)
	case def != (checkout.Address{}):
		book.Default = &def
	}

	if book.Addresses == nil {
		book.Addresses = []checkout.Address{}
	}
	return book, nil
}

func (r *repository) read(ctx context.Context, key string, v any) error {
	err := blobstore.GetJSON(ctx, r.blobs, key, v)

	var decodeErr *blobstore.DecodeError
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return nil
	case errors.As(err, &decodeErr):
		logger.FromCtx(ctx).Warn("ignoring malformed blob", zap.String("key", key), zap.Error(err))
		return nil
	}
	return err
}

func (r *repository) SaveAddresses(ctx context.Context, addrs []checkout.Address) error {
	if err := blobstore.SetJSON(ctx, r.blobs, blobstore.KeySavedAddresses, addrs); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSaveAddresses, err)
	}
	return nil
}

func (r *repository) SaveDefault(ctx context.Context, addr checkout.Address) error {
	if err := blobstore.SetJSON(ctx, r.blobs, blobstore.KeyDefaultAddress, addr); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedSaveAddresses, err)
	}
	return nil
}
