package address

import (
	"context"

	"storefront/internal/checkout"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

// Remote mirrors address book changes to the shopper's account.
type Remote interface {
	AddAddress(ctx context.Context, addr checkout.Address) error
	UpdateAddress(ctx context.Context, index int, addr checkout.Address) error
	DeleteAddress(ctx context.Context, index int) error
	SetDefaultAddress(ctx context.Context, index int) error
}

// Service defines the address book operations. Positions are zero based.
type Service interface {
	List(ctx context.Context) (Book, error)
	Add(ctx context.Context, addr checkout.Address, makeDefault bool) (Book, error)
	Update(ctx context.Context, index int, addr checkout.Address) (Book, error)
	Remove(ctx context.Context, index int) (Book, error)
	SetDefault(ctx context.Context, index int) (Book, error)
}

type service struct {
	repo   Repository
	remote Remote
}

// NewService creates an address book. remote may be nil when signed out.
func NewService(repo Repository, remote Remote) Service {
	return &service{repo: repo, remote: remote}
}

func (s *service) logger(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", method),
	)
}

// sync pushes a change to the account. The local book stays authoritative,
// so a failure is only logged.
func (s *service) sync(log *zap.Logger, push func(Remote) error) {
	if s.remote == nil {
		return
	}
	if err := push(s.remote); err != nil {
		log.Warn("failed to sync address book", zap.Error(err))
	}
}

func (s *service) List(ctx context.Context) (Book, error) {
	return s.repo.Load(ctx)
}

func (s *service) Add(ctx context.Context, addr checkout.Address, makeDefault bool) (Book, error) {
	log := s.logger(ctx, "Add")

	if err := addr.Validate(); err != nil {
		log.Warn("invalid address", zap.Error(err))
		return Book{}, err
	}

	book, err := s.repo.Load(ctx)
	if err != nil {
		return Book{}, err
	}

	book.Addresses = append(book.Addresses, addr)
	if err := s.repo.SaveAddresses(ctx, book.Addresses); err != nil {
		log.Error("failed to save addresses", zap.Error(err))
		return Book{}, err
	}
	s.sync(log, func(r Remote) error { return r.AddAddress(ctx, addr) })

	if makeDefault {
		return s.setDefault(ctx, log, book, len(book.Addresses)-1)
	}

	log.Info("address added", zap.Int("count", len(book.Addresses)))
	return book, nil
}

func (s *service) Update(ctx context.Context, index int, addr checkout.Address) (Book, error) {
	log := s.logger(ctx, "Update").With(zap.Int("index", index))

	if err := addr.Validate(); err != nil {
		log.Warn("invalid address", zap.Error(err))
		return Book{}, err
	}

	book, err := s.repo.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if _, err := book.at(index); err != nil {
		return book, err
	}

	book.Addresses[index] = addr
	if err := s.repo.SaveAddresses(ctx, book.Addresses); err != nil {
		log.Error("failed to save addresses", zap.Error(err))
		return Book{}, err
	}
	s.sync(log, func(r Remote) error { return r.UpdateAddress(ctx, index, addr) })

	log.Info("address updated")
	return book, nil
}

// Remove deletes the address at index. The default address is left as is.
func (s *service) Remove(ctx context.Context, index int) (Book, error) {
	log := s.logger(ctx, "Remove").With(zap.Int("index", index))

	book, err := s.repo.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	if _, err := book.at(index); err != nil {
		return book, err
	}

	book.Addresses = append(book.Addresses[:index], book.Addresses[index+1:]...)
	if err := s.repo.SaveAddresses(ctx, book.Addresses); err != nil {
		log.Error("failed to save addresses", zap.Error(err))
		return Book{}, err
	}
	s.sync(log, func(r Remote) error { return r.DeleteAddress(ctx, index) })

	log.Info("address removed")
	return book, nil
}

func (s *service) SetDefault(ctx context.Context, index int) (Book, error) {
	log := s.logger(ctx, "SetDefault").With(zap.Int("index", index))

	book, err := s.repo.Load(ctx)
	if err != nil {
		return Book{}, err
	}
	return s.setDefault(ctx, log, book, index)
}

func (s *service) setDefault(ctx context.Context, log *zap.Logger, book Book, index int) (Book, error) {
	addr, err := book.at(index)
	if err != nil {
		return book, err
	}

	if err := s.repo.SaveDefault(ctx, addr); err != nil {
		log.Error("failed to save default address", zap.Error(err))
		return Book{}, err
	}
	book.Default = &addr
	s.sync(log, func(r Remote) error { return r.SetDefaultAddress(ctx, index) })

	log.Info("default address set", zap.Int("index", index))
	return book, nil
}
