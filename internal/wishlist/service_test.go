package wishlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/blobstore"
	"storefront/internal/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) UpdateWishlist(ctx context.Context, productID, action string) ([]string, error) {
	args := m.Called(ctx, productID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockCart struct {
	mock.Mock
}

func (m *MockCart) AddItem(ctx context.Context, p cart.Product, quantity int) (cart.Snapshot, error) {
	args := m.Called(ctx, p, quantity)
	return args.Get(0).(cart.Snapshot), args.Error(1)
}

// --- Helpers ---

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newService(blobs blobstore.Store, remote Remote) *Service {
	s := NewService(blobs, remote)
	s.now = func() time.Time { return fixedNow }
	return s
}

func lamp() cart.Product {
	return cart.Product{ID: 4, Name: "Lamp", Price: decimal.RequireFromString("19.99")}
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		blobs := blobstore.NewMemory()
		s := newService(blobs, nil)

		items := s.Add(ctx, lamp())
		require.Len(t, items, 1)
		assert.Equal(t, int64(4), items[0].ProductID)
		assert.Equal(t, fixedNow, items[0].AddedAt)

		reloaded := newService(blobs, nil)
		stored, err := reloaded.Load(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Lamp", stored[0].Name)
		assert.True(t, stored[0].Price.Equal(lamp().Price))
		assert.True(t, stored[0].AddedAt.Equal(fixedNow))
	})

	t.Run("Duplicate ignored", func(t *testing.T) {
		remote := new(MockRemote)
		remote.On("UpdateWishlist", ctx, "4", "add").Return([]string{"4"}, nil).Once()
		s := newService(blobstore.NewMemory(), remote)

		s.Add(ctx, lamp())
		items := s.Add(ctx, lamp())
		assert.Len(t, items, 1)
		assert.True(t, s.Contains(4))
		remote.AssertExpectations(t)
	})

	t.Run("Remote failure is not fatal", func(t *testing.T) {
		remote := new(MockRemote)
		remote.On("UpdateWishlist", ctx, "4", "add").Return(nil, errors.New("offline"))
		s := newService(blobstore.NewMemory(), remote)

		assert.Len(t, s.Add(ctx, lamp()), 1)
	})
}

func TestService_RemoveClear(t *testing.T) {
	ctx := context.Background()

	t.Run("Remove", func(t *testing.T) {
		s := newService(blobstore.NewMemory(), nil)
		s.Add(ctx, lamp())
		s.Add(ctx, cart.Product{ID: 9, Name: "Rug", Price: decimal.NewFromInt(80)})

		items, err := s.Remove(ctx, 4)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(9), items[0].ProductID)

		_, err = s.Remove(ctx, 4)
		assert.ErrorIs(t, err, ErrNotInWishlist)
	})

	t.Run("Clear", func(t *testing.T) {
		blobs := blobstore.NewMemory()
		s := newService(blobs, nil)
		s.Add(ctx, lamp())
		s.Clear(ctx)
		assert.Empty(t, s.Items())

		raw, err := blobs.Get(ctx, blobstore.KeyWishlist)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		items, err := newService(blobstore.NewMemory(), nil).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Malformed", func(t *testing.T) {
		blobs := blobstore.NewMemory()
		require.NoError(t, blobs.Set(ctx, blobstore.KeyWishlist, []byte("nope")))

		_, err := newService(blobs, nil).Load(ctx)
		assert.ErrorIs(t, err, ErrFailedLoadWishlist)
	})
}

func TestService_MoveToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := newService(blobstore.NewMemory(), nil)
		s.Add(ctx, lamp())

		c := new(MockCart)
		c.On("AddItem", ctx, lamp(), 1).Return(cart.Snapshot{Seq: 1}, nil)

		snap, err := s.MoveToCart(ctx, 4, c)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), snap.Seq)
		assert.False(t, s.Contains(4))
		c.AssertExpectations(t)
	})

	t.Run("Cart refuses", func(t *testing.T) {
		s := newService(blobstore.NewMemory(), nil)
		s.Add(ctx, lamp())

		c := new(MockCart)
		c.On("AddItem", ctx, lamp(), 1).Return(cart.Snapshot{}, cart.ErrInvalidQuantity)

		_, err := s.MoveToCart(ctx, 4, c)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
		assert.True(t, s.Contains(4))
	})

	t.Run("Not in wishlist", func(t *testing.T) {
		s := newService(blobstore.NewMemory(), nil)
		_, err := s.MoveToCart(ctx, 4, new(MockCart))
		assert.ErrorIs(t, err, ErrNotInWishlist)
	})
}
