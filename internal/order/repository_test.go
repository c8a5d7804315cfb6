package order

import (
	"context"
	"testing"

	"storefront/internal/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Newest first", func(t *testing.T) {
		repo := NewRepository(blobstore.NewMemory())
		require.NoError(t, repo.Append(ctx, Order{OrderID: "a", Status: StatusConfirmed}))
		require.NoError(t, repo.Append(ctx, Order{OrderID: "b", Status: StatusConfirmed}))

		orders, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "b", orders[0].OrderID)
		assert.Equal(t, "a", orders[1].OrderID)
	})

	t.Run("Empty history", func(t *testing.T) {
		repo := NewRepository(blobstore.NewMemory())
		orders, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)

		_, err = repo.Find(ctx, "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Malformed history is reset", func(t *testing.T) {
		blobs := blobstore.NewMemory()
		require.NoError(t, blobs.Set(ctx, blobstore.KeyOrderHistory, []byte("{not json")))
		repo := NewRepository(blobs)

		orders, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)

		require.NoError(t, repo.Append(ctx, Order{OrderID: "c"}))
		orders, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		repo := NewRepository(blobstore.NewMemory())
		require.NoError(t, repo.Append(ctx, Order{OrderID: "d", Status: StatusConfirmed}))

		require.NoError(t, repo.UpdateStatus(ctx, "d", StatusCancelled))
		o, err := repo.Find(ctx, "d")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)

		assert.ErrorIs(t, repo.UpdateStatus(ctx, "zzz", StatusCancelled), ErrOrderNotFound)
	})
}
