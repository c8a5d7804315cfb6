package session

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/api"
	"storefront/internal/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.LoginResponse), args.Error(1)
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success persists session", func(t *testing.T) {
		blobs := blobstore.NewMemory()
		m := NewManager(blobs)
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, "ada", "secret").Return(&api.LoginResponse{
			Access:  "a1",
			Refresh: "r1",
			User:    api.UserProfile{ID: "user-ada", Username: "ada"},
		}, nil)

		s, err := m.Login(ctx, auth, "ada", "secret")
		require.NoError(t, err)
		assert.Equal(t, "a1", s.Access)

		access, refresh := m.Tokens(ctx)
		assert.Equal(t, "a1", access)
		assert.Equal(t, "r1", refresh)

		restored := NewManager(blobs)
		loaded, err := restored.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ada", loaded.User.Username)
		user, ok := restored.User()
		assert.True(t, ok)
		assert.Equal(t, "user-ada", user.ID)
	})

	t.Run("Rejected credentials", func(t *testing.T) {
		m := NewManager(blobstore.NewMemory())
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, "ada", "wrong").
			Return(nil, &api.StatusError{Status: http.StatusUnauthorized, Message: "bad credentials"})

		_, err := m.Login(ctx, auth, "ada", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, ok := m.User()
		assert.False(t, ok)
	})

	t.Run("Transport failure is passed through", func(t *testing.T) {
		m := NewManager(blobstore.NewMemory())
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, api.ErrRequestFailed)

		_, err := m.Login(ctx, auth, "ada", "secret")
		assert.ErrorIs(t, err, api.ErrRequestFailed)
	})

	t.Run("Empty credentials", func(t *testing.T) {
		m := NewManager(blobstore.NewMemory())
		auth := new(MockAuthenticator)

		_, err := m.Login(ctx, auth, " ", "x")
		assert.ErrorIs(t, err, ErrEmptyCredentials)
		auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestManager_LoadAndLogout(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory()
	m := NewManager(blobs)

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, blobs.Set(ctx, blobstore.KeySession, []byte(`not json`)))
	_, err = m.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = blobs.Get(ctx, blobstore.KeySession)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, blobstore.SetJSON(ctx, blobs, blobstore.KeySession, Session{Access: "a", Refresh: "r"}))
	_, err = m.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	access, _ := m.Tokens(ctx)
	assert.Empty(t, access)
	_, err = m.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_UpdateAccess(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory()
	m := NewManager(blobs)

	assert.ErrorIs(t, m.UpdateAccess(ctx, "x"), ErrNoSession)

	require.NoError(t, blobstore.SetJSON(ctx, blobs, blobstore.KeySession, Session{Access: "old", Refresh: "r"}))
	_, err := m.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAccess(ctx, "new"))
	var stored Session
	require.NoError(t, blobstore.GetJSON(ctx, blobs, blobstore.KeySession, &stored))
	assert.Equal(t, "new", stored.Access)
	assert.Equal(t, "r", stored.Refresh)
}
