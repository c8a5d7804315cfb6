// Package session keeps the opaque bearer credentials and the signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/api"
	"storefront/internal/blobstore"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrNoSession          = errors.New("not signed in")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCredentials   = errors.New("username and password are required")
	ErrSessionExpired     = errors.New("session expired, sign in again")
)

// Session is persisted as-is. Tokens are only read for their expiry.
type Session struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    api.UserProfile `json:"user"`
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
}

var _ api.TokenStore = (*Manager)(nil)

// Manager implements api.TokenStore on top of the blob store.
type Manager struct {
	mu      sync.RWMutex
	blobs   blobstore.Store
	current *Session
	now     func() time.Time
}

func NewManager(blobs blobstore.Store) *Manager {
	return &Manager{blobs: blobs, now: time.Now}
}

// Load restores the persisted session. A malformed blob, or one whose
// refresh token has expired, is discarded.
func (m *Manager) Load(ctx context.Context) (*Session, error) {
	var s Session
	err := blobstore.GetJSON(ctx, m.blobs, blobstore.KeySession, &s)

	var decodeErr *blobstore.DecodeError
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return nil, ErrNoSession
	case errors.As(err, &decodeErr):
		logger.FromCtx(ctx).Warn("discarding malformed session", zap.Error(err))
		_ = m.blobs.Delete(ctx, blobstore.KeySession)
		return nil, ErrNoSession
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}

	if expired(s.Refresh, m.now()) {
		logger.FromCtx(ctx).Info("saved session expired")
		_ = m.blobs.Delete(ctx, blobstore.KeySession)
		return nil, ErrSessionExpired
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()
	return &s, nil
}

func (m *Manager) Login(ctx context.Context, auth Authenticator, username, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Session"),
		zap.String("method", "Login"),
		zap.String("username", username),
	)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	res, err := auth.Login(ctx, username, password)
	if err != nil {
		if code := api.StatusCode(err); code == http.StatusUnauthorized || code == http.StatusBadRequest {
			log.Info("login rejected")
			return nil, ErrInvalidCredentials
		}
		log.Error("login failed", zap.Error(err))
		return nil, err
	}

	s := &Session{Access: res.Access, Refresh: res.Refresh, User: res.User}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	if err := blobstore.SetJSON(ctx, m.blobs, blobstore.KeySession, s); err != nil {
		log.Warn("session kept in memory only", zap.Error(err))
	}

	log.Info("signed in")
	return s, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return m.blobs.Delete(ctx, blobstore.KeySession)
}

// User returns the signed-in user, if any.
func (m *Manager) User() (api.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return api.UserProfile{}, false
	}
	return m.current.User, true
}

func (m *Manager) Tokens(context.Context) (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", ""
	}
	return m.current.Access, m.current.Refresh
}

// UpdateAccess swaps in a refreshed access token. The in-memory session is
// updated even when persisting fails.
func (m *Manager) UpdateAccess(ctx context.Context, access string) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	m.current.Access = access
	snapshot := *m.current
	m.mu.Unlock()

	return blobstore.SetJSON(ctx, m.blobs, blobstore.KeySession, snapshot)
}
