package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})

	t.Run("CLI only warns", func(t *testing.T) {
		Init("cli")
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})
}

func TestL(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	log = nil
	os.Setenv("APP_ENV", "test")

	l := L()
	assert.NotNil(t, l)
	assert.NotNil(t, log)
}

func TestReplace(t *testing.T) {
	original := L()
	restore := Replace(zap.NewNop())
	assert.NotSame(t, original, L())

	restore()
	assert.Same(t, original, L())
}

func TestContextFunctions(t *testing.T) {
	ctx := context.Background()
	reqID := "test-request-id-123"

	t.Run("WithRequestID", func(t *testing.T) {
		newCtx := WithRequestID(ctx, reqID)
		assert.Equal(t, reqID, newCtx.Value(requestIDKey))
	})

	t.Run("RequestIDFrom", func(t *testing.T) {
		assert.Equal(t, reqID, RequestIDFrom(WithRequestID(ctx, reqID)))
		assert.Equal(t, "", RequestIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer Replace(zap.New(core))()

	t.Run("WithRequestID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-abc-123")
		FromCtx(ctx).Info("test message with id")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-abc-123", logs[0].ContextMap()["request_id"])
	})

	t.Run("WithoutRequestID", func(t *testing.T) {
		FromCtx(context.Background()).Info("test message without id")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["request_id"]
		assert.False(t, ok)
	})
}

func TestFromCtx_ReportsCallingLine(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer Replace(zap.New(core, options()...))()

	FromCtx(WithRequestID(context.Background(), "req-1")).
		With(zap.String("service", "Cart")).
		Info("cart cleared")

	logs := observed.TakeAll()
	require.Len(t, logs, 1)
	require.True(t, logs[0].Caller.Defined)
	assert.Equal(t, "logger_test.go", filepath.Base(logs[0].Caller.File))
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, func() {
		Sync()
	})
}

func TestTransport(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer Replace(zap.New(core))()

	t.Run("Generates request id", func(t *testing.T) {
		var seen string
		tr := NewTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get(RequestIDHeader)
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}))

		req := httptest.NewRequest(http.MethodGet, "http://api.test/config/", nil)
		resp, err := tr.RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, seen)
		assert.Empty(t, req.Header.Get(RequestIDHeader), "caller request must not be mutated")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "outgoing request", logs[0].Message)
		assert.Equal(t, "/config/", logs[0].ContextMap()["path"])
		assert.Equal(t, seen, logs[0].ContextMap()["request_id"])

		took, ok := logs[0].ContextMap()["duration"].(time.Duration)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, took, time.Duration(0))
		_, legacyKey := logs[0].ContextMap()["duration_ms"]
		assert.False(t, legacyKey)
	})

	t.Run("Keeps context request id", func(t *testing.T) {
		var seen string
		tr := NewTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get(RequestIDHeader)
			return &http.Response{StatusCode: http.StatusCreated, Body: http.NoBody}, nil
		}))

		req := httptest.NewRequest(http.MethodPost, "http://api.test/order/", nil)
		req = req.WithContext(WithRequestID(req.Context(), "fixed-id"))
		_, err := tr.RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", seen)
		observed.TakeAll()
	})

	t.Run("Logs failures", func(t *testing.T) {
		tr := NewTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}))

		req := httptest.NewRequest(http.MethodGet, "http://api.test/products/", nil)
		_, err := tr.RoundTrip(req)
		assert.Error(t, err)

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})
}
