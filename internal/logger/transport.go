package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// Transport stamps every outgoing request with a request id and logs its outcome.
type Transport struct {
	Base http.RoundTripper
}

func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := RequestIDFrom(req.Context())
	if reqID == "" {
		reqID = req.Header.Get(RequestIDHeader)
	}
	if reqID == "" {
		reqID = uuid.New().String()
	}

	// RoundTrippers must not mutate the caller's request
	out := req.Clone(WithRequestID(req.Context(), reqID))
	out.Header.Set(RequestIDHeader, reqID)

	log := FromCtx(out.Context()).With(
		zap.String("method", out.Method),
		zap.String("path", out.URL.Path),
	)

	resp, err := t.Base.RoundTrip(out)
	if err != nil {
		log.Warn("outgoing request failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("outgoing request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
