// Package api is the REST client for the storefront backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const refreshPath = "/auth/token/refresh/"

// TokenStore supplies the opaque bearer credentials and receives refreshed ones.
type TokenStore interface {
	Tokens(ctx context.Context) (access, refresh string)
	UpdateAccess(ctx context.Context, access string) error
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables throttling.
	RateLimit float64
	RateBurst int
	Tokens    TokenStore
	// Transport is wrapped by the request logging transport. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenStore

	configGroup singleflight.Group
	configCache *storeConfigCache
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: logger.NewTransport(opts.Transport),
		},
		limiter:     limiter,
		tokens:      opts.Tokens,
		configCache: &storeConfigCache{},
	}
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// do sends a JSON request and decodes a 2xx body into out. A 401 triggers
// one token refresh and a single retry.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	status, body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && path != refreshPath && c.refresh(ctx) {
		status, body, err = c.send(ctx, method, path, in)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return newStatusError(method, path, status, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrRequestFailed, method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if access, _ := c.tokens.Tokens(ctx); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s %s: %v", ErrRequestFailed, method, path, err)
	}
	return resp.StatusCode, body, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

func (c *Client) refresh(ctx context.Context) bool {
	if c.tokens == nil {
		return false
	}
	_, refreshToken := c.tokens.Tokens(ctx)
	if refreshToken == "" {
		return false
	}

	log := logger.FromCtx(ctx).With(zap.String("client", "API"), zap.String("method", "refresh"))

	var res refreshResponse
	if err := c.do(ctx, http.MethodPost, refreshPath, refreshRequest{Refresh: refreshToken}, &res); err != nil {
		log.Warn("token refresh failed", zap.Error(err))
		return false
	}
	if res.Access == "" {
		log.Warn("token refresh returned no access token")
		return false
	}
	if err := c.tokens.UpdateAccess(ctx, res.Access); err != nil {
		log.Warn("refreshed token not persisted", zap.Error(err))
	}
	return true
}
