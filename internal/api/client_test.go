package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/checkout"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const testBaseURL = "http://shop.test/api"

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/json"}},
	}
}

func readBody(t *testing.T, req *http.Request) string {
	t.Helper()
	if req.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	return string(raw)
}

func newTestClient(rt http.RoundTripper, tokens TokenStore) *Client {
	return NewClient(Options{BaseURL: testBaseURL + "/", Transport: rt, Tokens: tokens})
}

type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	updated int
}

func (f *fakeTokens) Tokens(context.Context) (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeTokens) UpdateAccess(_ context.Context, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = access
	f.updated++
	return nil
}

func TestClient_ApplyPromo(t *testing.T) {
	ctx := context.Background()
	items := []cart.PromoItem{{ProductID: 3, Quantity: 2}}

	t.Run("Success", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, testBaseURL+"/cart/apply-promo/", req.URL.String())
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
			assert.JSONEq(t, `{"promoCode":"VIP20","items":[{"product_id":3,"quantity":2}]}`, readBody(t, req))

			return jsonResponse(http.StatusOK, `{
				"itemsTotal": 60,
				"discount": 12,
				"shipping": 0,
				"taxes": 4.8,
				"grandTotal": 52.8,
				"appliedPromos": ["VIP 20% off"]
			}`)
		}), nil)

		res, err := c.ApplyPromo(ctx, "VIP20", items)
		require.NoError(t, err)
		assert.Equal(t, "VIP20", res.Code)
		assert.True(t, decimal.RequireFromString("4.8").Equal(res.Taxes))
		assert.True(t, decimal.NewFromInt(12).Equal(res.Discount))
		assert.Equal(t, []string{"VIP 20% off"}, res.Labels)
	})

	t.Run("Minimum purchase not met", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"error":"Promo code VIP20 requires a minimum purchase of €50"}`)
		}), nil)

		res, err := c.ApplyPromo(ctx, "VIP20", items)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrPromoRejected)
		assert.ErrorIs(t, err, cart.ErrPromoRejected)
		assert.Contains(t, err.Error(), "minimum purchase of €50")
	})

	t.Run("Server error is not a rejection", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusInternalServerError, `{"detail":"boom"}`)
		}), nil)

		_, err := c.ApplyPromo(ctx, "VIP20", items)
		assert.NotErrorIs(t, err, ErrPromoRejected)
		assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	})

	t.Run("Network failure", func(t *testing.T) {
		c := newTestClient(MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		}), nil)

		_, err := c.ApplyPromo(ctx, "VIP20", items)
		assert.ErrorIs(t, err, ErrRequestFailed)
	})
}

func TestClient_AutoPromo(t *testing.T) {
	c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, testBaseURL+"/cart/auto-promo/", req.URL.String())
		assert.JSONEq(t, `{"items":[{"product_id":1,"quantity":1}]}`, readBody(t, req))
		return jsonResponse(http.StatusOK, `{
			"promoCode": "AUTO",
			"itemsTotal": 55,
			"discount": 0,
			"shipping": 0,
			"taxes": 5.5,
			"grandTotal": 60.5,
			"appliedPromos": ["Free shipping"]
		}`)
	}), nil)

	res, err := c.AutoPromo(context.Background(), []cart.PromoItem{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "AUTO", res.Code)
	assert.Equal(t, "60.5", res.GrandTotal.String())
}

func TestClient_ValidateStock(t *testing.T) {
	ctx := context.Background()
	items := []cart.PromoItem{{ProductID: 1, Quantity: 9}, {ProductID: 99, Quantity: 1}}

	t.Run("Available", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"message":"Stock validation successful"}`)
		}), nil)

		report, err := c.ValidateStock(ctx, items)
		require.NoError(t, err)
		assert.True(t, report.OK)
	})

	t.Run("Insufficient", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{
				"error": "Insufficient stock for product \"Pen\". Only 3 available. Product with ID 99 not found",
				"errors": [
					"Insufficient stock for product \"Pen\". Only 3 available.",
					"Product with ID 99 not found"
				]
			}`)
		}), nil)

		report, err := c.ValidateStock(ctx, items)
		require.NoError(t, err)
		assert.False(t, report.OK)
		assert.Len(t, report.Errors, 2)
		assert.Equal(t, "Product with ID 99 not found", report.Errors[1])
	})

	t.Run("Unavailable service", func(t *testing.T) {
		c := newTestClient(MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusServiceUnavailable, ``)
		}), nil)

		_, err := c.ValidateStock(ctx, items)
		assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	})
}

func TestClient_CreateOrder(t *testing.T) {
	discount := NewAmount(decimal.NewFromInt(20))
	req := OrderRequest{
		Items: []OrderItem{{ProductID: 1, Quantity: 2}},
		ShippingAddress: ShippingAddress{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "1",
			Street: "Main", City: "London", PostalCode: "N1", Country: "UK",
		},
		Subtotal:   NewAmount(decimal.NewFromInt(200)),
		Shipping:   NewAmount(decimal.Zero),
		Tax:        NewAmount(decimal.NewFromInt(18)),
		Total:      NewAmount(decimal.NewFromInt(198)),
		Discount:   &discount,
		CouponCode: "SAVE10",
	}

	c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
		assert.Equal(t, testBaseURL+"/order/", r.URL.String())
		assert.JSONEq(t, `{
			"items":[{"product_id":1,"quantity":2}],
			"shipping_address":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"1",
				"street":"Main","city":"London","postal_code":"N1","country":"UK"},
			"subtotal":200.00,"shipping":0.00,"tax":18.00,"total":198.00,"discount":20.00,
			"coupon_code":"SAVE10"
		}`, readBody(t, r))

		return jsonResponse(http.StatusCreated, `{
			"order_id":"ORD-1-ABC",
			"confirmation_number":"ORD-1-ABC",
			"status":"confirmed",
			"created_at":"2026-03-01T10:00:00Z",
			"estimated_delivery":"2026-03-08T10:00:00Z",
			"total":198,
			"message":"Your order has been successfully placed!"
		}`)
	}), nil)

	res, err := c.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-ABC", res.OrderID)
	assert.Equal(t, "confirmed", res.Status)
	assert.Equal(t, 8, res.EstimatedDelivery.Day())
}

func TestClient_Orders(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/me/orders/":
			return jsonResponse(http.StatusOK, `[{"orderId":"A","status":"confirmed","total":10,
				"shippingAddress":{"firstName":"Ada","postalCode":"N1"},"couponCode":null,"appliedPromos":[]}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders/A/":
			return jsonResponse(http.StatusOK, `{"orderId":"A","items":[{"productId":1,"name":"Pen","price":2.5,"quantity":4}]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/orders/A/":
			return jsonResponse(http.StatusOK, `{"message":"Order cancelled successfully"}`)
		}
		return jsonResponse(http.StatusNotFound, `{"detail":"Order not found"}`)
	}), nil)

	list, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, checkout.Address{FirstName: "Ada", PostalCode: "N1"}, list[0].ShippingAddress)
	assert.Nil(t, list[0].CouponCode)

	detail, err := c.GetOrder(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Pen", detail.Items[0].Name)

	msg, err := c.CancelOrder(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Order cancelled successfully", msg)

	_, err = c.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Order not found")
}

func TestClient_TokenRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Refreshes once and retries", func(t *testing.T) {
		tokens := &fakeTokens{access: "stale", refresh: "r1"}
		calls := 0
		c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
			calls++
			switch r.URL.Path {
			case "/api/auth/token/refresh/":
				assert.JSONEq(t, `{"refresh":"r1"}`, readBody(t, r))
				return jsonResponse(http.StatusOK, `{"access":"fresh"}`)
			case "/api/me/":
				if r.Header.Get("Authorization") != "Bearer fresh" {
					return jsonResponse(http.StatusUnauthorized, `{"detail":"token expired"}`)
				}
				return jsonResponse(http.StatusOK, `{"id":"u1","username":"ada"}`)
			}
			return jsonResponse(http.StatusNotFound, `{}`)
		}), tokens)

		me, err := c.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ada", me.Username)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 1, tokens.updated)
	})

	t.Run("Gives up when refresh fails", func(t *testing.T) {
		tokens := &fakeTokens{access: "stale", refresh: "r1"}
		calls := 0
		c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
			calls++
			return jsonResponse(http.StatusUnauthorized, `{"detail":"nope"}`)
		}), tokens)

		_, err := c.Me(ctx)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, 2, calls)
	})

	t.Run("No refresh token", func(t *testing.T) {
		calls := 0
		c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
			calls++
			assert.Empty(t, r.Header.Get("Authorization"))
			return jsonResponse(http.StatusUnauthorized, `{}`)
		}), &fakeTokens{})

		_, err := c.Me(ctx)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, 1, calls)
	})
}

func TestClient_Addresses(t *testing.T) {
	var seen []string
	c := newTestClient(MockRoundTripper(func(r *http.Request) *http.Response {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPatch {
			assert.JSONEq(t, `{"index":1}`, readBody(t, r))
		}
		return jsonResponse(http.StatusOK, `{"message":"ok"}`)
	}), nil)

	ctx := context.Background()
	require.NoError(t, c.AddAddress(ctx, checkout.Address{FirstName: "Ada"}))
	require.NoError(t, c.UpdateAddress(ctx, 0, checkout.Address{FirstName: "Ada"}))
	require.NoError(t, c.DeleteAddress(ctx, 0))
	require.NoError(t, c.SetDefaultAddress(ctx, 1))

	assert.Equal(t, []string{
		"POST /api/me/addresses/",
		"PUT /api/me/addresses/0/",
		"DELETE /api/me/addresses/0/",
		"PATCH /api/me/addresses/default/",
	}, seen)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := NewClient(Options{
		BaseURL:   testBaseURL,
		RateLimit: 0.001,
		RateBurst: 1,
		Transport: MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `[]`)
		}),
	})

	_, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ListOrders(ctx)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
