package api

import (
	"context"
	"net/http"
	"net/url"
)

// CreateOrder submits an order. The server answers 201 with its assigned ids.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	var res OrderResponse
	if err := c.do(ctx, http.MethodPost, "/order/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]OrderView, error) {
	var res []OrderView
	if err := c.do(ctx, http.MethodGet, "/me/orders/", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	var res OrderView
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelOrder returns the server's confirmation message.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (string, error) {
	var res messageResponse
	if err := c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID)+"/", nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) AdminStats(ctx context.Context) (*AdminStats, error) {
	var res AdminStats
	if err := c.do(ctx, http.MethodGet, "/admin/stats/", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
