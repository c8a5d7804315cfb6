package api

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/checkout"
)

// Login exchanges credentials for an opaque token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var res LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token/", loginRequest{Username: username, Password: password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var res UserProfile
	if err := c.do(ctx, http.MethodGet, "/me/", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateMe(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	var res UserProfile
	if err := c.do(ctx, http.MethodPatch, "/me/", update, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Addresses(ctx context.Context) (*AddressBook, error) {
	var res AddressBook
	if err := c.do(ctx, http.MethodGet, "/me/addresses/", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AddAddress(ctx context.Context, addr checkout.Address) error {
	return c.do(ctx, http.MethodPost, "/me/addresses/", addr, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, index int, addr checkout.Address) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/me/addresses/%d/", index), addr, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, index int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/me/addresses/%d/", index), nil, nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, index int) error {
	body := struct {
		Index int `json:"index"`
	}{Index: index}
	return c.do(ctx, http.MethodPatch, "/me/addresses/default/", body, nil)
}

// Wishlist returns the product ids on the server-side wishlist.
func (c *Client) Wishlist(ctx context.Context) ([]string, error) {
	var res []string
	if err := c.do(ctx, http.MethodGet, "/me/wishlist/", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateWishlist adds or removes productID; action is "add" or "remove".
func (c *Client) UpdateWishlist(ctx context.Context, productID, action string) ([]string, error) {
	body := struct {
		ProductID string `json:"productId"`
		Action    string `json:"action"`
	}{ProductID: productID, Action: action}

	var res struct {
		Wishlist []string `json:"wishlist"`
	}
	if err := c.do(ctx, http.MethodPost, "/me/wishlist/", body, &res); err != nil {
		return nil, err
	}
	return res.Wishlist, nil
}
