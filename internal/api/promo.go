package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

func toPromoItems(items []cart.PromoItem) []promoItem {
	out := make([]promoItem, 0, len(items))
	for _, it := range items {
		out = append(out, promoItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (r promoResponse) toResult(code string) *cart.PromoResult {
	if r.PromoCode != "" {
		code = r.PromoCode
	}
	return &cart.PromoResult{
		Code:       code,
		ItemsTotal: r.ItemsTotal,
		Discount:   r.Discount,
		Shipping:   r.Shipping,
		Taxes:      r.Taxes,
		GrandTotal: r.GrandTotal,
		Labels:     r.AppliedPromos,
	}
}

// promoError turns a 400 from the promo endpoints into a rejection carrying
// the server's message.
func promoError(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", ErrPromoRejected, se.Message)
	}
	return err
}

// ApplyPromo prices items with code. Invalid codes and unmet minimum purchases
// are reported as ErrPromoRejected.
func (c *Client) ApplyPromo(ctx context.Context, code string, items []cart.PromoItem) (*cart.PromoResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("client", "API"),
		zap.String("method", "ApplyPromo"),
		zap.String("promo_code", code),
	)

	var res promoResponse
	err := c.do(ctx, http.MethodPost, "/cart/apply-promo/", promoRequest{PromoCode: code, Items: toPromoItems(items)}, &res)
	if err != nil {
		err = promoError(err)
		log.Info("apply promo failed", zap.Error(err))
		return nil, err
	}
	return res.toResult(code), nil
}

// AutoPromo asks the server for the best promo combination for items.
func (c *Client) AutoPromo(ctx context.Context, items []cart.PromoItem) (*cart.PromoResult, error) {
	var res promoResponse
	if err := c.do(ctx, http.MethodPost, "/cart/auto-promo/", promoRequest{Items: toPromoItems(items)}, &res); err != nil {
		return nil, promoError(err)
	}
	return res.toResult(""), nil
}

// ValidateCart asks the server to price items at list price.
func (c *Client) ValidateCart(ctx context.Context, items []cart.PromoItem, couponCode string) (*CartValidation, error) {
	var res CartValidation
	req := cartValidationRequest{Items: toPromoItems(items), CouponCode: couponCode}
	if err := c.do(ctx, http.MethodPost, "/cart/validate/", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateStock checks availability of every line. A 400 is not an error:
// it yields a report with OK false and one message per failing line.
func (c *Client) ValidateStock(ctx context.Context, items []cart.PromoItem) (*StockReport, error) {
	var res stockResponse
	err := c.do(ctx, http.MethodPost, "/cart/validate-stock/", promoRequest{Items: toPromoItems(items)}, &res)

	var se *StatusError
	switch {
	case err == nil:
		return &StockReport{OK: true, Message: res.Message}, nil
	case errors.As(err, &se) && se.Status == http.StatusBadRequest:
		report := &StockReport{Message: se.Message, Errors: se.Errors}
		if len(report.Errors) == 0 {
			report.Errors = []string{se.Message}
		}
		return report, nil
	default:
		return nil, err
	}
}
