package order

import (
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/pricing"
)

func toShippingAddress(a checkout.Address) api.ShippingAddress {
	return api.ShippingAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Phone:      a.Phone,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// newOrder builds the draft order from the cart and the checkout figures.
// Coupon fields and promo fields are exclusive, following the pricing mode.
func newOrder(snap cart.Snapshot, b pricing.Breakdown, addr checkout.Address) Order {
	items := make([]Item, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	o := Order{
		Items:           items,
		ShippingAddress: addr,
		Subtotal:        b.Subtotal,
		Tax:             b.Taxes,
		Shipping:        b.Shipping,
		Total:           b.Total,
	}

	switch b.Kind {
	case pricing.KindLegacy:
		o.Discount = b.Discount
		o.CouponCode = b.CouponCode
	case pricing.KindPromo:
		o.PromoCode = b.PromoCode
		o.PromoDiscount = b.Discount
		o.AppliedPromos = b.Labels
	}
	return o
}

func toOrderRequest(o Order) api.OrderRequest {
	items := make([]api.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, api.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	req := api.OrderRequest{
		Items:           items,
		ShippingAddress: toShippingAddress(o.ShippingAddress),
		Subtotal:        api.NewAmount(o.Subtotal),
		Shipping:        api.NewAmount(o.Shipping),
		Tax:             api.NewAmount(o.Tax),
		Total:           api.NewAmount(o.Total),
		CouponCode:      o.CouponCode,
		PromoCode:       o.PromoCode,
		AppliedPromos:   o.AppliedPromos,
	}
	if o.CouponCode != "" {
		d := api.NewAmount(o.Discount)
		req.Discount = &d
	}
	if o.PromoCode != "" {
		d := api.NewAmount(o.PromoDiscount)
		req.PromoDiscount = &d
	}
	return req
}

// mergeResponse copies the server-assigned fields onto the draft.
func mergeResponse(o Order, res *api.OrderResponse) Order {
	o.OrderID = res.OrderID
	o.ConfirmationNumber = res.ConfirmationNumber
	o.Status = Status(res.Status)
	if o.Status == "" {
		o.Status = StatusConfirmed
	}
	o.CreatedAt = res.CreatedAt
	o.EstimatedDelivery = res.EstimatedDelivery
	o.Message = res.Message
	return o
}

func fromView(v api.OrderView) Order {
	items := make([]Item, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, Item{ProductID: it.ProductID, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}

	o := Order{
		OrderID:            v.OrderID,
		ConfirmationNumber: v.ConfirmationNumber,
		Items:              items,
		ShippingAddress:    v.ShippingAddress,
		Subtotal:           v.Subtotal,
		Tax:                v.Tax,
		Shipping:           v.Shipping,
		Total:              v.Total,
		Discount:           v.Discount,
		PromoDiscount:      v.PromoDiscount,
		AppliedPromos:      v.AppliedPromos,
		Status:             Status(v.Status),
		CreatedAt:          v.CreatedAt,
		EstimatedDelivery:  v.EstimatedDelivery,
	}
	if v.CouponCode != nil {
		o.CouponCode = *v.CouponCode
	}
	if v.PromoCode != nil {
		o.PromoCode = *v.PromoCode
	}
	return o
}
