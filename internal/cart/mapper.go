package cart

import "storefront/internal/pricing"

func toPricingLines(items []LineItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return lines
}

// PromoItems maps the snapshot lines to the promo service request shape.
func (s Snapshot) PromoItems() []PromoItem {
	out := make([]PromoItem, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, PromoItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

// Lines returns the snapshot lines in pricing form.
func (s Snapshot) Lines() []pricing.Line {
	return toPricingLines(s.Items)
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
