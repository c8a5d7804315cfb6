package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"storefront/internal/address"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/metrics"
	"storefront/internal/order"
	"storefront/internal/pricing"
	"storefront/internal/wishlist"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printCart(w io.Writer, snap cart.Snapshot) {
	if snap.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tPRICE\tLINE")
	for _, it := range snap.Items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ProductID, it.Name, it.Quantity, money(it.UnitPrice), money(line))
	}
	tw.Flush()

	b := snap.Breakdown
	fmt.Fprintf(w, "\nItems:     %d\n", b.Count)
	fmt.Fprintf(w, "Subtotal:  %s\n", money(b.Subtotal))
	switch b.Kind {
	case pricing.KindLegacy:
		fmt.Fprintf(w, "Coupon:    %s (-%s%%) -%s\n", b.CouponCode, b.DiscountPercent.String(), money(b.Discount))
	case pricing.KindPromo:
		fmt.Fprintf(w, "Promo:     %s -%s\n", b.PromoCode, money(b.Discount))
		for _, l := range b.Labels {
			fmt.Fprintf(w, "           %s\n", l)
		}
		fmt.Fprintf(w, "Shipping:  %s\n", money(b.Shipping))
		fmt.Fprintf(w, "Taxes:     %s\n", money(b.Taxes))
	}
	fmt.Fprintf(w, "Total:     %s\n", money(b.Total))
	if snap.PromoStale {
		fmt.Fprintln(w, "(promo pricing is out of date; run `cart promo` to refresh)")
	}
}

func printValidation(w io.Writer, v *api.CartValidation) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tPRICE\tAVAILABLE")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%t\n", it.ProductID, it.Name, it.Quantity, money(it.UnitPrice), it.Available)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nSubtotal %s  Tax %s  Shipping %s  Total %s %s\n",
		money(v.Subtotal), money(v.Tax), money(v.Shipping), money(v.Total), v.Currency)
}

func printOrder(w io.Writer, o order.Order) {
	if o.Message != "" {
		fmt.Fprintln(w, o.Message)
	}
	fmt.Fprintf(w, "Order %s (%s)\n", o.OrderID, o.Status)
	if o.ConfirmationNumber != "" {
		fmt.Fprintf(w, "Confirmation: %s\n", o.ConfirmationNumber)
	}
	if !o.EstimatedDelivery.IsZero() {
		fmt.Fprintf(w, "Estimated delivery: %s\n", o.EstimatedDelivery.Format("Mon, 02 Jan 2006"))
	}

	tw := table(w)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %s\tx%d\t%s\n", it.Name, it.Quantity, money(it.Price))
	}
	tw.Flush()

	fmt.Fprintf(w, "Subtotal %s", money(o.Subtotal))
	if o.CouponCode != "" {
		fmt.Fprintf(w, "  Coupon %s -%s", o.CouponCode, money(o.Discount))
	}
	if o.PromoCode != "" {
		fmt.Fprintf(w, "  Promo %s -%s", o.PromoCode, money(o.PromoDiscount))
	}
	fmt.Fprintf(w, "  Tax %s  Shipping %s  Total %s\n", money(o.Tax), money(o.Shipping), money(o.Total))
	fmt.Fprintf(w, "Ship to %s, %s, %s %s\n",
		o.ShippingAddress.FullName(), o.ShippingAddress.Street, o.ShippingAddress.PostalCode, o.ShippingAddress.City)
}

func printOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ORDER\tPLACED\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.OrderID, o.CreatedAt.Format("2006-01-02"), o.Status, len(o.Items), money(o.Total))
	}
	tw.Flush()
}

func printWishlist(w io.Writer, items []wishlist.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your wishlist is empty")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tADDED")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ProductID, it.Name, money(it.Price), it.AddedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printAddresses(w io.Writer, book address.Book) {
	if len(book.Addresses) == 0 {
		fmt.Fprintln(w, "No saved addresses")
	}
	tw := table(w)
	for i, a := range book.Addresses {
		mark := ""
		if book.IsDefault(i) {
			mark = "(default)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s, %s %s, %s\t%s\n", i+1, a.FullName(), a.Street, a.PostalCode, a.City, a.Country, mark)
	}
	tw.Flush()
}

func printProducts(w io.Writer, page *api.ProductPage) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING\tSTOCK\tPROMO")
	for _, p := range page.Results {
		promo := ""
		if p.Promo != nil {
			promo = p.Promo.Label
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%d\t%s\n", p.ID, p.Name, money(p.Price), p.AvgRating, p.Stock, promo)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d products\n", page.Count)
}

func printProduct(w io.Writer, p api.ProductDetail, reviews []api.Review) {
	fmt.Fprintf(w, "%s  %s\n", p.Name, money(p.Price))
	if p.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", p.Category)
	}
	fmt.Fprintf(w, "Rating: %.1f (%d ratings)\n", p.AvgRating, p.RatingsCount)
	switch {
	case p.Stock <= 0:
		fmt.Fprintln(w, "Out of stock")
	case p.Stock <= p.LowStockThreshold:
		fmt.Fprintf(w, "Only %d left\n", p.Stock)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	for _, r := range reviews {
		fmt.Fprintf(w, "\n%s %s\n  %s\n", strings.Repeat("*", r.Rating), r.Username, r.Comment)
	}
}

func printRating(w io.Writer, r *api.ProductRating) {
	fmt.Fprintf(w, "Average %.1f from %d ratings\n", r.AvgRating, r.Count)
}

func printAdminStats(w io.Writer, s *api.AdminStats) {
	fmt.Fprintf(w, "Users %d  Orders %d  Products sold %d  Revenue %s\n",
		s.TotalUsers, s.TotalOrders, s.TotalProductsSold, money(s.TotalRevenue))

	tw := table(w)
	fmt.Fprintln(tw, "\nTOP PRODUCT\tSOLD\tREVENUE")
	for _, p := range s.TopProducts {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, p.Sold, money(p.Revenue))
	}
	tw.Flush()
}

func printMetrics(w io.Writer, samples []metrics.Sample) {
	tw := table(w)
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.Value)
	}
	tw.Flush()
}
