package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the shopping cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd.OutOrStdout(), c.app.cart.Snapshot())
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product, accumulating onto an existing line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = parseQuantity(args[1]); err != nil {
					return err
				}
			}

			p, err := c.app.catalog.Product(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up product %d: %w", id, err)
			}
			snap, err := c.app.cart.AddItem(cmd.Context(), p.CartProduct(), qty)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set a line quantity; zero or less removes the line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			snap, err := c.app.cart.UpdateQuantity(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			snap, err := c.app.cart.RemoveItem(cmd.Context(), id)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.cart.ClearCart(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	coupon := &cobra.Command{
		Use:   "coupon <code>",
		Short: "Apply a percentage coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.cart.ApplyCoupon(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	var removePromo bool
	promo := &cobra.Command{
		Use:   "promo [code]",
		Short: "Apply a promo code priced by the store, or pick the best one automatically",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch {
			case removePromo:
				printCart(cmd.OutOrStdout(), c.app.cart.RemovePromoCode(ctx))
				return nil
			case len(args) == 0:
				snap, err := c.app.cart.AutoApplyBestPromo(ctx)
				if err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), snap)
				return nil
			}

			snap, err := c.app.cart.ApplyPromoCode(ctx, args[0])
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	promo.Flags().BoolVar(&removePromo, "remove", false, "drop the active promo code")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Ask the store to price the cart and check availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.app.cart.Snapshot()
			v, err := c.app.client.ValidateCart(cmd.Context(), snap.PromoItems(), snap.Breakdown.CouponCode)
			if err != nil {
				return err
			}
			printValidation(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, remove, clearCmd, coupon, promo, validate)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}
