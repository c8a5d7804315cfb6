package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) wishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Products saved for later",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printWishlist(cmd.OutOrStdout(), c.app.wishlist.Items())
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Save a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.app.catalog.Product(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("look up product %d: %w", id, err)
			}
			printWishlist(cmd.OutOrStdout(), c.app.wishlist.Add(cmd.Context(), p.CartProduct()))
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Drop a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			items, err := c.app.wishlist.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			printWishlist(cmd.OutOrStdout(), items)
			return nil
		},
	}

	move := &cobra.Command{
		Use:   "move <product-id>",
		Short: "Move a product into the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			snap, err := c.app.wishlist.MoveToCart(cmd.Context(), id, c.app.cart)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.wishlist.Clear(cmd.Context())
			printWishlist(cmd.OutOrStdout(), nil)
			return nil
		},
	}

	cmd.AddCommand(list, add, remove, move, clearCmd)
	return cmd
}
