package main

import (
	"storefront/internal/api"

	"github.com/spf13/cobra"
)

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	var params api.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.catalog.Products(cmd.Context(), params)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), page)
			return nil
		},
	}
	f := list.Flags()
	f.IntVar(&params.Page, "page", 0, "page number")
	f.IntVar(&params.PageSize, "page-size", 0, "products per page")
	f.Float64Var(&params.MinRating, "min-rating", 0, "only products rated at least this")
	f.StringVar(&params.Ordering, "ordering", "", "sort field, e.g. price or -created_at")

	show := &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show a product with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := c.app.catalog.Product(ctx, id)
			if err != nil {
				return err
			}
			reviews, err := c.app.catalog.Reviews(ctx, id)
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), p, reviews)
			return nil
		},
	}

	var rating int
	var comment string
	review := &cobra.Command{
		Use:   "review <product-id>",
		Short: "Rate a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := c.app.catalog.AddReview(ctx, id, rating, comment); err != nil {
				return err
			}
			summary, err := c.app.catalog.Rating(ctx, id)
			if err != nil {
				return err
			}
			printRating(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	review.Flags().IntVar(&rating, "rating", 5, "stars, 1 to 5")
	review.Flags().StringVar(&comment, "comment", "", "review text")

	cmd.AddCommand(list, show, review)
	return cmd
}
