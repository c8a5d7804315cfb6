package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Review and cancel past orders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := c.app.orders.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			printOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.app.orders.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(cmd.OutOrStdout(), *o)
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order that has not shipped yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.app.orders.CancelOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			msg := o.Message
			if msg == "" {
				msg = "Order cancelled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", o.OrderID, msg)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:    "stats",
		Short:  "Store-wide sales figures (staff accounts only)",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.client.AdminStats(cmd.Context())
			if err != nil {
				return err
			}
			printAdminStats(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.AddCommand(list, show, cancel, stats)
	return cmd
}
