package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"storefront/internal/checkout"
	"storefront/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errCheckoutBlocked is returned when a guard redirected the shopper.
var errCheckoutBlocked = errors.New("checkout cannot continue")

func (c *cli) checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Enter a shipping address and place the order",
	}

	var addr checkout.Address
	var useDefault bool
	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Save the shipping address for this checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.walk(cmd, checkout.StepSummary, checkout.StepAddress); err != nil {
				return err
			}

			if useDefault {
				book, err := c.app.addresses.List(ctx)
				if err != nil {
					return err
				}
				if book.Default == nil {
					return errors.New("no default address saved")
				}
				addr = *book.Default
			}

			if err := c.app.flow.SaveAddress(ctx, addr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shipping to %s, %s\n", addr.FullName(), addr.City)
			return nil
		},
	}
	addressFlags(addressCmd, &addr)
	addressCmd.Flags().BoolVar(&useDefault, "default", false, "use the default address from the address book")

	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Review the order and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.walk(cmd, checkout.StepSummary, checkout.StepAddress, checkout.StepConfirm); err != nil {
				return err
			}

			addr, err := c.app.flow.Address(ctx)
			if err != nil {
				return err
			}

			o, err := c.app.orders.PlaceOrder(ctx, addr)
			settle(ctx, c.app.flow, err)
			if err != nil {
				return err
			}
			printOrder(cmd.OutOrStdout(), *o)
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check <step>",
		Short: "Report whether a checkout step (summary, address, confirm) can be entered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := checkout.ParseStep(args[0])
			if err != nil {
				return err
			}
			if step == checkout.StepSubmitted || step == checkout.StepFailed {
				return checkout.ErrInvalidStep
			}
			d := c.app.flow.Guard(cmd.Context(), step)
			if !d.Allowed {
				printNotice(cmd.OutOrStdout(), d)
				return fmt.Errorf("%w: back to %s", errCheckoutBlocked, d.Step)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ready for %s\n", step)
			return nil
		},
	}

	cmd.AddCommand(addressCmd, confirm, check)
	return cmd
}

// settle moves the flow past Confirm once the outcome of the order is known.
func settle(ctx context.Context, flow *checkout.Flow, placeErr error) {
	log := logger.FromCtx(ctx)
	if placeErr != nil {
		if err := flow.MarkFailed(placeErr); err != nil {
			log.Warn("checkout flow not marked failed", zap.Error(err))
		}
		return
	}
	if err := flow.MarkSubmitted(); err != nil {
		log.Warn("checkout flow not marked submitted", zap.Error(err))
	}
}

// walk enters each step in order, stopping at the first guard redirect.
func (c *cli) walk(cmd *cobra.Command, steps ...checkout.Step) error {
	for _, step := range steps {
		d, err := c.app.flow.Enter(cmd.Context(), step)
		if err != nil {
			return err
		}
		if !d.Allowed {
			printNotice(cmd.ErrOrStderr(), d)
			return fmt.Errorf("%w: back to %s", errCheckoutBlocked, d.Step)
		}
	}
	return nil
}

func printNotice(w io.Writer, d checkout.Decision) {
	if d.Notice == nil {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", d.Notice.Severity, d.Notice.Message)
}
