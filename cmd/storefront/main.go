package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// cli carries the state shared by the command tree.
type cli struct {
	build       appBuilder
	app         *app
	showMetrics bool
}

func newCLI(build appBuilder) *cli {
	return &cli{build: build}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Shop from the terminal: cart, promotions, checkout and orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// one id per invocation ties its outgoing calls together in the logs
			cmd.SetContext(logger.WithRequestID(cmd.Context(), uuid.NewString()))
			if c.app != nil {
				return nil
			}
			a, err := c.build(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			c.app = a
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&c.showMetrics, "metrics", false, "print counters on exit")

	root.AddCommand(
		c.cartCmd(),
		c.checkoutCmd(),
		c.ordersCmd(),
		c.wishlistCmd(),
		c.addressCmd(),
		c.productsCmd(),
		c.loginCmd(),
		c.logoutCmd(),
	)
	return root
}

// close runs after every command, successful or not.
func (c *cli) close(w io.Writer) {
	if c.app == nil {
		return
	}
	if c.showMetrics {
		printMetrics(w, c.app.metrics.Snapshot())
	}
	c.app.Close()
	c.app = nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := newCLI(buildFromConfig)
	err := c.rootCmd().ExecuteContext(ctx)
	c.close(os.Stderr)
	logger.Sync()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
