package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/logger"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:          "migrate [up|down]",
		Short:        "Create or roll back the Postgres blob store schema",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "up"
			if len(args) == 1 {
				mode = args[0]
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.AppEnv)
			defer logger.Sync()

			if cfg.StoreDriver != "postgres" {
				return fmt.Errorf("migrations apply to the postgres store only (STORE_DRIVER=%s)", cfg.StoreDriver)
			}

			db, err := sql.Open("postgres", cfg.StoreDSN)
			if err != nil {
				return fmt.Errorf("failed to connect db: %w", err)
			}
			defer db.Close()

			m := &migrator{db: db, dir: dir, log: logger.L().With(zap.String("component", "migrate"))}
			return m.run(cmd.Context(), mode)
		},
	}
	root.Flags().StringVar(&dir, "dir", "./migrations", "directory holding the migration files")
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
