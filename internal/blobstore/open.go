package blobstore

import (
	"context"
	"fmt"
)

// Open returns the store selected by driver: memory, sqlite or postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "storefront.db"
		}
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown blob store driver %q", driver)
	}
}
