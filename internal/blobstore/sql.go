package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type dialect struct {
	name   string
	get    string
	upsert string
	delete string
}

var (
	postgresDialect = dialect{
		name: "postgres",
		get:  `SELECT value FROM blobs WHERE key = $1`,
		upsert: `INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		delete: `DELETE FROM blobs WHERE key = $1`,
	}

	sqliteDialect = dialect{
		name: "sqlite",
		get:  `SELECT value FROM blobs WHERE key = ?`,
		upsert: `INSERT INTO blobs (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		delete: `DELETE FROM blobs WHERE key = ?`,
	}
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQL stores blobs in a single `blobs` table.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgres wraps an open Postgres handle. The table comes from cmd/migrate.
func NewPostgres(db *sql.DB) *SQL {
	return &SQL{db: db, dialect: postgresDialect}
}

func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.L().Info("blob store connected", zap.String("driver", "postgres"))
	return NewPostgres(db), nil
}

// OpenSQLite opens (and creates when needed) a file-backed store.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	logger.L().Info("blob store opened", zap.String("driver", "sqlite"), zap.String("path", path))
	return &SQL{db: db, dialect: sqliteDialect}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.delete, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
