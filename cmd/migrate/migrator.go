package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const ensureVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT NOW()
)`

// migrator applies `-- +migrate Up/Down` files from dir in name order.
type migrator struct {
	db  *sql.DB
	dir string
	log *zap.Logger
}

func (m *migrator) files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(m.dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) run(ctx context.Context, mode string) error {
	if _, err := m.db.ExecContext(ctx, ensureVersionTable); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := m.files()
	if err != nil {
		return err
	}

	switch mode {
	case "up":
		return m.up(ctx, files)
	case "down":
		return m.down(ctx, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

// up applies every file not yet recorded, each in its own transaction.
func (m *migrator) up(ctx context.Context, files []string) error {
	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := m.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			m.log.Debug("skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		m.log.Info("applying migration", zap.String("version", version))
		if err := m.apply(ctx, extractMigrationPart(string(content), "Up"),
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("migration %s failed: %w", version, err)
		}
		applied++
	}

	m.log.Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

// down rolls back the most recently applied migration only.
func (m *migrator) down(ctx context.Context, files []string) error {
	var last string
	err := m.db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		m.log.Warn("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	var path string
	for _, f := range files {
		if filepath.Base(f) == last {
			path = f
			break
		}
	}
	if path == "" {
		return fmt.Errorf("migration file not found for version: %s", last)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	m.log.Info("rolling back migration", zap.String("version", last))
	if err := m.apply(ctx, extractMigrationPart(string(content), "Down"),
		`DELETE FROM schema_migrations WHERE version = $1`, last); err != nil {
		return fmt.Errorf("rollback of %s failed: %w", last, err)
	}
	return nil
}

func (m *migrator) apply(ctx context.Context, script, record, version string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if strings.TrimSpace(script) != "" {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return fmt.Errorf("failed to record migration version: %w", err)
	}
	return tx.Commit()
}

func extractMigrationPart(content string, section string) string {
	var part strings.Builder
	inPart := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "-- +migrate "+section) {
			inPart = true
			continue
		}
		if inPart && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
