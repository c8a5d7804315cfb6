package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE blobs (key text);
CREATE INDEX idx ON blobs (key);

-- +migrate Down
DROP TABLE blobs;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE blobs")
		assert.Contains(t, up, "CREATE INDEX idx")
		assert.NotContains(t, up, "DROP TABLE blobs")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE blobs")
		assert.NotContains(t, down, "CREATE TABLE blobs")
	})
}

func TestShippedMigrations(t *testing.T) {
	m := &migrator{dir: filepath.Join("..", "..", "migrations"), log: zap.NewNop()}
	files, err := m.files()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	first, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, extractMigrationPart(string(first), "Up"), "CREATE TABLE IF NOT EXISTS blobs")
	assert.Contains(t, extractMigrationPart(string(first), "Down"), "DROP TABLE IF EXISTS blobs")
}

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newMigrator(t *testing.T, dir string) (*migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &migrator{db: db, dir: dir, log: zap.NewNop()}, mock
}

func TestMigrator_Up(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies pending files in order", func(t *testing.T) {
		dir := t.TempDir()
		writeMigration(t, dir, "002_index.sql", "-- +migrate Up\nCREATE INDEX idx ON blobs (key);")
		writeMigration(t, dir, "001_init.sql", "-- +migrate Up\nCREATE TABLE blobs (key text);")
		m, mock := newMigrator(t, dir)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("002_index.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE INDEX idx").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("002_index.sql").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, m.run(ctx, "up"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed script rolls back", func(t *testing.T) {
		dir := t.TempDir()
		writeMigration(t, dir, "001_init.sql", "-- +migrate Up\nCREATE TABLE blobs (key text);")
		m, mock := newMigrator(t, dir)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE blobs").WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err := m.run(ctx, "up")
		assert.ErrorContains(t, err, "001_init.sql")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrator_Down(t *testing.T) {
	ctx := context.Background()

	t.Run("Rolls back latest", func(t *testing.T) {
		dir := t.TempDir()
		writeMigration(t, dir, "001_init.sql", "-- +migrate Up\nCREATE TABLE blobs (key text);\n-- +migrate Down\nDROP TABLE blobs;")
		m, mock := newMigrator(t, dir)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_init.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE blobs").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("001_init.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, m.run(ctx, "down"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing applied", func(t *testing.T) {
		m, mock := newMigrator(t, t.TempDir())

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnError(sql.ErrNoRows)

		require.NoError(t, m.run(ctx, "down"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing file", func(t *testing.T) {
		m, mock := newMigrator(t, t.TempDir())

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("999_gone.sql"))

		assert.ErrorContains(t, m.run(ctx, "down"), "999_gone.sql")
	})
}

func TestMigrator_UnknownMode(t *testing.T) {
	m, mock := newMigrator(t, t.TempDir())
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorContains(t, m.run(context.Background(), "sideways"), "unknown mode")
}

func TestRootCmd_RejectsNonPostgresStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"up"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "postgres store only")
}
