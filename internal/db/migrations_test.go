package db

import (
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/require"
)

var testMigrations = []Migration{
	{
		ID: "001_wallets.sql",
		SQL: `-- +migrate Down
DROP TABLE IF EXISTS wallets;

-- +migrate Up
CREATE TABLE wallets (address TEXT PRIMARY KEY);`,
	},
	{
		ID: "002_owners.sql",
		SQL: `-- +migrate Down
DROP TABLE IF EXISTS owners;

-- +migrate Up
CREATE TABLE owners (wallet TEXT NOT NULL, owner TEXT NOT NULL);
CREATE INDEX idx_owners_wallet ON owners (wallet);`,
	},
}

func tableExists(t *testing.T, path, table string) bool {
	t.Helper()

	database, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer database.Close()

	var n int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n))
	return n == 1
}

func TestMigrationParsing(t *testing.T) {
	mig, err := testMigrations[1].toSQLMigrate()
	require.NoError(t, err)
	require.Equal(t, "002_owners.sql", mig.Id)
	require.Len(t, mig.Up, 1)
	require.Contains(t, mig.Up[0], "CREATE INDEX")
	require.Equal(t, []string{"DROP TABLE IF EXISTS owners;"}, mig.Down)

	upOnly, err := Migration{ID: "up", SQL: "-- +migrate Up\nCREATE TABLE t (x INTEGER);"}.toSQLMigrate()
	require.NoError(t, err)
	require.Nil(t, upOnly.Down)

	_, err = Migration{ID: "broken", SQL: "CREATE TABLE t (x INTEGER);"}.toSQLMigrate()
	require.ErrorContains(t, err, "missing")

	_, err = Migration{ID: "empty", SQL: "-- +migrate Down\nDROP TABLE t;\n-- +migrate Up\n"}.toSQLMigrate()
	require.ErrorContains(t, err, "empty up section")
}

func TestRunMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	require.NoError(t, RunMigrations(path, testMigrations))
	require.True(t, tableExists(t, path, "wallets"))
	require.True(t, tableExists(t, path, "owners"))

	// applying again is a no-op
	require.NoError(t, RunMigrations(path, testMigrations))
}

func TestMigrateDB_Rollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	require.NoError(t, RunMigrations(path, testMigrations))

	database, err := NewSQLiteDB(path)
	require.NoError(t, err)

	applied, err := MigrateDB(logger.NewNopLogger(), database, testMigrations, migrate.Down, 1)
	require.NoError(t, err)
	require.Equal(t, 1, applied)
	require.NoError(t, database.Close())

	require.True(t, tableExists(t, path, "wallets"))
	require.False(t, tableExists(t, path, "owners"))
}

func TestMigrateDB_InvalidMigration(t *testing.T) {
	database, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	defer database.Close()

	err = RunMigrationsDB(logger.NewNopLogger(), database, []Migration{{ID: "bad", SQL: "SELECT 1"}})
	require.ErrorContains(t, err, "bad")
}
