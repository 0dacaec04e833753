// Package storetest creates throwaway stores for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/SafeIndexor/internal/db"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/migrations"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/stretchr/testify/require"
)

// New returns a store on a fresh, migrated SQLite database removed when the test ends.
func New(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	log := logger.NewNopLogger()

	database, err := db.NewSQLiteDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrationsDB(log, database))

	return store.New(database, nil, log)
}
