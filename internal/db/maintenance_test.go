package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func setupMaintenanceDB(t *testing.T, journal string) (*MaintenanceCoordinator, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "maintenance.sqlite")
	dbConfig := config.DatabaseConfig{Path: dbPath, JournalMode: journal}
	dbConfig.ApplyDefaults()

	sqlDB, err := NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE filler (id INTEGER PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	for i := range 500 {
		_, err = sqlDB.Exec(`INSERT INTO filler (value) VALUES (?)`, fmt.Sprintf("value_%d", i))
		require.NoError(t, err)
	}
	_, err = sqlDB.Exec(`DELETE FROM filler WHERE id % 2 = 0`)
	require.NoError(t, err)

	cfg := &config.MaintenanceConfig{Enabled: true}
	cfg.ApplyDefaults()

	m, ok := NewMaintenanceCoordinator(dbPath, sqlDB, cfg, logger.NewNopLogger()).(*MaintenanceCoordinator)
	require.True(t, ok)

	return m, dbPath
}

func TestNewMaintenanceCoordinator_Disabled(t *testing.T) {
	require.IsType(t, NoOpMaintenance{}, NewMaintenanceCoordinator("x", nil, nil, logger.NewNopLogger()))
	require.IsType(t, NoOpMaintenance{},
		NewMaintenanceCoordinator("x", nil, &config.MaintenanceConfig{Enabled: false}, logger.NewNopLogger()))
}

func TestRunMaintenance_JournalModes(t *testing.T) {
	for _, mode := range []string{"WAL", "TRUNCATE"} {
		t.Run(mode, func(t *testing.T) {
			m, dbPath := setupMaintenanceDB(t, mode)

			require.NoError(t, m.RunMaintenance(context.Background()))

			stats := m.Stats()
			require.Equal(t, uint64(1), stats.Runs)
			require.NoError(t, stats.LastError)
			require.WithinDuration(t, time.Now().UTC(), stats.LastRun, time.Minute)
			require.GreaterOrEqual(t, stats.ReclaimedBytes, int64(0))

			size, err := DBTotalSize(dbPath)
			require.NoError(t, err)
			require.Positive(t, size)
		})
	}
}

func TestRunMaintenance_WaitsForOperations(t *testing.T) {
	m, _ := setupMaintenanceDB(t, "WAL")

	unlock := m.AcquireOperationLock()

	done := make(chan error, 1)
	go func() { done <- m.RunMaintenance(context.Background()) }()

	select {
	case <-done:
		t.Fatal("maintenance ran while an operation held the lock")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	require.NoError(t, <-done)
}

func TestRunMaintenance_CancelledContext(t *testing.T) {
	m, _ := setupMaintenanceDB(t, "WAL")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.RunMaintenance(ctx), context.Canceled)
}

func TestMaintenanceReport_Reclaimed(t *testing.T) {
	require.Equal(t, int64(100), maintenanceReport{sizeBefore: 300, sizeAfter: 200}.reclaimed())
	require.Zero(t, maintenanceReport{sizeBefore: 200, sizeAfter: 300}.reclaimed())
}
