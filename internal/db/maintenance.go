package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
)

// Maintenance runs SQLite housekeeping and keeps it apart from regular database operations.
type Maintenance interface {
	// AcquireOperationLock takes the shared side of the maintenance lock and returns its release.
	AcquireOperationLock() func()
	// RunMaintenance checkpoints the WAL and vacuums the database with exclusive access.
	RunMaintenance(ctx context.Context) error
	// Stats returns what the previous runs did.
	Stats() MaintenanceStats
}

// MaintenanceStats summarizes the maintenance runs of this process.
type MaintenanceStats struct {
	Runs           uint64
	LastRun        time.Time
	LastError      error
	ReclaimedBytes int64
}

// NoOpMaintenance is used when maintenance is disabled.
type NoOpMaintenance struct{}

func (NoOpMaintenance) AcquireOperationLock() func()         { return func() {} }
func (NoOpMaintenance) RunMaintenance(context.Context) error { return nil }
func (NoOpMaintenance) Stats() MaintenanceStats              { return MaintenanceStats{} }

// MaintenanceCoordinator serializes maintenance against store transactions. Transactions hold
// the read side of opLock and maintenance the write side, so VACUUM never runs mid batch.
type MaintenanceCoordinator struct {
	db     *sql.DB
	dbPath string
	mode   string
	log    *logger.Logger

	opLock sync.RWMutex

	statsMu sync.Mutex
	stats   MaintenanceStats
}

// NewMaintenanceCoordinator returns a coordinator, or a NoOpMaintenance when cfg is nil or
// disabled.
func NewMaintenanceCoordinator(dbPath string, db *sql.DB, cfg *config.MaintenanceConfig,
	log *logger.Logger) Maintenance {
	if cfg == nil || !cfg.Enabled {
		return NoOpMaintenance{}
	}

	return &MaintenanceCoordinator{
		db:     db,
		dbPath: dbPath,
		mode:   strings.ToUpper(cfg.WALCheckpointMode),
		log:    log,
	}
}

// AcquireOperationLock implements Maintenance.
func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	m.opLock.RLock()
	return m.opLock.RUnlock
}

// RunMaintenance implements Maintenance. Both steps are attempted; the first failure is
// returned.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	m.opLock.Lock()
	defer m.opLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	report := maintenanceReport{started: time.Now().UTC()}
	report.sizeBefore, _ = DBTotalSize(m.dbPath)

	report.err = errors.Join(
		wrapStep("wal checkpoint", m.checkpoint(ctx)),
		wrapStep("vacuum", m.vacuum(ctx)),
	)

	report.sizeAfter, _ = DBTotalSize(m.dbPath)
	report.duration = time.Since(report.started)

	m.statsMu.Lock()
	m.stats.Runs++
	m.stats.LastRun = report.started
	m.stats.LastError = report.err
	m.stats.ReclaimedBytes += report.reclaimed()
	m.statsMu.Unlock()

	recordMaintenance(report)

	if report.err != nil {
		m.log.Errorw("database maintenance failed", "duration", report.duration, "error", report.err)
		return report.err
	}

	m.log.Infow("database maintenance done",
		"duration", report.duration,
		"size_bytes", report.sizeAfter,
		"reclaimed_bytes", report.reclaimed(),
	)
	return nil
}

// Stats implements Maintenance.
func (m *MaintenanceCoordinator) Stats() MaintenanceStats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

func (m *MaintenanceCoordinator) checkpoint(ctx context.Context) error {
	var journal string
	if err := m.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
		return fmt.Errorf("read journal mode: %w", err)
	}
	if !strings.EqualFold(journal, "wal") {
		m.log.Debugw("skipping wal checkpoint", "journal_mode", journal)
		return nil
	}

	var busy, frames, checkpointed int
	row := m.db.QueryRowContext(ctx, "PRAGMA wal_checkpoint("+m.mode+")")
	if err := row.Scan(&busy, &frames, &checkpointed); err != nil {
		return err
	}
	recordStep("checkpoint_" + strings.ToLower(m.mode))

	if busy != 0 {
		m.log.Warnw("wal checkpoint could not finish", "frames", frames, "checkpointed", checkpointed)
	}
	return nil
}

func (m *MaintenanceCoordinator) vacuum(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "VACUUM"); err != nil {
		return err
	}
	recordStep("vacuum")
	return nil
}

func wrapStep(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", step, err)
}
