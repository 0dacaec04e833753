package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	downMarker = "-- +migrate Down"
	upMarker   = "-- +migrate Up"
)

// Migration is one schema change. SQL holds an optional "-- +migrate Down" section followed
// by a "-- +migrate Up" section.
type Migration struct {
	ID  string
	SQL string
}

func (m Migration) toSQLMigrate() (*migrate.Migration, error) {
	down, up, found := strings.Cut(m.SQL, upMarker)
	if !found {
		return nil, fmt.Errorf("migration %s missing %q section", m.ID, upMarker)
	}

	down = strings.TrimSpace(strings.Replace(down, downMarker, "", 1))
	up = strings.TrimSpace(up)
	if up == "" {
		return nil, fmt.Errorf("migration %s has an empty up section", m.ID)
	}

	out := &migrate.Migration{Id: m.ID, Up: []string{up}}
	if down != "" {
		out.Down = []string{down}
	}
	return out, nil
}

func migrationSource(migrations []Migration) (*migrate.MemoryMigrationSource, []string, error) {
	source := &migrate.MemoryMigrationSource{}
	ids := make([]string, 0, len(migrations))
	for _, m := range migrations {
		mig, err := m.toSQLMigrate()
		if err != nil {
			return nil, nil, err
		}
		source.Migrations = append(source.Migrations, mig)
		ids = append(ids, m.ID)
	}
	return source, ids, nil
}

// RunMigrations opens the database at dbPath and applies every pending migration.
func RunMigrations(dbPath string, migrations []Migration) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer db.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), db, migrations)
}

// RunMigrationsDB applies every pending migration on an open database.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	_, err := MigrateDB(log, db, migrations, migrate.Up, 0)
	return err
}

// MigrateDB applies at most limit migrations (0 = all) in the given direction and returns
// how many were applied.
func MigrateDB(log *logger.Logger, db *sql.DB, migrations []Migration,
	dir migrate.MigrationDirection, limit int) (int, error) {
	source, ids, err := migrationSource(migrations)
	if err != nil {
		return 0, err
	}

	direction := "up"
	if dir == migrate.Down {
		direction = "down"
	}

	log.Debugw("running migrations", "direction", direction, "limit", limit, "known", ids)

	applied, err := migrate.ExecMax(db, "sqlite3", source, dir, limit)
	if err != nil {
		return applied, fmt.Errorf("failed to migrate %s (applied %d of %v): %w", direction, applied, ids, err)
	}

	if applied > 0 {
		log.Infow("migrations applied", "direction", direction, "count", applied)
	}
	return applied, nil
}
