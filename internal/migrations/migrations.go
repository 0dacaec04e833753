// Package migrations holds the SQLite schema of the indexer.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/goran-ethernal/SafeIndexor/internal/db"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed *.sql
var files embed.FS

// All returns the schema migrations in application order. File names start with a zero
// padded sequence number, so lexical order is application order.
func All() []db.Migration {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		panic(fmt.Sprintf("invalid migration glob: %v", err))
	}

	out := make([]db.Migration, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("embedded migration %s: %v", name, err))
		}
		out = append(out, db.Migration{ID: path.Base(name), SQL: string(data)})
	}
	return out
}

// RunMigrations opens the database at dbPath and applies pending migrations.
func RunMigrations(dbPath string) error {
	return db.RunMigrations(dbPath, All())
}

// RunMigrationsDB applies pending migrations on an open database.
func RunMigrationsDB(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrationsDB(log, database, All())
}

// Rollback reverts the last steps migrations of the database at dbPath.
func Rollback(log *logger.Logger, dbPath string, steps int) (int, error) {
	if steps < 1 {
		return 0, fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer database.Close()

	return db.MigrateDB(log, database, All(), migrate.Down, steps)
}
