package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

func init() {
	meddler.Default = meddler.SQLite
}

// dsn builds a go-sqlite3 connection string. Options are passed as DSN parameters so every
// pooled connection gets them, not only the one a PRAGMA statement happens to run on.
func dsn(path string, cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", cfg.JournalMode)
	params.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout))
	if cfg.Synchronous != "" {
		params.Set("_synchronous", cfg.Synchronous)
	}
	if cfg.CacheSize != 0 {
		params.Set("_cache_size", strconv.Itoa(cfg.CacheSize))
	}
	return "file:" + path + "?" + params.Encode()
}

// NewSQLiteDB opens the database at dbPath with the default settings.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	cfg := config.DatabaseConfig{Path: dbPath}
	cfg.ApplyDefaults()
	return sql.Open("sqlite3", dsn(dbPath, cfg))
}

// NewSQLiteDBFromConfig opens the configured database and sizes its connection pool.
// Foreign keys are always enforced.
func NewSQLiteDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(cfg.Path, cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	return db, nil
}

// DBTotalSize returns the size in bytes of the database file plus its WAL and shared memory
// files. Missing side files count as empty.
func DBTotalSize(dbPath string) (int64, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, err
	}
	total := info.Size()

	for _, side := range []string{dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(side)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return 0, err
		default:
			total += info.Size()
		}
	}
	return total, nil
}
