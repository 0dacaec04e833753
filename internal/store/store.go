package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goran-ethernal/SafeIndexor/internal/db"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

// ErrNotFound is returned by lookups of a single row that does not exist.
var ErrNotFound = errors.New("not found")

// Store is the relational repository of the indexer. Reads run directly on the database,
// writes run inside Update.
type Store struct {
	db          *sql.DB
	maintenance db.Maintenance
	log         *logger.Logger
}

// New creates a store on an already migrated database.
func New(database *sql.DB, maintenance db.Maintenance, log *logger.Logger) *Store {
	if maintenance == nil {
		maintenance = db.NoOpMaintenance{}
	}

	return &Store{
		db:          database,
		maintenance: maintenance,
		log:         log,
	}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Read returns a Tx running every statement directly on the database.
func (s *Store) Read() *Tx {
	return &Tx{q: s.db}
}

// Update runs fn inside a database transaction. The transaction is committed when fn returns
// nil and rolled back otherwise. It holds the maintenance operation lock for its whole duration.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	unlock := s.maintenance.AcquireOperationLock()
	defer unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.log.Errorf("failed to rollback transaction: %v", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Tx groups the repository operations. It either wraps a database transaction (Update)
// or the database itself (Read).
type Tx struct {
	q meddler.DB
}

// insertIgnore inserts record into table and reports false when a row with the same unique
// key already exists.
func (t *Tx) insertIgnore(table string, record any) (bool, error) {
	err := meddler.Insert(t.q, table, record)
	if err == nil {
		return true, nil
	}

	driverErr, _ := meddler.DriverErr(err)

	var sqliteErr sqlite3.Error
	if errors.As(driverErr, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return false, nil
	}

	return false, fmt.Errorf("failed to insert into %s: %w", table, err)
}

// exec runs a statement and returns the number of affected rows.
func (t *Tx) exec(query string, args ...any) (int64, error) {
	res, err := t.q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// inClause renders "(?, ?, ...)" for n placeholders. n must be positive.
func inClause(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

// hexArgs converts values to their hex representation for use as query arguments.
func hexArgs[T interface{ Hex() string }](values []T) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Hex()
	}
	return args
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
