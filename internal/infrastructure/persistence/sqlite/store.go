// Package sqlite provides SQLite-backed implementations of domain repositories.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/defimport/internal/application/ports"
	_ "modernc.org/sqlite"
)

// Ensure interface compliance
var _ ports.TransactionManager = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS definition_content (
	identifier TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_definition_content_file ON definition_content(file_name);

CREATE TABLE IF NOT EXISTS definition (
	identifier TEXT PRIMARY KEY,
	parent_id TEXT,
	type TEXT,
	is_abstract INTEGER NOT NULL DEFAULT 0,
	revision INTEGER NOT NULL,
	modified_on TEXT NOT NULL,
	body JSON NOT NULL
);

CREATE TABLE IF NOT EXISTS label (
	id TEXT PRIMARY KEY,
	defined_in TEXT,
	body JSON NOT NULL
);

CREATE TABLE IF NOT EXISTS filter (
	id TEXT PRIMARY KEY,
	defined_in TEXT,
	body JSON NOT NULL
);
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and implements transactions.
//
// SQLite allows a single writer, so an independent transaction started
// while another is active runs as a savepoint of the active one and is
// released immediately. If the outer transaction later rolls back, the
// savepoint's work is undone with it before compensations run; compensations
// must therefore be idempotent.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type txKey struct{}

type transaction struct {
	tx            *sql.Tx
	compensations []func(context.Context) error
	savepoints    int
	mu            sync.Mutex
}

func currentTx(ctx context.Context) *transaction {
	tx, _ := ctx.Value(txKey{}).(*transaction)
	return tx
}

func (s *Store) q(ctx context.Context) querier {
	if tx := currentTx(ctx); tx != nil {
		return tx.tx
	}
	return s.db
}

// InTransaction runs fn in the active transaction, or in a new one when
// none is active.
func (s *Store) InTransaction(ctx context.Context, fn func(context.Context) error) error {
	if currentTx(ctx) != nil {
		return fn(ctx)
	}
	return s.run(ctx, fn, true)
}

// InNewTransaction runs fn in its own transaction when none is active.
// Inside an active transaction fn runs as a savepoint that is released on
// return; the connection has a single writer, so the work still commits or
// rolls back with the outer transaction.
func (s *Store) InNewTransaction(ctx context.Context, fn func(context.Context) error) error {
	tx := currentTx(ctx)
	if tx == nil {
		return s.run(ctx, fn, false)
	}

	tx.mu.Lock()
	tx.savepoints++
	name := fmt.Sprintf("sp_%d", tx.savepoints)
	tx.mu.Unlock()

	if _, err := tx.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	if err := fn(ctx); err != nil {
		if _, rerr := tx.tx.ExecContext(ctx, "ROLLBACK TO "+name); rerr != nil {
			return errors.Join(err, fmt.Errorf("rollback savepoint: %w", rerr))
		}
		_, _ = tx.tx.ExecContext(ctx, "RELEASE "+name)
		return err
	}
	if _, err := tx.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// OnRollback registers fn to run after the active transaction rolls back.
func (s *Store) OnRollback(ctx context.Context, fn func(context.Context) error) error {
	tx := currentTx(ctx)
	if tx == nil {
		return errors.New("no active transaction")
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.compensations = append(tx.compensations, fn)
	return nil
}

// run executes fn in a new database transaction, retrying the whole unit
// while another process holds the write lock.
func (s *Store) run(ctx context.Context, fn func(context.Context) error, compensate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryBusy(ctx, func() error {
		return s.runOnce(ctx, fn, compensate)
	})
}

func (s *Store) runOnce(ctx context.Context, fn func(context.Context) error, compensate bool) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &transaction{tx: sqlTx}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rerr := sqlTx.Rollback(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		if !compensate {
			return err
		}
		return errors.Join(err, s.compensate(ctx, tx))
	}

	if err := sqlTx.Commit(); err != nil {
		return errors.Join(fmt.Errorf("commit: %w", err), s.compensate(ctx, tx))
	}
	return nil
}

// compensate runs the registered compensations in reverse order, each
// outside any transaction.
func (s *Store) compensate(ctx context.Context, tx *transaction) error {
	tx.mu.Lock()
	compensations := tx.compensations
	tx.compensations = nil
	tx.mu.Unlock()

	var errs []error
	for i := len(compensations) - 1; i >= 0; i-- {
		if err := compensations[i](ctx); err != nil {
			s.logger.Error("compensation failed", "error", err)
			errs = append(errs, fmt.Errorf("compensation failed: %w", err))
		}
	}
	return errors.Join(errs...)
}
