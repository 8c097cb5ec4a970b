// Package memory provides in-memory implementations of domain repositories.
// Useful for testing and ephemeral storage.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reglet-dev/defimport/internal/application/ports"
)

// Ensure interface compliance
var _ ports.TransactionManager = (*Store)(nil)

const (
	tableContents    = "definition_content"
	tableDefinitions = "definition"
	tableLabels      = "label"
	tableFilters     = "filter"
)

// Store holds the committed rows of every table and implements transactions
// on top of them. Writes made inside a transaction are kept in a change log
// and applied on commit; rollback discards the log and then runs the
// registered compensations.
type Store struct {
	tables map[string]map[string]any
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		tables: map[string]map[string]any{
			tableContents:    {},
			tableDefinitions: {},
			tableLabels:      {},
			tableFilters:     {},
		},
		logger: logger,
	}
}

type txKey struct{}

type change struct {
	value   any
	deleted bool
}

type transaction struct {
	changes       map[string]map[string]change
	compensations []func(context.Context) error
	// outer is the transaction that was active when an independent one
	// started. Compensations are always registered on the outermost one.
	outer         *transaction
	mu            sync.Mutex
}

func newTransaction() *transaction {
	return &transaction{changes: make(map[string]map[string]change)}
}

func currentTx(ctx context.Context) *transaction {
	tx, _ := ctx.Value(txKey{}).(*transaction)
	return tx
}

// InTransaction runs fn in the active transaction, or in a new one when
// none is active.
func (s *Store) InTransaction(ctx context.Context, fn func(context.Context) error) error {
	if currentTx(ctx) != nil {
		return fn(ctx)
	}
	return s.run(ctx, fn, true)
}

// InNewTransaction runs fn in an independent transaction that commits as
// soon as fn returns, regardless of any active transaction.
func (s *Store) InNewTransaction(ctx context.Context, fn func(context.Context) error) error {
	return s.run(ctx, fn, false)
}

// OnRollback registers fn to run after the active transaction rolls back.
func (s *Store) OnRollback(ctx context.Context, fn func(context.Context) error) error {
	tx := currentTx(ctx)
	if tx == nil {
		return errors.New("no active transaction")
	}
	for tx.outer != nil {
		tx = tx.outer
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.compensations = append(tx.compensations, fn)
	return nil
}

func (s *Store) run(ctx context.Context, fn func(context.Context) error, compensate bool) error {
	tx := newTransaction()
	if !compensate {
		tx.outer = currentTx(ctx)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if !compensate {
			return err
		}
		return errors.Join(err, s.rollback(ctx, tx))
	}
	s.commit(tx)
	return nil
}

func (s *Store) commit(tx *transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for table, changes := range tx.changes {
		for key, c := range changes {
			if c.deleted {
				delete(s.tables[table], key)
			} else {
				s.tables[table][key] = c.value
			}
		}
	}
}

// rollback runs compensations in reverse registration order outside any
// transaction.
func (s *Store) rollback(ctx context.Context, tx *transaction) error {
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

func (s *Store) get(ctx context.Context, table, key string) (any, bool) {
	if tx := currentTx(ctx); tx != nil {
		tx.mu.Lock()
		c, ok := tx.changes[table][key]
		tx.mu.Unlock()
		if ok {
			return c.value, !c.deleted
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tables[table][key]
	return v, ok
}

func (s *Store) put(ctx context.Context, table, key string, value any) {
	s.write(ctx, table, key, change{value: value})
}

func (s *Store) remove(ctx context.Context, table, key string) {
	s.write(ctx, table, key, change{deleted: true})
}

func (s *Store) write(ctx context.Context, table, key string, c change) {
	if tx := currentTx(ctx); tx != nil {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		if tx.changes[table] == nil {
			tx.changes[table] = make(map[string]change)
		}
		tx.changes[table][key] = c
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c.deleted {
		delete(s.tables[table], key)
	} else {
		s.tables[table][key] = c.value
	}
}

// all returns the rows of table visible from ctx, ordered by key.
func (s *Store) all(ctx context.Context, table string) []any {
	rows := make(map[string]any)
	s.mu.RLock()
	for k, v := range s.tables[table] {
		rows[k] = v
	}
	s.mu.RUnlock()

	if tx := currentTx(ctx); tx != nil {
		tx.mu.Lock()
		for k, c := range tx.changes[table] {
			if c.deleted {
				delete(rows, k)
			} else {
				rows[k] = c.value
			}
		}
		tx.mu.Unlock()
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, rows[k])
	}
	return out
}
