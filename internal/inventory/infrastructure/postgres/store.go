package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"vendfleet/internal/inventory/application"
	inventory "vendfleet/internal/inventory/domain"
)

const defaultLockTimeout = 3 * time.Second

// Store runs atomic units of work against Postgres. Row-level serialization
// comes from SELECT ... FOR UPDATE inside the unit: two operations on the
// same stock entry or account queue up on the row lock, while distinct rows
// proceed in parallel. A lock wait longer than the configured timeout aborts
// the transaction and surfaces as a retryable conflict.
type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithLockTimeout overrides the per-transaction lock timeout.
func WithLockTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// NewStore constructs a store.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	store := &Store{db: db, lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// InTx runs fn inside one database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx application.Tx) error) error {
	if s == nil || s.db == nil {
		return errors.New("store: nil db")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback()
		return mapError(err)
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError translates storage-level failures into domain sentinels. Business
// errors pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40P01", "40001":
			return fmt.Errorf("%w: %v", inventory.ErrConcurrencyConflict, err)
		case "23505", "23503":
			return fmt.Errorf("%w: %v", inventory.ErrConstraintViolation, err)
		}
	}
	return err
}
