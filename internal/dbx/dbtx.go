// Package dbx holds the database/sql plumbing shared by the PostgreSQL
// credential store: the DBTX handle both *sql.DB and *sql.Tx satisfy, the
// unit-of-work runner behind registration, and the SQLSTATE checks that
// turn driver errors into domain errors.
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// DBTX is the subset of database/sql the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner starts transactions. *sql.DB implements it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxFunc is one unit of work against a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

type txConfig struct {
	opts    sql.TxOptions
	retries int
}

// TxOption tunes a WithTx call.
type TxOption func(*txConfig)

// WithIsolation sets the isolation level of the transaction.
func WithIsolation(level sql.IsolationLevel) TxOption {
	return func(c *txConfig) { c.opts.Isolation = level }
}

// WithRetries reruns the whole unit up to n more times when PostgreSQL
// aborts it with a serialization failure.
func WithRetries(n int) TxOption {
	return func(c *txConfig) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithTx runs fn in a transaction on db and commits if fn returns nil.
//
// Contract:
//   - fn's error, a failed commit and a panic all roll back; the panic is
//     re-raised after rollback.
//   - a serialization failure (40001) reruns fn from the start in a new
//     transaction while retries remain and ctx is live, so fn must not keep
//     side effects outside tx.
//   - a unique violation, whether from a statement or from a deferred
//     constraint at commit, comes back wrapping common.ErrAlreadyExists.
func WithTx(ctx context.Context, db Beginner, fn TxFunc, opts ...TxOption) error {
	cfg := txConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = runOnce(ctx, db, &cfg.opts, fn)
		if err == nil || !IsSerializationFailure(err) || attempt >= cfg.retries || ctx.Err() != nil {
			break
		}
	}

	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", common.ErrAlreadyExists, err)
	}
	return err
}

func runOnce(ctx context.Context, db Beginner, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("dbx: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("dbx: commit: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
