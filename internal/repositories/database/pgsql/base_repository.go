package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/observability/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// TxManager implements portsrepo.TransactionManager on a pgx pool.
type TxManager struct {
	BaseRepository
	timeout    time.Duration
	maxRetries int
}

var _ portsrepo.TransactionManager = (*TxManager)(nil)

// NewTxManager bounds every transaction by timeout and retries serialization
// failures and deadlocks up to maxRetries times.
func NewTxManager(pool *pgxpool.Pool, timeout time.Duration, maxRetries int) *TxManager {
	return &TxManager{BaseRepository: BaseRepository{Pool: pool}, timeout: timeout, maxRetries: maxRetries}
}

// WithinTx runs fn in one transaction, retrying it from scratch when
// PostgreSQL aborts the attempt with a retryable error.
func (m *TxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil || attempt >= m.maxRetries || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		metrics.IncTxRetry()
		slog.WarnContext(ctx, "Retrying transaction", slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
	}
}

func (m *TxManager) runOnce(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := m.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
				slog.ErrorContext(ctx, "Failed to rollback transaction", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = fn(ctx, newStore(tx)); err != nil {
		return err
	}
	// A deadline that expired while fn ran aborts the commit.
	if err = ctx.Err(); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

// Reader returns a Store that runs each query on its own pooled connection.
func (m *TxManager) Reader() portsrepo.Store {
	return newStore(m.Pool)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// uniqueViolation returns the violated constraint name when err is a 23505.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// notFoundOr maps pgx.ErrNoRows to apperrors.ErrNotFound and wraps anything else.
func notFoundOr(err error, what, key string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, what, key)
	}
	return fmt.Errorf("failed to find %s %s: %w", what, key, err)
}

// expectOne turns an UPDATE that touched no row into apperrors.ErrNotFound.
func expectOne(tag pgconn.CommandTag, what, key string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, what, key)
	}
	return nil
}

// where accumulates positional predicates for list queries.
type where struct {
	conds []string
	args  []any
}

// add appends cond, replacing "?" with the next placeholder.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

// clause renders " WHERE a AND b" or "".
func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limit appends a LIMIT placeholder when n is positive.
func (w *where) limit(n int) string {
	if n <= 0 {
		return ""
	}
	w.args = append(w.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(w.args))
}
