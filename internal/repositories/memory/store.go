// Package memory is an in-process implementation of the kernel store.
//
// Transactions are serialised by a single writer lock: WithinTx works on a
// private copy of the state and publishes it only when the body succeeds and
// the context is still live. Readers see the last committed state.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

type state struct {
	accounts     map[string]domain.BankAccount
	movements    map[string]domain.Movement
	movementLog  []string // Movement IDs in append order
	requests     map[string]domain.Request
	statements   map[string]domain.Statement
	members      map[string]string // request ref -> statement number
	expenseLines []domain.ExpenseLine
	payments     map[string]domain.Payment
	receipts     map[string]domain.Receipt
	cheques      map[string]domain.Cheque
	closings     map[domain.Period]domain.Closing
	counters     map[string]int64
	journal      []domain.JournalEntry
}

func newState() *state {
	return &state{
		accounts:   make(map[string]domain.BankAccount),
		movements:  make(map[string]domain.Movement),
		requests:   make(map[string]domain.Request),
		statements: make(map[string]domain.Statement),
		members:    make(map[string]string),
		payments:   make(map[string]domain.Payment),
		receipts:   make(map[string]domain.Receipt),
		cheques:    make(map[string]domain.Cheque),
		closings:   make(map[domain.Period]domain.Closing),
		counters:   make(map[string]int64),
	}
}

// clone copies every collection. Slices held inside entities are replaced,
// never appended to in place, so sharing them between copies is safe.
func (s *state) clone() *state {
	return &state{
		accounts:     maps.Clone(s.accounts),
		movements:    maps.Clone(s.movements),
		movementLog:  slices.Clone(s.movementLog),
		requests:     maps.Clone(s.requests),
		statements:   maps.Clone(s.statements),
		members:      maps.Clone(s.members),
		expenseLines: slices.Clone(s.expenseLines),
		payments:     maps.Clone(s.payments),
		receipts:     maps.Clone(s.receipts),
		cheques:      maps.Clone(s.cheques),
		closings:     maps.Clone(s.closings),
		counters:     maps.Clone(s.counters),
		journal:      slices.Clone(s.journal),
	}
}

// DB is the in-memory database. The zero value is not usable; call New.
type DB struct {
	mu sync.RWMutex
	st *state
}

// New returns an empty database.
func New() *DB {
	return &DB{st: newState()}
}

var _ portsrepo.TransactionManager = (*DB)(nil)

// WithinTx runs fn against a private copy of the state and commits it on success.
func (db *DB) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.st.clone()
	tx := &store{rlock: noopLocker{}, wlock: noopLocker{}, current: func() *state { return work }}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// A deadline that expired while fn ran aborts the commit.
	if err := ctx.Err(); err != nil {
		return err
	}
	db.st = work
	return nil
}

// Reader returns a view over committed state. Do not call it from inside WithinTx.
func (db *DB) Reader() portsrepo.Store {
	return &store{rlock: db.mu.RLocker(), wlock: &db.mu, current: func() *state { return db.st }}
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// store implements every repository facade over one state.
type store struct {
	rlock   sync.Locker
	wlock   sync.Locker
	current func() *state
}

var _ portsrepo.Store = (*store)(nil)

func (s *store) Accounts() portsrepo.AccountRepositoryFacade         { return s }
func (s *store) Movements() portsrepo.MovementRepositoryFacade       { return s }
func (s *store) Requests() portsrepo.RequestRepositoryFacade         { return s }
func (s *store) Statements() portsrepo.StatementRepositoryFacade     { return s }
func (s *store) ExpenseLines() portsrepo.ExpenseLineRepositoryFacade { return s }
func (s *store) Payments() portsrepo.PaymentRepositoryFacade         { return s }
func (s *store) Receipts() portsrepo.ReceiptRepositoryFacade         { return s }
func (s *store) Cheques() portsrepo.ChequeRepositoryFacade           { return s }
func (s *store) Closings() portsrepo.ClosingRepositoryFacade         { return s }
func (s *store) References() portsrepo.ReferenceRepository           { return s }
func (s *store) Journal() portsrepo.JournalRepositoryFacade          { return s }

// read runs fn with the state under the store's read lock.
func (s *store) read(fn func(st *state)) {
	s.rlock.Lock()
	defer s.rlock.Unlock()
	fn(s.current())
}

// write runs fn with the state under the store's write lock.
func (s *store) write(fn func(st *state)) {
	s.wlock.Lock()
	defer s.wlock.Unlock()
	fn(s.current())
}

// page sorts keys, drops those not after the cursor and applies the limit.
func page[T any](items map[string]T, after string, limit int, keep func(T) bool) []T {
	keys := slices.Sorted(maps.Keys(items))
	out := make([]T, 0)
	for _, k := range keys {
		if after != "" && k <= after {
			continue
		}
		v := items[k]
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
