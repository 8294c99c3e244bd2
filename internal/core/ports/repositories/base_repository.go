package repositories

import (
	"context"
)

// Store groups the repositories of the kernel. A Store handed out by
// TransactionManager.WithinTx is bound to that transaction; every read and
// write through it commits or rolls back together.
type Store interface {
	Accounts() AccountRepositoryFacade
	Movements() MovementRepositoryFacade
	Requests() RequestRepositoryFacade
	Statements() StatementRepositoryFacade
	ExpenseLines() ExpenseLineRepositoryFacade
	Payments() PaymentRepositoryFacade
	Receipts() ReceiptRepositoryFacade
	Cheques() ChequeRepositoryFacade
	Closings() ClosingRepositoryFacade
	References() ReferenceRepository
	Journal() JournalRepositoryFacade
}

// TxFunc is the body of a transaction. Returning an error rolls back.
type TxFunc func(ctx context.Context, tx Store) error

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn inside exactly one transaction. Row locks taken through
	// the ...ForUpdate finders are held until fn returns. A context deadline
	// or cancellation aborts the transaction with no persisted effect.
	WithinTx(ctx context.Context, fn TxFunc) error

	// Reader returns a non-transactional Store for queries.
	Reader() Store
}
