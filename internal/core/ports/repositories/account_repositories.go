package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountFilter narrows ListAccounts. Zero values mean "any".
type AccountFilter struct {
	Bank       string
	Currency   domain.Currency
	ActiveOnly bool
	AfterID    string // Keyset cursor on account_id
	Limit      int
}

// AccountReader defines read operations for bank accounts
type AccountReader interface {
	// FindAccountByID retrieves an account. Returns apperrors.ErrNotFound when missing.
	FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)

	// ListAccounts returns accounts ordered by account_id.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.BankAccount, error)
}

// AccountWriter defines write operations for bank accounts
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the (bank, account number) pair is taken.
	SaveAccount(ctx context.Context, account domain.BankAccount) error

	// UpdateAccount writes balance, last movement, active flag and version when the
	// stored version still equals expectedVersion; otherwise it returns apperrors.ErrConflict.
	UpdateAccount(ctx context.Context, account domain.BankAccount, expectedVersion int64) error
}

// AccountTransactionSupport defines operations that lock account rows
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate retrieves an account and locks its row until the transaction ends.
	FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// MovementReader defines read operations for ledger movements
type MovementReader interface {
	FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error)

	// ListMovements returns movements of an account with Sequence > afterSeq in posting order.
	ListMovements(ctx context.Context, accountID string, afterSeq int64, limit int) ([]domain.Movement, error)

	// FindMovementsByCause returns every movement posted for a business reference.
	FindMovementsByCause(ctx context.Context, cause domain.MovementCause, causeRef string) ([]domain.Movement, error)

	// FindReversalOf returns the movement reversing movementID, or apperrors.ErrNotFound.
	FindReversalOf(ctx context.Context, movementID string) (*domain.Movement, error)

	// SumSignedMovements returns the signed sum and count of an account's movements.
	SumSignedMovements(ctx context.Context, accountID string) (decimal.Decimal, int64, error)
}

// MovementWriter appends movements. There is no update or delete.
type MovementWriter interface {
	// SaveMovement appends a movement. A second reversal of the same movement returns apperrors.ErrDuplicate.
	SaveMovement(ctx context.Context, movement domain.Movement) error
}

// MovementRepositoryFacade combines movement reads and appends
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
}
