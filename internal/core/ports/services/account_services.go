package services

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/dto"
)

// AccountReaderSvc defines read operations for bank accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error)

	// GetAccountBalance returns the current balance of an account.
	GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalanceResponse, error)

	// ListAccounts retrieves a page of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)

	// ListMovements retrieves a page of an account's movements in posting order.
	ListMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)

	// VerifyAccount recomputes initial + signed movements and reports any drift.
	VerifyAccount(ctx context.Context, accountID string) (*dto.AccountVerification, error)
}

// AccountWriterSvc defines write operations for bank accounts
type AccountWriterSvc interface {
	// OpenAccount creates an active account with its initial balance.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest, actor string) (*domain.BankAccount, error)

	// DeactivateAccount marks an account as inactive. Inactive accounts refuse movements.
	DeactivateAccount(ctx context.Context, accountID string, actor string) error

	// ReverseMovement posts the opposite of a movement. A movement can be reversed once.
	ReverseMovement(ctx context.Context, movementID string, actor string) (*domain.Movement, []domain.Warning, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// LedgerSvc posts movements inside a caller-owned transaction. It is the only
// path through which an account balance changes.
type LedgerSvc interface {
	// Credit adds amount to the account.
	Credit(ctx context.Context, tx portsrepo.Store, accountID string, amount domain.Amount, cause domain.MovementCause, causeRef string, actor string) (*domain.Movement, []domain.Warning, error)

	// Debit subtracts amount from the account. Crossing zero yields an overdraft
	// warning, or apperrors.ErrInsufficientFunds when overdraft is disabled.
	Debit(ctx context.Context, tx portsrepo.Store, accountID string, amount domain.Amount, cause domain.MovementCause, causeRef string, actor string) (*domain.Movement, []domain.Warning, error)

	// Reverse posts the opposite of movementID with cause reversal.
	Reverse(ctx context.Context, tx portsrepo.Store, movementID string, actor string) (*domain.Movement, []domain.Warning, error)

	// SelectAccount picks the active account of the currency at bank, locking nothing.
	SelectAccount(ctx context.Context, tx portsrepo.Store, bank string, currency domain.Currency) (*domain.BankAccount, error)

	// VerifyAccount checks current = initial + signed movements.
	VerifyAccount(ctx context.Context, store portsrepo.Store, accountID string) (*dto.AccountVerification, error)
}
