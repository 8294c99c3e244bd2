package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// StatementFilter narrows ListStatements.
type StatementFilter struct {
	Year        int
	Sealed      *bool
	Settled     *bool
	AfterNumber string
	Limit       int
}

// StatementReader defines read operations for statements. Returned
// statements always carry their member references.
type StatementReader interface {
	FindStatementByNumber(ctx context.Context, number string) (*domain.Statement, error)
	FindStatementByPeriod(ctx context.Context, period domain.Period) (*domain.Statement, error)

	// FindStatementByMember returns the statement a request is attached to, or apperrors.ErrNotFound.
	FindStatementByMember(ctx context.Context, requestRef string) (*domain.Statement, error)

	ListStatements(ctx context.Context, filter StatementFilter) ([]domain.Statement, error)
}

// StatementWriter defines write operations for statements
type StatementWriter interface {
	// SaveStatement inserts a statement. Returns apperrors.ErrDuplicate when the period already has one.
	SaveStatement(ctx context.Context, statement domain.Statement) error

	// UpdateStatement writes scalar fields. Membership only grows, through AddMembers.
	UpdateStatement(ctx context.Context, statement domain.Statement) error

	// AddMembers attaches requests. Returns apperrors.ErrMembershipConflict when any
	// of them is already attached to a statement; nothing is attached in that case.
	AddMembers(ctx context.Context, number string, requestRefs []string) error
}

// StatementTransactionSupport defines locking reads for statements
type StatementTransactionSupport interface {
	FindStatementByNumberForUpdate(ctx context.Context, number string) (*domain.Statement, error)
}

// StatementRepositoryFacade combines all statement repository interfaces
type StatementRepositoryFacade interface {
	StatementReader
	StatementWriter
	StatementTransactionSupport
}

// ExpenseLineRepositoryFacade stores the immutable lines minted at sealing.
type ExpenseLineRepositoryFacade interface {
	SaveExpenseLines(ctx context.Context, lines []domain.ExpenseLine) error
	ListExpenseLinesByStatement(ctx context.Context, number string) ([]domain.ExpenseLine, error)

	// SumExpenseLines totals the lines of a period per currency.
	SumExpenseLines(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error)
}
