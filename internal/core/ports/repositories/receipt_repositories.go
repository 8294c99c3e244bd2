package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// ReceiptFilter narrows ListReceipts. Deleted receipts are hidden unless IncludeDeleted.
type ReceiptFilter struct {
	Bank           string
	Validated      *bool
	Period         *domain.Period // Encashment period
	IncludeDeleted bool
	AfterRef       string
	Limit          int
}

// ReceiptReader defines read operations for receipts
type ReceiptReader interface {
	FindReceiptByRef(ctx context.Context, ref string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]domain.Receipt, error)

	// SumValidatedReceipts totals validated, non-deleted receipts encashed in the period.
	SumValidatedReceipts(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error)
}

// ReceiptWriter defines write operations for receipts
type ReceiptWriter interface {
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error
	UpdateReceipt(ctx context.Context, receipt domain.Receipt) error
}

// ReceiptRepositoryFacade combines receipt repository interfaces
type ReceiptRepositoryFacade interface {
	ReceiptReader
	ReceiptWriter
	FindReceiptByRefForUpdate(ctx context.Context, ref string) (*domain.Receipt, error)
}

// ClosingFilter narrows ListClosings.
type ClosingFilter struct {
	Status      domain.ClosingStatus
	AfterPeriod *domain.Period
	Limit       int
}

// ClosingRepositoryFacade defines persistence for monthly closings
type ClosingRepositoryFacade interface {
	// SaveClosing inserts a closing. Returns apperrors.ErrDuplicate when the period exists.
	SaveClosing(ctx context.Context, closing domain.Closing) error
	UpdateClosing(ctx context.Context, closing domain.Closing) error
	FindClosingByPeriod(ctx context.Context, period domain.Period) (*domain.Closing, error)
	FindClosingByPeriodForUpdate(ctx context.Context, period domain.Period) (*domain.Closing, error)

	// ListClosings returns closings ordered by period.
	ListClosings(ctx context.Context, filter ClosingFilter) ([]domain.Closing, error)
}
