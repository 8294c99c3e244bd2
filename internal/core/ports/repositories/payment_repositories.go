package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// PaymentFilter narrows ListPayments.
type PaymentFilter struct {
	StatementNumber string
	RequestRef      string
	AfterRef        string
	Limit           int
}

// PaymentRepositoryFacade defines persistence for payments
type PaymentRepositoryFacade interface {
	SavePayment(ctx context.Context, payment domain.Payment) error
	UpdatePayment(ctx context.Context, payment domain.Payment) error
	FindPaymentByRef(ctx context.Context, ref string) (*domain.Payment, error)
	FindPaymentByRefForUpdate(ctx context.Context, ref string) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
}

// ChequeRepositoryFacade defines persistence for cheques
type ChequeRepositoryFacade interface {
	// SaveCheque inserts a cheque. Returns apperrors.ErrDuplicate when the
	// statement already has a cheque that is not cancelled.
	SaveCheque(ctx context.Context, cheque domain.Cheque) error
	UpdateCheque(ctx context.Context, cheque domain.Cheque) error
	FindChequeByNumber(ctx context.Context, number string) (*domain.Cheque, error)
	FindChequeByNumberForUpdate(ctx context.Context, number string) (*domain.Cheque, error)

	// FindActiveChequeByStatement returns the non-cancelled cheque of a statement, or apperrors.ErrNotFound.
	FindActiveChequeByStatement(ctx context.Context, statementNumber string) (*domain.Cheque, error)
}
