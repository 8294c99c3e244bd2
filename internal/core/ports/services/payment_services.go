package services

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/dto"
)

// PaymentSvcFacade defines the payment engine
type PaymentSvcFacade interface {
	// RecordPayment debits the paying account and applies the amount to the request.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, []domain.Warning, error)

	// ReversePayment credits the account back and reopens the request.
	// Refused with apperrors.ErrStatementSealed once the statement is sealed.
	ReversePayment(ctx context.Context, ref string, actor string) (*domain.Payment, error)

	GetPayment(ctx context.Context, ref string) (*domain.Payment, error)
	ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// ReceiptSvcFacade defines the receipt lifecycle
type ReceiptSvcFacade interface {
	// RecordReceipt saves a receipt, validated and credited when req.ValidatedBy is set.
	RecordReceipt(ctx context.Context, req dto.RecordReceiptRequest, actor string) (*domain.Receipt, []domain.Warning, error)

	// ValidateReceipt credits one movement per non-zero currency.
	ValidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error)

	// UnvalidateReceipt posts compensating debits.
	UnvalidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error)

	// DeleteReceipt soft deletes, posting compensating debits when validated.
	DeleteReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error)

	GetReceipt(ctx context.Context, ref string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, params dto.ListReceiptsParams) (*dto.ListReceiptsResponse, error)
}

// ClosingSvcFacade defines the monthly closing engine
type ClosingSvcFacade interface {
	// GetCurrentClosing returns the closing of today's period, creating it when missing.
	GetCurrentClosing(ctx context.Context) (*domain.Closing, error)

	GetClosing(ctx context.Context, period domain.Period) (*domain.Closing, error)
	ListClosings(ctx context.Context, params dto.ListClosingsParams) (*dto.ListClosingsResponse, error)

	// ComputeBalances refreshes receipts, expenses and net of an open closing.
	ComputeBalances(ctx context.Context, period domain.Period, actor string) (*domain.Closing, error)

	// ClosePeriod freezes the period and carries its net into the next one.
	ClosePeriod(ctx context.Context, period domain.Period, req dto.ClosePeriodRequest, actor string) (*domain.Closing, error)
}

// JournalSvc reads the command journal
type JournalSvc interface {
	ListJournal(ctx context.Context, params dto.ListJournalParams) (*dto.ListJournalResponse, error)
}
