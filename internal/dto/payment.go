package dto

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// RecordPaymentRequest defines the data needed to pay a statement member.
// AccountID or Bank select the paying account when the statement has no active cheque.
type RecordPaymentRequest struct {
	StatementNumber string    `json:"statementNumber" binding:"required"`
	RequestRef      string    `json:"requestRef" binding:"required"`
	Amount          AmountDTO `json:"amount"`
	AccountID       *string   `json:"accountID"`
	Bank            *string   `json:"bank"`
	Notes           *string   `json:"notes"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	Reference          string     `json:"reference"`
	StatementNumber    string     `json:"statementNumber"`
	RequestRef         string     `json:"requestRef"`
	AccountID          string     `json:"accountID"`
	MovementID         string     `json:"movementID"`
	Amount             AmountDTO  `json:"amount"`
	Notes              *string    `json:"notes,omitempty"`
	PaidBy             string     `json:"paidBy"`
	PaidAt             time.Time  `json:"paidAt"`
	Reversed           bool       `json:"reversed"`
	ReversedBy         *string    `json:"reversedBy,omitempty"`
	ReversedAt         *time.Time `json:"reversedAt,omitempty"`
	ReversalMovementID *string    `json:"reversalMovementID,omitempty"`
}

// PaymentResult is returned by record_payment.
type PaymentResult struct {
	Payment  PaymentResponse `json:"payment"`
	Warnings []WarningDTO    `json:"warnings"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	StatementNumber string `form:"statement"`
	RequestRef      string `form:"request"`
	Limit           int    `form:"limit,default=20"`
	NextToken       string `form:"nextToken"`
}

// ListPaymentsResponse is a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPaymentResponse converts a domain.Payment
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		Reference:          p.Reference,
		StatementNumber:    p.StatementNumber,
		RequestRef:         p.RequestRef,
		AccountID:          p.AccountID,
		MovementID:         p.MovementID,
		Amount:             ToAmountDTO(p.Amount),
		Notes:              p.Notes,
		PaidBy:             p.PaidBy,
		PaidAt:             p.PaidAt,
		Reversed:           p.Reversed,
		ReversedBy:         p.ReversedBy,
		ReversedAt:         p.ReversedAt,
		ReversalMovementID: p.ReversalMovementID,
	}
}

// ToListPaymentResponse converts a slice of domain.Payment
func ToListPaymentResponse(ps []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(ps))
	for i := range ps {
		res[i] = ToPaymentResponse(&ps[i])
	}
	return res
}
