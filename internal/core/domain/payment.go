package domain

import (
	"fmt"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
)

// Payment is money paid out of an account against a statement member (PAY-NNNNNN).
type Payment struct {
	Reference          string     `json:"reference"`
	StatementNumber    string     `json:"statementNumber"`
	RequestRef         string     `json:"requestRef"`
	AccountID          string     `json:"accountID"`
	MovementID         string     `json:"movementID"` // Debit posted for this payment
	Amount             Amount     `json:"amount"`
	Notes              *string    `json:"notes,omitempty"`
	PaidBy             string     `json:"paidBy"`
	PaidAt             time.Time  `json:"paidAt"`
	Reversed           bool       `json:"reversed"`
	ReversedBy         *string    `json:"reversedBy,omitempty"`
	ReversedAt         *time.Time `json:"reversedAt,omitempty"`
	ReversalMovementID *string    `json:"reversalMovementID,omitempty"`
}

// MarkReversed records the compensating credit.
func (p *Payment) MarkReversed(actor, movementID string, now time.Time) error {
	if p.Reversed {
		return fmt.Errorf("%w: payment %s is already reversed", apperrors.ErrInvalidStateTransition, p.Reference)
	}
	p.Reversed = true
	p.ReversedBy = &actor
	p.ReversedAt = &now
	p.ReversalMovementID = &movementID
	return nil
}

// ChequeStatus is the lifecycle position of a cheque.
type ChequeStatus string

const (
	ChequeGenerated ChequeStatus = "generated"
	ChequeIssued    ChequeStatus = "issued"
	ChequeCashed    ChequeStatus = "cashed"
	ChequeCancelled ChequeStatus = "cancelled"
)

var chequeTransitions = map[ChequeStatus][]ChequeStatus{
	ChequeGenerated: {ChequeIssued, ChequeCancelled},
	ChequeIssued:    {ChequeCashed, ChequeCancelled},
}

// Cheque is the informational instrument issued for a statement (CHQ-NNNNNN).
type Cheque struct {
	Number          string         `json:"number"`
	StatementNumber string         `json:"statementNumber"`
	Bank            string         `json:"bank"` // Drives payment account selection
	Beneficiary     string         `json:"beneficiary"`
	Amounts         CurrencyTotals `json:"amounts"` // Net totals cloned from the statement
	Status          ChequeStatus   `json:"status"`
	IssuedAt        *time.Time     `json:"issuedAt,omitempty"`
	CashedAt        *time.Time     `json:"cashedAt,omitempty"`
	CancelledAt     *time.Time     `json:"cancelledAt,omitempty"`
	AuditFields
}

// Transition moves the cheque to next when allowed.
func (c *Cheque) Transition(next ChequeStatus, actor string, now time.Time) error {
	allowed := false
	for _, s := range chequeTransitions[c.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cheque %s cannot go from %s to %s", apperrors.ErrInvalidStateTransition, c.Number, c.Status, next)
	}
	c.Status = next
	switch next {
	case ChequeIssued:
		c.IssuedAt = &now
	case ChequeCashed:
		c.CashedAt = &now
	case ChequeCancelled:
		c.CancelledAt = &now
	}
	c.Touch(actor, now)
	return nil
}

// Active reports whether the cheque still designates a bank.
func (c *Cheque) Active() bool {
	return c.Status != ChequeCancelled
}
