package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
)

// RequestState is the lifecycle position of an expenditure request.
type RequestState string

const (
	RequestPending     RequestState = "pending"
	RequestValidatedDF RequestState = "validated_DF"
	RequestValidatedDG RequestState = "validated_DG"
	RequestRejected    RequestState = "rejected"
	RequestPaid        RequestState = "paid"
)

// IsValidated reports whether the state is one of the validated decisions.
func (s RequestState) IsValidated() bool {
	return s == RequestValidatedDF || s == RequestValidatedDG
}

// Payable reports whether payments may still be applied.
func (s RequestState) Payable() bool {
	return s.IsValidated()
}

// Statementable reports whether a request in this state may join a statement.
func (s RequestState) Statementable() bool {
	return s.IsValidated() || s == RequestPaid
}

// Request is an expenditure request (DEM-NNNNNN).
type Request struct {
	Reference        string       `json:"reference"`
	Service          string       `json:"service"`    // Originating service
	NatureCode       string       `json:"natureCode"` // Economic nature code
	Description      string       `json:"description"`
	Total            Amount       `json:"total"`
	Paid             Amount       `json:"paid"`
	Remaining        Amount       `json:"remaining"`
	State            RequestState `json:"state"`
	Decision         RequestState `json:"decision,omitempty"` // Validated state granted by the approver
	Author           string       `json:"author"`
	Approver         *string      `json:"approver,omitempty"`
	RejectComment    *string      `json:"rejectComment,omitempty"`
	AttachmentHandle *string      `json:"attachmentHandle,omitempty"` // Opaque object store handle
	SubmittedAt      time.Time    `json:"submittedAt"`
	ModifiedAt       time.Time    `json:"modifiedAt"`
	ValidatedAt      *time.Time   `json:"validatedAt,omitempty"`
}

// RequestEdit lists the fields an author may change while the request is pending.
// Nil fields are left untouched.
type RequestEdit struct {
	Service          *string
	NatureCode       *string
	Description      *string
	Total            *Amount
	AttachmentHandle *string
}

// NewRequest builds a pending request with nothing paid.
func NewRequest(ref, author, service, nature, description string, total Amount, attachment *string, now time.Time) (*Request, error) {
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("%w: author is required", apperrors.ErrValidation)
	}
	if total.IsZero() {
		return nil, fmt.Errorf("%w: request total must be greater than zero", apperrors.ErrValidation)
	}
	return &Request{
		Reference:        ref,
		Service:          service,
		NatureCode:       nature,
		Description:      description,
		Total:            total,
		Paid:             ZeroAmount(total.Currency),
		Remaining:        total,
		State:            RequestPending,
		Author:           author,
		AttachmentHandle: attachment,
		SubmittedAt:      now,
		ModifiedAt:       now,
	}, nil
}

// Edit applies changes while the request is pending. Only the author may edit.
func (r *Request) Edit(actor string, edit RequestEdit, now time.Time) error {
	if r.State != RequestPending {
		return fmt.Errorf("%w: request %s is %s, only pending requests can be edited", apperrors.ErrInvalidStateTransition, r.Reference, r.State)
	}
	if actor != r.Author {
		return fmt.Errorf("%w: only the author of %s may edit it", apperrors.ErrForbiddenActor, r.Reference)
	}
	if edit.Total != nil {
		if edit.Total.IsZero() {
			return fmt.Errorf("%w: request total must be greater than zero", apperrors.ErrValidation)
		}
		r.Total = *edit.Total
		r.Paid = ZeroAmount(edit.Total.Currency)
		r.Remaining = *edit.Total
	}
	if edit.Service != nil {
		r.Service = *edit.Service
	}
	if edit.NatureCode != nil {
		r.NatureCode = *edit.NatureCode
	}
	if edit.Description != nil {
		r.Description = *edit.Description
	}
	if edit.AttachmentHandle != nil {
		r.AttachmentHandle = edit.AttachmentHandle
	}
	r.ModifiedAt = now
	return nil
}

// Validate records the approver's decision. Rejection requires a comment.
func (r *Request) Validate(approver string, decision RequestState, comment string, now time.Time) error {
	if r.State != RequestPending {
		return fmt.Errorf("%w: request %s is already %s", apperrors.ErrInvalidStateTransition, r.Reference, r.State)
	}
	if strings.TrimSpace(approver) == "" {
		return fmt.Errorf("%w: approver is required", apperrors.ErrValidation)
	}
	switch decision {
	case RequestValidatedDF, RequestValidatedDG:
		r.Decision = decision
	case RequestRejected:
		if strings.TrimSpace(comment) == "" {
			return fmt.Errorf("%w: rejecting %s requires a comment", apperrors.ErrValidation, r.Reference)
		}
		r.RejectComment = &comment
	default:
		return fmt.Errorf("%w: %q is not a validation decision", apperrors.ErrValidation, decision)
	}
	r.State = decision
	r.Approver = &approver
	r.ValidatedAt = &now
	r.ModifiedAt = now
	return nil
}

// ApplyPayment adds amount to paid. The request snaps to paid when nothing remains.
// A paid request has nothing remaining, so any further payment is an overpayment.
func (r *Request) ApplyPayment(amount Amount, now time.Time) error {
	if amount.Currency != r.Total.Currency {
		return fmt.Errorf("%w: payment in %s for request %s in %s", apperrors.ErrCurrencyMismatch, amount.Currency, r.Reference, r.Total.Currency)
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: payment amount must be greater than zero", apperrors.ErrValidation)
	}
	if !r.State.Payable() && r.State != RequestPaid {
		return fmt.Errorf("%w: request %s is %s and cannot receive payments", apperrors.ErrInvalidStateTransition, r.Reference, r.State)
	}
	if amount.Value.GreaterThan(r.Remaining.Value) {
		return fmt.Errorf("%w: %s exceeds remaining %s on %s", apperrors.ErrOverpaymentRefused, amount, r.Remaining, r.Reference)
	}

	paid, err := r.Paid.Add(amount)
	if err != nil {
		return err
	}
	remaining, err := r.Total.SubtractClamped(paid)
	if err != nil {
		return err
	}
	r.Paid, r.Remaining = paid, remaining
	if r.Remaining.IsZero() {
		r.Paid = r.Total
		r.State = RequestPaid
	}
	r.ModifiedAt = now
	return nil
}

// RevertPayment undoes a previously applied payment and reopens the validated state.
func (r *Request) RevertPayment(amount Amount, now time.Time) error {
	if amount.Currency != r.Total.Currency {
		return fmt.Errorf("%w: reversal in %s for request %s in %s", apperrors.ErrCurrencyMismatch, amount.Currency, r.Reference, r.Total.Currency)
	}
	if !r.State.Payable() && r.State != RequestPaid {
		return fmt.Errorf("%w: request %s is %s", apperrors.ErrInvalidStateTransition, r.Reference, r.State)
	}
	paid, err := r.Paid.Subtract(amount)
	if err != nil {
		return fmt.Errorf("%w: reversal of %s exceeds paid %s on %s", apperrors.ErrIntegrity, amount, r.Paid, r.Reference)
	}
	remaining, err := r.Total.Subtract(paid)
	if err != nil {
		return err
	}
	r.Paid, r.Remaining = paid, remaining
	if !r.Remaining.IsZero() {
		r.State = r.Decision
	}
	r.ModifiedAt = now
	return nil
}

// CheckInvariants verifies paid + remaining = total and the state/remaining coupling.
func (r *Request) CheckInvariants() error {
	if r.Paid.Currency != r.Total.Currency || r.Remaining.Currency != r.Total.Currency {
		return fmt.Errorf("%w: request %s mixes currencies", apperrors.ErrIntegrity, r.Reference)
	}
	if r.Paid.Value.IsNegative() || r.Remaining.Value.IsNegative() {
		return fmt.Errorf("%w: request %s has a negative paid or remaining", apperrors.ErrIntegrity, r.Reference)
	}
	if !r.Paid.Value.Add(r.Remaining.Value).Equal(r.Total.Value) {
		return fmt.Errorf("%w: request %s paid %s + remaining %s != total %s", apperrors.ErrIntegrity, r.Reference, r.Paid, r.Remaining, r.Total)
	}
	if !r.Paid.IsZero() && !(r.State.IsValidated() || r.State == RequestPaid) {
		return fmt.Errorf("%w: request %s has payments in state %s", apperrors.ErrIntegrity, r.Reference, r.State)
	}
	if r.Remaining.IsZero() != (r.State == RequestPaid) {
		return fmt.Errorf("%w: request %s remaining %s inconsistent with state %s", apperrors.ErrIntegrity, r.Reference, r.Remaining, r.State)
	}
	return nil
}
