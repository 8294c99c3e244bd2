package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent modification was detected (stale version, serialization failure).
var ErrConflict = errors.New("conflicting concurrent update")

// ErrInternal is returned when an unexpected failure must not leak details to the caller.
var ErrInternal = errors.New("internal error")

// Kernel precondition violations. All of them abort the enclosing transaction.
var (
	ErrCurrencyMismatch        = errors.New("currency mismatch")
	ErrOverpaymentRefused      = errors.New("overpayment refused")
	ErrMembershipConflict      = errors.New("membership conflict")
	ErrStatementSealed         = errors.New("statement sealed")
	ErrClosingNotAllowed       = errors.New("closing not allowed")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrNoSuitableAccount       = errors.New("no suitable account")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrReferenceExhausted      = errors.New("reference generation exhausted")
	ErrIntegrity               = errors.New("integrity check failed")
	ErrForbiddenActor          = errors.New("actor not allowed for this operation")
	ErrStatementPeriodConflict = fmt.Errorf("%w: a statement already exists for this period", ErrDuplicate)
)

// ClosingReason names why a closing was refused.
type ClosingReason string

const (
	ReasonAlreadyClosed     ClosingReason = "AlreadyClosed"
	ReasonNotCurrentPeriod  ClosingReason = "NotCurrentPeriod"
	ReasonNotLastDayOfMonth ClosingReason = "NotLastDayOfMonth"
)

// ClosingNotAllowedError carries the reason a period could not be closed.
// errors.Is(err, ErrClosingNotAllowed) holds for every instance.
type ClosingNotAllowedError struct {
	Reason ClosingReason
	Period string
}

func (e *ClosingNotAllowedError) Error() string {
	return fmt.Sprintf("%s: %s (period %s)", ErrClosingNotAllowed.Error(), e.Reason, e.Period)
}

func (e *ClosingNotAllowedError) Unwrap() error {
	return ErrClosingNotAllowed
}

// NewClosingNotAllowed builds a ClosingNotAllowedError.
func NewClosingNotAllowed(reason ClosingReason, period string) error {
	return &ClosingNotAllowedError{Reason: reason, Period: period}
}

// ClosingReasonOf extracts the closing refusal reason, if any.
func ClosingReasonOf(err error) (ClosingReason, bool) {
	var cna *ClosingNotAllowedError
	if errors.As(err, &cna) {
		return cna.Reason, true
	}
	return "", false
}

// AppError wraps an infrastructure failure with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsPrecondition reports whether err is one of the kernel's caller-side precondition violations.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrCurrencyMismatch,
		ErrOverpaymentRefused,
		ErrMembershipConflict,
		ErrStatementSealed,
		ErrClosingNotAllowed,
		ErrInvalidStateTransition,
		ErrNoSuitableAccount,
		ErrInsufficientFunds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
