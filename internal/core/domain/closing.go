package domain

import (
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
)

// ClosingStatus is open until the period is closed; closed is terminal.
type ClosingStatus string

const (
	ClosingOpen   ClosingStatus = "open"
	ClosingClosed ClosingStatus = "closed"
)

// Closing is the monthly freeze of receipts and expenses for a period.
type Closing struct {
	Period      Period         `json:"period"` // Unique
	Status      ClosingStatus  `json:"status"`
	Opening     CurrencyTotals `json:"opening"` // Set at creation or by the previous period's close
	Receipts    CurrencyTotals `json:"receipts"`
	Expenses    CurrencyTotals `json:"expenses"`
	Net         CurrencyTotals `json:"net"` // receipts - expenses
	ComputedAt  *time.Time     `json:"computedAt,omitempty"`
	ClosedBy    *string        `json:"closedBy,omitempty"`
	ClosedAt    *time.Time     `json:"closedAt,omitempty"`
	Observation *string        `json:"observation,omitempty"`
	AuditFields
}

// NewClosing opens a period with the given opening balances.
func NewClosing(p Period, opening CurrencyTotals, actor string, now time.Time) *Closing {
	return &Closing{
		Period:      p,
		Status:      ClosingOpen,
		Opening:     opening,
		AuditFields: NewAuditFields(actor, now),
	}
}

// IsClosed reports whether the period is frozen.
func (c *Closing) IsClosed() bool {
	return c.Status == ClosingClosed
}

// ApplyBalances stores freshly computed receipts and expenses. Opening is untouched.
func (c *Closing) ApplyBalances(receipts, expenses CurrencyTotals, now time.Time) {
	c.Receipts = receipts
	c.Expenses = expenses
	c.Net = receipts.Sub(expenses)
	c.ComputedAt = &now
}

// CanClose checks status, calendar period and day against now.
func (c *Closing) CanClose(now time.Time, strictness ClosingStrictness) error {
	if c.IsClosed() {
		return apperrors.NewClosingNotAllowed(apperrors.ReasonAlreadyClosed, c.Period.String())
	}
	if PeriodOf(now) != c.Period {
		return apperrors.NewClosingNotAllowed(apperrors.ReasonNotCurrentPeriod, c.Period.String())
	}
	if strictness != ClosingLenient && !c.Period.IsLastDay(now) {
		return apperrors.NewClosingNotAllowed(apperrors.ReasonNotLastDayOfMonth, c.Period.String())
	}
	return nil
}

// Close freezes the closing. CanClose must have passed.
func (c *Closing) Close(actor string, observation *string, now time.Time) {
	c.Status = ClosingClosed
	c.ClosedBy = &actor
	c.ClosedAt = &now
	if observation != nil {
		c.Observation = observation
	}
	c.Touch(actor, now)
}
