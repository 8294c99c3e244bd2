package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/shopspring/decimal"
)

// StatementTotals are the per-currency gross, IPR and net of a statement.
type StatementTotals struct {
	Gross CurrencyTotals `json:"gross"`
	IPR   CurrencyTotals `json:"ipr"`
	Net   CurrencyTotals `json:"net"`
}

// Equal compares all buckets.
func (t StatementTotals) Equal(o StatementTotals) bool {
	return t.Gross.Equal(o.Gross) && t.IPR.Equal(o.IPR) && t.Net.Equal(o.Net)
}

// ComputeStatementTotals sums member totals per currency then derives IPR and net.
// gross_c = sum of totals in c, IPR_c = round(gross_c * rate, 2), net_c = gross_c - IPR_c.
func ComputeStatementTotals(members []Request, rate decimal.Decimal, mode RoundingMode) StatementTotals {
	var totals StatementTotals
	for _, r := range members {
		totals.Gross.AddTo(r.Total.Currency, r.Total.Value)
	}
	for _, c := range Currencies {
		gross := totals.Gross.Get(c)
		ipr := RoundMoney(gross.Mul(rate), mode)
		totals.IPR.Set(c, ipr)
		totals.Net.Set(c, gross.Sub(ipr))
	}
	return totals
}

// Statement is the monthly grouping of validated requests (REL-NNNNNN).
type Statement struct {
	Number            string          `json:"number"`
	Period            Period          `json:"period"` // Unique across statements
	Members           []string        `json:"members"`
	Validator         string          `json:"validator"`
	ValidatedAt       time.Time       `json:"validatedAt"`
	Observation       *string         `json:"observation,omitempty"`
	Totals            StatementTotals `json:"totals"`
	ExpensesValidated bool            `json:"expensesValidated"` // Sealed: membership frozen
	SealedBy          *string         `json:"sealedBy,omitempty"`
	SealedAt          *time.Time      `json:"sealedAt,omitempty"`
	Settled           bool            `json:"settled"` // Every member fully paid
	SettledAt         *time.Time      `json:"settledAt,omitempty"`
	AuditFields
}

// HasMember reports whether ref belongs to the statement.
func (s *Statement) HasMember(ref string) bool {
	return slices.Contains(s.Members, ref)
}

// EnsureOpen refuses membership changes once expenses are validated.
func (s *Statement) EnsureOpen() error {
	if s.ExpensesValidated {
		return fmt.Errorf("%w: statement %s expenses were validated", apperrors.ErrStatementSealed, s.Number)
	}
	return nil
}

// Seal freezes membership. It reports false when the statement was already sealed.
func (s *Statement) Seal(actor string, now time.Time) bool {
	if s.ExpensesValidated {
		return false
	}
	s.ExpensesValidated = true
	s.SealedBy = &actor
	s.SealedAt = &now
	s.Touch(actor, now)
	return true
}

// RefreshSettlement sets or clears the settled flag from the member requests.
// It reports whether the flag changed.
func (s *Statement) RefreshSettlement(members []Request, now time.Time) bool {
	settled := len(members) > 0
	for _, r := range members {
		if !r.Remaining.IsZero() {
			settled = false
			break
		}
	}
	if settled == s.Settled {
		return false
	}
	s.Settled = settled
	if settled {
		s.SettledAt = &now
	} else {
		s.SettledAt = nil
	}
	return true
}

// CheckTotals verifies stored totals against members.
func (s *Statement) CheckTotals(members []Request, rate decimal.Decimal, mode RoundingMode) error {
	want := ComputeStatementTotals(members, rate, mode)
	if !want.Equal(s.Totals) {
		return fmt.Errorf("%w: statement %s totals drifted from members", apperrors.ErrIntegrity, s.Number)
	}
	return nil
}

// Clone returns a deep copy.
func (s Statement) Clone() Statement {
	s.Members = slices.Clone(s.Members)
	return s
}

// ExpenseLine is the immutable record minted for each member when a statement is sealed.
type ExpenseLine struct {
	Code            string         `json:"code"` // DEP-YYYY-MM-NNNN
	StatementNumber string         `json:"statementNumber"`
	RequestRef      string         `json:"requestRef"`
	Period          Period         `json:"period"`
	NatureCode      string         `json:"natureCode"`
	Amounts         CurrencyTotals `json:"amounts"` // Only the request's currency is non-zero
	CreatedAt       time.Time      `json:"createdAt"`
	CreatedBy       string         `json:"createdBy"`
}

// NewExpenseLine captures a member request at sealing time.
func NewExpenseLine(code string, st *Statement, r Request, actor string, now time.Time) ExpenseLine {
	line := ExpenseLine{
		Code:            code,
		StatementNumber: st.Number,
		RequestRef:      r.Reference,
		Period:          st.Period,
		NatureCode:      r.NatureCode,
		CreatedAt:       now,
		CreatedBy:       actor,
	}
	line.Amounts.Set(r.Total.Currency, r.Total.Value)
	return line
}
