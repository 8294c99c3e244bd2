package dto

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// OpenStatementRequest defines the data needed to open a monthly statement.
type OpenStatementRequest struct {
	Period      string  `json:"period" binding:"required,period"` // YYYY-MM
	Observation *string `json:"observation"`
}

// StatementMembersRequest lists request references to attach or detach.
type StatementMembersRequest struct {
	RequestRefs []string `json:"requestRefs" binding:"required,min=1,dive,required"`
}

// StatementTotalsDTO mirrors domain.StatementTotals.
type StatementTotalsDTO struct {
	Gross CurrencyTotalsDTO `json:"gross"`
	IPR   CurrencyTotalsDTO `json:"ipr"`
	Net   CurrencyTotalsDTO `json:"net"`
}

// StatementResponse defines the data returned for a statement.
type StatementResponse struct {
	Number            string             `json:"number"`
	Period            string             `json:"period"`
	Members           []string           `json:"members"`
	Validator         string             `json:"validator"`
	ValidatedAt       time.Time          `json:"validatedAt"`
	Observation       *string            `json:"observation,omitempty"`
	Totals            StatementTotalsDTO `json:"totals"`
	ExpensesValidated bool               `json:"expensesValidated"`
	SealedBy          *string            `json:"sealedBy,omitempty"`
	SealedAt          *time.Time         `json:"sealedAt,omitempty"`
	Settled           bool               `json:"settled"`
	SettledAt         *time.Time         `json:"settledAt,omitempty"`
}

// ListStatementsParams defines query parameters for listing statements.
type ListStatementsParams struct {
	Year      int    `form:"year" binding:"omitempty,min=2020"`
	Sealed    *bool  `form:"sealed"`
	Settled   *bool  `form:"settled"`
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// ListStatementsResponse is a page of statements.
type ListStatementsResponse struct {
	Statements []StatementResponse `json:"statements"`
	NextToken  *string             `json:"nextToken,omitempty"`
}

// ExpenseLineResponse defines the data returned for an expense line.
type ExpenseLineResponse struct {
	Code            string            `json:"code"`
	StatementNumber string            `json:"statementNumber"`
	RequestRef      string            `json:"requestRef"`
	Period          string            `json:"period"`
	NatureCode      string            `json:"natureCode"`
	Amounts         CurrencyTotalsDTO `json:"amounts"`
	CreatedAt       time.Time         `json:"createdAt"`
	CreatedBy       string            `json:"createdBy"`
}

// IssueChequeRequest defines the data needed to issue a statement cheque.
type IssueChequeRequest struct {
	Bank        string `json:"bank" binding:"required"`
	Beneficiary string `json:"beneficiary" binding:"required"`
}

// SetChequeStatusRequest moves a cheque along its lifecycle.
type SetChequeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=issued cashed cancelled"`
}

// ChequeResponse defines the data returned for a cheque.
type ChequeResponse struct {
	Number          string            `json:"number"`
	StatementNumber string            `json:"statementNumber"`
	Bank            string            `json:"bank"`
	Beneficiary     string            `json:"beneficiary"`
	Amounts         CurrencyTotalsDTO `json:"amounts"`
	Status          string            `json:"status"`
	IssuedAt        *time.Time        `json:"issuedAt,omitempty"`
	CashedAt        *time.Time        `json:"cashedAt,omitempty"`
	CancelledAt     *time.Time        `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// ToStatementResponse converts a domain.Statement
func ToStatementResponse(s *domain.Statement) StatementResponse {
	members := s.Members
	if members == nil {
		members = []string{}
	}
	return StatementResponse{
		Number:      s.Number,
		Period:      s.Period.String(),
		Members:     members,
		Validator:   s.Validator,
		ValidatedAt: s.ValidatedAt,
		Observation: s.Observation,
		Totals: StatementTotalsDTO{
			Gross: ToCurrencyTotalsDTO(s.Totals.Gross),
			IPR:   ToCurrencyTotalsDTO(s.Totals.IPR),
			Net:   ToCurrencyTotalsDTO(s.Totals.Net),
		},
		ExpensesValidated: s.ExpensesValidated,
		SealedBy:          s.SealedBy,
		SealedAt:          s.SealedAt,
		Settled:           s.Settled,
		SettledAt:         s.SettledAt,
	}
}

// ToListStatementResponse converts a slice of domain.Statement
func ToListStatementResponse(ss []domain.Statement) []StatementResponse {
	res := make([]StatementResponse, len(ss))
	for i := range ss {
		res[i] = ToStatementResponse(&ss[i])
	}
	return res
}

// ToExpenseLineResponses converts expense lines
func ToExpenseLineResponses(lines []domain.ExpenseLine) []ExpenseLineResponse {
	res := make([]ExpenseLineResponse, len(lines))
	for i, l := range lines {
		res[i] = ExpenseLineResponse{
			Code:            l.Code,
			StatementNumber: l.StatementNumber,
			RequestRef:      l.RequestRef,
			Period:          l.Period.String(),
			NatureCode:      l.NatureCode,
			Amounts:         ToCurrencyTotalsDTO(l.Amounts),
			CreatedAt:       l.CreatedAt,
			CreatedBy:       l.CreatedBy,
		}
	}
	return res
}

// ToChequeResponse converts a domain.Cheque
func ToChequeResponse(c *domain.Cheque) ChequeResponse {
	return ChequeResponse{
		Number:          c.Number,
		StatementNumber: c.StatementNumber,
		Bank:            c.Bank,
		Beneficiary:     c.Beneficiary,
		Amounts:         ToCurrencyTotalsDTO(c.Amounts),
		Status:          string(c.Status),
		IssuedAt:        c.IssuedAt,
		CashedAt:        c.CashedAt,
		CancelledAt:     c.CancelledAt,
		CreatedAt:       c.CreatedAt,
	}
}
