package dto

import (
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultPageSize applies when a list query gives no limit.
const DefaultPageSize = 20

// MaxPageSize caps every list query.
const MaxPageSize = 200

// AmountDTO is the wire form of an amount.
type AmountDTO struct {
	Currency string          `json:"currency" binding:"required,currency"`
	Value    decimal.Decimal `json:"value"`
}

// CurrencyTotalsDTO mirrors domain.CurrencyTotals.
type CurrencyTotalsDTO struct {
	CDF decimal.Decimal `json:"CDF"`
	USD decimal.Decimal `json:"USD"`
}

// WarningDTO mirrors domain.Warning.
type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"` // Closing refusal reason
}

// ToAmountDTO converts a domain.Amount.
func ToAmountDTO(a domain.Amount) AmountDTO {
	return AmountDTO{Currency: string(a.Currency), Value: a.Value}
}

// ToCurrencyTotalsDTO converts domain.CurrencyTotals.
func ToCurrencyTotalsDTO(t domain.CurrencyTotals) CurrencyTotalsDTO {
	return CurrencyTotalsDTO{CDF: t.CDF, USD: t.USD}
}

// ToWarningDTOs converts policy warnings. Nil in, empty out.
func ToWarningDTOs(ws []domain.Warning) []WarningDTO {
	out := make([]WarningDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, WarningDTO{Code: w.Code, Message: w.Message})
	}
	return out
}

// ClampLimit applies the default and maximum page sizes.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
