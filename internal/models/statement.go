package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement is a row of the statements table. Members live in statement_members.
type Statement struct {
	Number            string          `db:"number"`
	Period            string          `db:"period"` // YYYY-MM, unique
	Validator         string          `db:"validator"`
	ValidatedAt       time.Time       `db:"validated_at"`
	Observation       *string         `db:"observation"`
	GrossCDF          decimal.Decimal `db:"gross_cdf"`
	GrossUSD          decimal.Decimal `db:"gross_usd"`
	IPRCDF            decimal.Decimal `db:"ipr_cdf"`
	IPRUSD            decimal.Decimal `db:"ipr_usd"`
	NetCDF            decimal.Decimal `db:"net_cdf"`
	NetUSD            decimal.Decimal `db:"net_usd"`
	ExpensesValidated bool            `db:"expenses_validated"`
	SealedBy          *string         `db:"sealed_by"`
	SealedAt          *time.Time      `db:"sealed_at"`
	Settled           bool            `db:"settled"`
	SettledAt         *time.Time      `db:"settled_at"`
	AuditFields
}

// ExpenseLine is a row of the expense_lines table.
type ExpenseLine struct {
	Code            string          `db:"code"`
	StatementNumber string          `db:"statement_number"`
	RequestRef      string          `db:"request_ref"`
	Period          string          `db:"period"`
	NatureCode      string          `db:"nature_code"`
	AmountCDF       decimal.Decimal `db:"amount_cdf"`
	AmountUSD       decimal.Decimal `db:"amount_usd"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
}
