package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Closing is a row of the closings table.
type Closing struct {
	Period      string          `db:"period"`
	Status      string          `db:"status"`
	OpeningCDF  decimal.Decimal `db:"opening_cdf"`
	OpeningUSD  decimal.Decimal `db:"opening_usd"`
	ReceiptsCDF decimal.Decimal `db:"receipts_cdf"`
	ReceiptsUSD decimal.Decimal `db:"receipts_usd"`
	ExpensesCDF decimal.Decimal `db:"expenses_cdf"`
	ExpensesUSD decimal.Decimal `db:"expenses_usd"`
	NetCDF      decimal.Decimal `db:"net_cdf"`
	NetUSD      decimal.Decimal `db:"net_usd"`
	ComputedAt  *time.Time      `db:"computed_at"`
	ClosedBy    *string         `db:"closed_by"`
	ClosedAt    *time.Time      `db:"closed_at"`
	Observation *string         `db:"observation"`
	AuditFields
}
