package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a row of the payments table.
type Payment struct {
	Reference          string          `db:"reference"`
	StatementNumber    string          `db:"statement_number"`
	RequestRef         string          `db:"request_ref"`
	AccountID          string          `db:"account_id"`
	MovementID         string          `db:"movement_id"`
	CurrencyCode       string          `db:"currency_code"`
	Amount             decimal.Decimal `db:"amount"`
	Notes              *string         `db:"notes"`
	PaidBy             string          `db:"paid_by"`
	PaidAt             time.Time       `db:"paid_at"`
	Reversed           bool            `db:"reversed"`
	ReversedBy         *string         `db:"reversed_by"`
	ReversedAt         *time.Time      `db:"reversed_at"`
	ReversalMovementID *string         `db:"reversal_movement_id"`
}

// Cheque is a row of the cheques table.
type Cheque struct {
	Number          string          `db:"number"`
	StatementNumber string          `db:"statement_number"`
	Bank            string          `db:"bank"`
	Beneficiary     string          `db:"beneficiary"`
	AmountCDF       decimal.Decimal `db:"amount_cdf"`
	AmountUSD       decimal.Decimal `db:"amount_usd"`
	Status          string          `db:"status"`
	IssuedAt        *time.Time      `db:"issued_at"`
	CashedAt        *time.Time      `db:"cashed_at"`
	CancelledAt     *time.Time      `db:"cancelled_at"`
	AuditFields
}
