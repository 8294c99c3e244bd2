package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID      string          `db:"account_id"`
	Bank           string          `db:"bank"`
	AccountNumber  string          `db:"account_number"`
	CurrencyCode   string          `db:"currency_code"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
	LastMovementAt *time.Time      `db:"last_movement_at"`
	IsActive       bool            `db:"is_active"`
	Version        int64           `db:"version"`
	AuditFields
}

// Movement is a row of the append-only movements table.
type Movement struct {
	MovementID         string          `db:"movement_id"`
	AccountID          string          `db:"account_id"`
	Sequence           int64           `db:"sequence"`
	Direction          string          `db:"direction"` // credit or debit
	Amount             decimal.Decimal `db:"amount"`    // Always positive
	CurrencyCode       string          `db:"currency_code"`
	Cause              string          `db:"cause"`
	CauseRef           string          `db:"cause_ref"`
	BalanceAfter       decimal.Decimal `db:"balance_after"`
	ReversesMovementID *string         `db:"reverses_movement_id"` // Unique when set
	CreatedAt          time.Time       `db:"created_at"`
	CreatedBy          string          `db:"created_by"`
}
