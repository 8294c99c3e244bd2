package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is a single-currency account held at a bank.
// CurrentBalance only changes through a Movement.
type BankAccount struct {
	AccountID      string          `json:"accountID"`      // Primary Key (UUID)
	Bank           string          `json:"bank"`           // Bank name, matched by receipts and cheques
	AccountNumber  string          `json:"accountNumber"`  // Unique together with Bank
	Currency       Currency        `json:"currency"`       // CDF or USD
	InitialBalance decimal.Decimal `json:"initialBalance"` // Set once at opening
	CurrentBalance decimal.Decimal `json:"currentBalance"` // initial + signed sum of movements
	LastMovementAt *time.Time      `json:"lastMovementAt"` // Nil until the first movement
	IsActive       bool            `json:"isActive"`
	Version        int64           `json:"version"` // Number of movements posted; the n-th movement has Sequence n
	AuditFields
}

// MovementDirection is the sign of a movement.
type MovementDirection string

const (
	DirectionCredit MovementDirection = "credit"
	DirectionDebit  MovementDirection = "debit"
)

// Opposite returns the reverse direction.
func (d MovementDirection) Opposite() MovementDirection {
	if d == DirectionCredit {
		return DirectionDebit
	}
	return DirectionCredit
}

// MovementCause names the business event behind a movement.
type MovementCause string

const (
	CauseReceipt  MovementCause = "receipt"
	CausePayment  MovementCause = "payment"
	CauseReversal MovementCause = "reversal"
)

// Movement is an append-only ledger line against a BankAccount.
type Movement struct {
	MovementID         string            `json:"movementID"` // UUID
	AccountID          string            `json:"accountID"`
	Sequence           int64             `json:"sequence"` // Per-account posting order, starting at 1
	Direction          MovementDirection `json:"direction"`
	Amount             Amount            `json:"amount"`
	Cause              MovementCause     `json:"cause"`
	CauseRef           string            `json:"causeRef"`     // REC-/PAY- reference or the reversed movement ID
	BalanceAfter       decimal.Decimal   `json:"balanceAfter"` // Running balance once this movement applied
	ReversesMovementID *string           `json:"reversesMovementID,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	CreatedBy          string            `json:"createdBy"`
}

// Signed returns the amount with the direction's sign applied.
func (m Movement) Signed() decimal.Decimal {
	if m.Direction == DirectionDebit {
		return m.Amount.Value.Neg()
	}
	return m.Amount.Value
}

// Apply returns the balance after posting a movement of the given direction.
func Apply(balance decimal.Decimal, direction MovementDirection, amount decimal.Decimal) decimal.Decimal {
	if direction == DirectionDebit {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}

// Warning is a non-fatal policy observation returned alongside a successful result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WarningOverdraft is raised when a debit takes a balance below zero.
const WarningOverdraft = "overdraft"
