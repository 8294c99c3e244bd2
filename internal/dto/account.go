package dto

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest defines the data needed to open a bank account.
type OpenAccountRequest struct {
	Bank           string          `json:"bank" binding:"required"`
	AccountNumber  string          `json:"accountNumber" binding:"required"`
	Currency       string          `json:"currency" binding:"required,currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	Bank           string          `json:"bank"`
	AccountNumber  string          `json:"accountNumber"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	LastMovementAt *time.Time      `json:"lastMovementAt,omitempty"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy  string          `json:"lastUpdatedBy"`
}

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	LastMovementAt *time.Time      `json:"lastMovementAt,omitempty"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Bank       string `form:"bank"`
	Currency   string `form:"currency" binding:"omitempty,currency"`
	ActiveOnly bool   `form:"activeOnly"`
	Limit      int    `form:"limit,default=20"`
	NextToken  string `form:"nextToken"`
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// MovementResponse defines the data returned for a ledger movement.
type MovementResponse struct {
	MovementID         string          `json:"movementID"`
	AccountID          string          `json:"accountID"`
	Sequence           int64           `json:"sequence"`
	Direction          string          `json:"direction"`
	Amount             AmountDTO       `json:"amount"`
	Cause              string          `json:"cause"`
	CauseRef           string          `json:"causeRef"`
	BalanceAfter       decimal.Decimal `json:"balanceAfter"`
	ReversesMovementID *string         `json:"reversesMovementID,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
}

// ListMovementsParams defines query parameters for listing movements.
type ListMovementsParams struct {
	Limit     int    `form:"limit,default=50"`
	NextToken string `form:"nextToken"`
}

// ListMovementsResponse is a page of movements.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// MovementResult is returned by commands that post a single movement.
type MovementResult struct {
	Movement MovementResponse `json:"movement"`
	Warnings []WarningDTO     `json:"warnings"`
}

// AccountVerification reports whether the stored balance matches the movements.
type AccountVerification struct {
	AccountID      string          `json:"accountID"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	MovementSum    decimal.Decimal `json:"movementSum"`
	MovementCount  int64           `json:"movementCount"`
	Drift          decimal.Decimal `json:"drift"` // current - (initial + sum)
	Consistent     bool            `json:"consistent"`
}

// ToAccountResponse converts a domain.BankAccount to AccountResponse DTO
func ToAccountResponse(acc *domain.BankAccount) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Bank:           acc.Bank,
		AccountNumber:  acc.AccountNumber,
		Currency:       string(acc.Currency),
		InitialBalance: acc.InitialBalance,
		CurrentBalance: acc.CurrentBalance,
		LastMovementAt: acc.LastMovementAt,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.BankAccount
func ToListAccountResponse(accounts []domain.BankAccount) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ToMovementResponse converts a domain.Movement
func ToMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:         m.MovementID,
		AccountID:          m.AccountID,
		Sequence:           m.Sequence,
		Direction:          string(m.Direction),
		Amount:             ToAmountDTO(m.Amount),
		Cause:              string(m.Cause),
		CauseRef:           m.CauseRef,
		BalanceAfter:       m.BalanceAfter,
		ReversesMovementID: m.ReversesMovementID,
		CreatedAt:          m.CreatedAt,
		CreatedBy:          m.CreatedBy,
	}
}

// ToListMovementResponse converts a slice of domain.Movement
func ToListMovementResponse(ms []domain.Movement) []MovementResponse {
	res := make([]MovementResponse, len(ms))
	for i := range ms {
		res[i] = ToMovementResponse(&ms[i])
	}
	return res
}
