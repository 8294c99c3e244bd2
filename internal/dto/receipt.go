package dto

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RecordReceiptRequest defines the data needed to record a receipt.
// When ValidatedBy is set the receipt is saved validated and credited at once.
type RecordReceiptRequest struct {
	Bank        string          `json:"bank" binding:"required"`
	AmountUSD   decimal.Decimal `json:"amountUSD"`
	AmountCDF   decimal.Decimal `json:"amountCDF"`
	EncashedOn  string          `json:"encashedOn" binding:"required,datetime=2006-01-02"`
	ValidatedBy *string         `json:"validatedBy"`
}

// ReceiptResponse defines the data returned for a receipt.
type ReceiptResponse struct {
	Reference         string          `json:"reference"`
	Bank              string          `json:"bank"`
	AmountUSD         decimal.Decimal `json:"amountUSD"`
	AmountCDF         decimal.Decimal `json:"amountCDF"`
	EncashedOn        string          `json:"encashedOn"`
	Author            string          `json:"author"`
	Validated         bool            `json:"validated"`
	ValidatedBy       *string         `json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time      `json:"validatedAt,omitempty"`
	PostedMovementIDs []string        `json:"postedMovementIDs"`
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
	DeletedBy         *string         `json:"deletedBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ReceiptResult is returned by receipt commands that move money.
type ReceiptResult struct {
	Receipt  ReceiptResponse `json:"receipt"`
	Warnings []WarningDTO    `json:"warnings"`
}

// ListReceiptsParams defines query parameters for listing receipts.
type ListReceiptsParams struct {
	Bank           string `form:"bank"`
	Validated      *bool  `form:"validated"`
	Period         string `form:"period" binding:"omitempty,period"`
	IncludeDeleted bool   `form:"includeDeleted"`
	Limit          int    `form:"limit,default=20"`
	NextToken      string `form:"nextToken"`
}

// ListReceiptsResponse is a page of receipts.
type ListReceiptsResponse struct {
	Receipts  []ReceiptResponse `json:"receipts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToReceiptResponse converts a domain.Receipt
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	posted := r.PostedMovementIDs
	if posted == nil {
		posted = []string{}
	}
	return ReceiptResponse{
		Reference:         r.Reference,
		Bank:              r.Bank,
		AmountUSD:         r.AmountUSD,
		AmountCDF:         r.AmountCDF,
		EncashedOn:        r.EncashedOn.Format(DateLayout),
		Author:            r.Author,
		Validated:         r.Validated,
		ValidatedBy:       r.ValidatedBy,
		ValidatedAt:       r.ValidatedAt,
		PostedMovementIDs: posted,
		DeletedAt:         r.DeletedAt,
		DeletedBy:         r.DeletedBy,
		CreatedAt:         r.CreatedAt,
	}
}

// ToListReceiptResponse converts a slice of domain.Receipt
func ToListReceiptResponse(rs []domain.Receipt) []ReceiptResponse {
	res := make([]ReceiptResponse, len(rs))
	for i := range rs {
		res[i] = ToReceiptResponse(&rs[i])
	}
	return res
}
