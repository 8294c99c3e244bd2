package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request is a row of the requests table. Total, paid and remaining share CurrencyCode.
type Request struct {
	Reference        string          `db:"reference"`
	Service          string          `db:"service"`
	NatureCode       string          `db:"nature_code"`
	Description      string          `db:"description"`
	CurrencyCode     string          `db:"currency_code"`
	Total            decimal.Decimal `db:"total"`
	Paid             decimal.Decimal `db:"paid"`
	Remaining        decimal.Decimal `db:"remaining"`
	State            string          `db:"state"`
	Decision         string          `db:"decision"`
	Author           string          `db:"author"`
	Approver         *string         `db:"approver"`
	RejectComment    *string         `db:"reject_comment"`
	AttachmentHandle *string         `db:"attachment_handle"`
	SubmittedAt      time.Time       `db:"submitted_at"`
	ModifiedAt       time.Time       `db:"modified_at"`
	ValidatedAt      *time.Time      `db:"validated_at"`
}
