package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a row of the receipts table.
type Receipt struct {
	Reference         string          `db:"reference"`
	Bank              string          `db:"bank"`
	AmountUSD         decimal.Decimal `db:"amount_usd"`
	AmountCDF         decimal.Decimal `db:"amount_cdf"`
	EncashedOn        time.Time       `db:"encashed_on"` // DATE column
	Author            string          `db:"author"`
	Validated         bool            `db:"validated"`
	ValidatedBy       *string         `db:"validated_by"`
	ValidatedAt       *time.Time      `db:"validated_at"`
	PostedMovementIDs []string        `db:"posted_movement_ids"`
	DeletedAt         *time.Time      `db:"deleted_at"`
	DeletedBy         *string         `db:"deleted_by"`
	AuditFields
}
