package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Receipt is an incoming cash event crediting accounts at a bank (REC-NNNNNN).
type Receipt struct {
	Reference         string          `json:"reference"`
	Bank              string          `json:"bank"`
	AmountUSD         decimal.Decimal `json:"amountUSD"`
	AmountCDF         decimal.Decimal `json:"amountCDF"`
	EncashedOn        time.Time       `json:"encashedOn"` // Date only; drives closing period
	Author            string          `json:"author"`
	Validated         bool            `json:"validated"`
	ValidatedBy       *string         `json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time      `json:"validatedAt,omitempty"`
	PostedMovementIDs []string        `json:"postedMovementIDs,omitempty"` // Credits currently standing for this receipt
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
	DeletedBy         *string         `json:"deletedBy,omitempty"`
	AuditFields
}

// NewReceipt validates amounts and builds an unvalidated receipt.
func NewReceipt(ref, bank string, usd, cdf decimal.Decimal, encashedOn time.Time, author string, now time.Time) (*Receipt, error) {
	if strings.TrimSpace(bank) == "" {
		return nil, fmt.Errorf("%w: bank is required", apperrors.ErrValidation)
	}
	for _, pair := range []struct {
		c Currency
		v decimal.Decimal
	}{{USD, usd}, {CDF, cdf}} {
		if _, err := NewAmount(pair.c, pair.v); err != nil {
			return nil, err
		}
	}
	if usd.IsZero() && cdf.IsZero() {
		return nil, fmt.Errorf("%w: a receipt needs a USD or CDF amount", apperrors.ErrValidation)
	}
	return &Receipt{
		Reference:   ref,
		Bank:        bank,
		AmountUSD:   usd,
		AmountCDF:   cdf,
		EncashedOn:  encashedOn,
		Author:      author,
		AuditFields: NewAuditFields(author, now),
	}, nil
}

// Amounts returns the non-zero amounts in currency order.
func (r *Receipt) Amounts() []Amount {
	out := make([]Amount, 0, 2)
	if !r.AmountCDF.IsZero() {
		out = append(out, Amount{Currency: CDF, Value: r.AmountCDF})
	}
	if !r.AmountUSD.IsZero() {
		out = append(out, Amount{Currency: USD, Value: r.AmountUSD})
	}
	return out
}

// Totals returns both amounts as CurrencyTotals.
func (r *Receipt) Totals() CurrencyTotals {
	return CurrencyTotals{CDF: r.AmountCDF, USD: r.AmountUSD}
}

// IsDeleted reports whether the receipt was soft deleted.
func (r *Receipt) IsDeleted() bool {
	return r.DeletedAt != nil
}

// MarkValidated flips the flag on. Credits are posted by the caller.
func (r *Receipt) MarkValidated(validator string, now time.Time) error {
	if r.IsDeleted() {
		return fmt.Errorf("%w: receipt %s was deleted", apperrors.ErrInvalidStateTransition, r.Reference)
	}
	if r.Validated {
		return fmt.Errorf("%w: receipt %s is already validated", apperrors.ErrInvalidStateTransition, r.Reference)
	}
	r.Validated = true
	r.ValidatedBy = &validator
	r.ValidatedAt = &now
	r.Touch(validator, now)
	return nil
}

// MarkUnvalidated flips the flag off. Compensating debits are posted by the caller.
func (r *Receipt) MarkUnvalidated(actor string, now time.Time) error {
	if r.IsDeleted() {
		return fmt.Errorf("%w: receipt %s was deleted", apperrors.ErrInvalidStateTransition, r.Reference)
	}
	if !r.Validated {
		return fmt.Errorf("%w: receipt %s is not validated", apperrors.ErrInvalidStateTransition, r.Reference)
	}
	r.Validated = false
	r.ValidatedBy = nil
	r.ValidatedAt = nil
	r.PostedMovementIDs = nil
	r.Touch(actor, now)
	return nil
}

// MarkDeleted soft deletes the receipt.
func (r *Receipt) MarkDeleted(actor string, now time.Time) error {
	if r.IsDeleted() {
		return fmt.Errorf("%w: receipt %s was already deleted", apperrors.ErrInvalidStateTransition, r.Reference)
	}
	r.DeletedAt = &now
	r.DeletedBy = &actor
	r.PostedMovementIDs = nil
	r.Touch(actor, now)
	return nil
}
