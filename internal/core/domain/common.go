package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Actor reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // Actor reference
}

// Touch stamps the update fields.
func (a *AuditFields) Touch(actor string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = actor
}

// NewAuditFields stamps both creation and update fields.
func NewAuditFields(actor string, now time.Time) AuditFields {
	return AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
}

// Policy carries the kernel settings that change accounting behaviour.
type Policy struct {
	IPRRate           decimal.Decimal
	Rounding          RoundingMode
	AllowOverdraft    bool
	ClosingStrictness ClosingStrictness
}

// ClosingStrictness controls which day of the period a closing may happen on.
type ClosingStrictness string

const (
	ClosingStrict  ClosingStrictness = "strict"  // Last calendar day only
	ClosingLenient ClosingStrictness = "lenient" // Any day of the current period
)

// DefaultIPRRate is the 3 % withholding applied to statement gross.
var DefaultIPRRate = decimal.RequireFromString("0.03")

// DefaultPolicy returns the settings used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		IPRRate:           DefaultIPRRate,
		Rounding:          RoundHalfEven,
		AllowOverdraft:    true,
		ClosingStrictness: ClosingStrict,
	}
}
