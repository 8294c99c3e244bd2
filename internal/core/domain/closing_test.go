package domain_test

import (
	"testing"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosing_CanClose(t *testing.T) {
	march := domain.Period{Month: 3, Year: 2024}
	feb := domain.Period{Month: 2, Year: 2024}

	tests := []struct {
		name       string
		period     domain.Period
		closed     bool
		now        time.Time
		strictness domain.ClosingStrictness
		wantReason apperrors.ClosingReason
	}{
		{name: "last day of month", period: march, now: time.Date(2024, 3, 31, 17, 0, 0, 0, time.UTC)},
		{name: "leap day", period: feb, now: time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)},
		{name: "mid month", period: march, now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), wantReason: apperrors.ReasonNotLastDayOfMonth},
		{name: "feb 28 on leap year", period: feb, now: time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC), wantReason: apperrors.ReasonNotLastDayOfMonth},
		{name: "mid month lenient", period: march, now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), strictness: domain.ClosingLenient},
		{name: "other period", period: march, now: time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC), wantReason: apperrors.ReasonNotCurrentPeriod},
		{name: "already closed", period: march, closed: true, now: time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), wantReason: apperrors.ReasonAlreadyClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.NewClosing(tt.period, domain.CurrencyTotals{}, "system", tt.now)
			if tt.closed {
				c.Close("df", nil, tt.now)
			}
			strictness := tt.strictness
			if strictness == "" {
				strictness = domain.ClosingStrict
			}

			err := c.CanClose(tt.now, strictness)
			if tt.wantReason == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrClosingNotAllowed)
			reason, ok := apperrors.ClosingReasonOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestClosing_ApplyBalancesKeepsOpening(t *testing.T) {
	opening := domain.CurrencyTotals{USD: decimal.NewFromInt(100)}
	c := domain.NewClosing(domain.Period{Month: 3, Year: 2024}, opening, "system", testNow)

	receipts := domain.CurrencyTotals{USD: decimal.NewFromInt(10000)}
	expenses := domain.CurrencyTotals{USD: decimal.NewFromInt(7500)}
	c.ApplyBalances(receipts, expenses, testNow)
	c.ApplyBalances(receipts, expenses, testNow)

	assert.True(t, c.Opening.Equal(opening))
	assert.Equal(t, "2500.00", c.Net.USD.StringFixed(2))
}
