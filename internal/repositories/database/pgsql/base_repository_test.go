package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "", w.clause())

	w.add("bank = ?", "RAWBANK")
	w.add("encashed_on >= ?::date", "2024-03-01")
	w.conds = append(w.conds, "deleted_at IS NULL")

	assert.Equal(t, " WHERE bank = $1 AND encashed_on >= $2::date AND deleted_at IS NULL", w.clause())
	assert.Equal(t, " LIMIT $3", w.limit(21))
	assert.Equal(t, []any{"RAWBANK", "2024-03-01", 21}, w.args)

	var empty where
	assert.Equal(t, "", empty.limit(0))
	assert.Empty(t, empty.args)
}

func TestErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "accounts_bank_number_key"})
	constraint, ok := uniqueViolation(dup)
	require.True(t, ok)
	assert.Equal(t, "accounts_bank_number_key", constraint)

	_, ok = uniqueViolation(errors.New("boom"))
	assert.False(t, ok)

	assert.True(t, isRetryable(&pgconn.PgError{Code: codeSerializationFailure}))
	assert.True(t, isRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: codeDeadlockDetected})))
	assert.False(t, isRetryable(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isRetryable(errors.New("connection reset")))
}

func TestNotFoundMapping(t *testing.T) {
	err := notFoundOr(pgx.ErrNoRows, "receipt", "REC-000001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "REC-000001")

	cause := errors.New("conn closed")
	err = notFoundOr(cause, "receipt", "REC-000001")
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, expectOne(pgconn.NewCommandTag("UPDATE 0"), "cheque", "CHQ-000001"), apperrors.ErrNotFound)
	assert.NoError(t, expectOne(pgconn.NewCommandTag("UPDATE 1"), "cheque", "CHQ-000001"))
}

func TestPeriodDates(t *testing.T) {
	from, to := periodDates(domain.Period{Month: 12, Year: 2024})
	assert.Equal(t, "2024-12-01", from)
	assert.Equal(t, "2025-01-01", to)
}

func TestSortedRefs(t *testing.T) {
	in := []string{"DEM-000003", "DEM-000001", "DEM-000003"}
	assert.Equal(t, []string{"DEM-000001", "DEM-000003"}, sortedRefs(in))
	assert.Equal(t, []string{"DEM-000003", "DEM-000001", "DEM-000003"}, in, "input must not be reordered")
}

func TestReferenceTablesCoverEveryFamily(t *testing.T) {
	for _, f := range []domain.ReferenceFamily{
		domain.FamilyRequest, domain.FamilyStatement, domain.FamilyPayment,
		domain.FamilyReceipt, domain.FamilyCheque, domain.FamilyExpenseLine,
	} {
		_, ok := referenceTables[f]
		assert.True(t, ok, "family %s has no table", f)
	}
}
