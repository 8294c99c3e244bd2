package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/core/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeReferences is a counter store whose in-use references are set by the test.
// A frozen counter never moves, neither on draw nor on advance.
type fakeReferences struct {
	counters map[string]int64
	inUse    map[string]bool
	frozen   bool
	advanced []int64
}

func newFakeReferences(inUse ...string) *fakeReferences {
	f := &fakeReferences{counters: map[string]int64{}, inUse: map[string]bool{}}
	for _, ref := range inUse {
		f.inUse[ref] = true
	}
	return f
}

func (f *fakeReferences) NextSequence(ctx context.Context, key string) (int64, error) {
	if !f.frozen {
		f.counters[key]++
	}
	return f.counters[key], nil
}

func (f *fakeReferences) AdvanceSequence(ctx context.Context, key string, floor int64) error {
	f.advanced = append(f.advanced, floor)
	if !f.frozen && f.counters[key] < floor {
		f.counters[key] = floor
	}
	return nil
}

func (f *fakeReferences) ReferenceExists(ctx context.Context, scope domain.ReferenceScope, ref string) (bool, error) {
	return f.inUse[ref], nil
}

func (f *fakeReferences) MaxSequenceInUse(ctx context.Context, scope domain.ReferenceScope) (int64, error) {
	var highest int64
	for ref := range f.inUse {
		if n, ok := scope.Sequence(ref); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

// referenceStore exposes only References; the generator touches nothing else.
type referenceStore struct {
	portsrepo.Store
	refs *fakeReferences
}

func (s referenceStore) References() portsrepo.ReferenceRepository { return s.refs }

func TestReferenceGenerator_Sequential(t *testing.T) {
	refs := newFakeReferences()
	gen := services.NewReferenceGenerator(3)
	tx := referenceStore{refs: refs}

	first, err := gen.Next(context.Background(), tx, domain.ScopeOf(domain.FamilyPayment))
	require.NoError(t, err)
	second, err := gen.Next(context.Background(), tx, domain.ScopeOf(domain.FamilyPayment))
	require.NoError(t, err)

	assert.Equal(t, "PAY-000001", first)
	assert.Equal(t, "PAY-000002", second)
	assert.Empty(t, refs.advanced)
}

func TestReferenceGenerator_CollisionRescansToHighest(t *testing.T) {
	refs := newFakeReferences("DEM-000001", "DEM-000002", "DEM-000003")
	gen := services.NewReferenceGenerator(3)

	ref, err := gen.Next(context.Background(), referenceStore{refs: refs}, domain.ScopeOf(domain.FamilyRequest))
	require.NoError(t, err)

	assert.Equal(t, "DEM-000004", ref)
	assert.Equal(t, []int64{3}, refs.advanced, "one rescan lifts the counter past every reference in use")
}

func TestReferenceGenerator_ExpenseLinesPerPeriod(t *testing.T) {
	refs := newFakeReferences("DEP-2024-03-0001")
	gen := services.NewReferenceGenerator(2)
	tx := referenceStore{refs: refs}

	march, err := gen.Next(context.Background(), tx, domain.ExpenseLineScope(domain.Period{Month: 3, Year: 2024}))
	require.NoError(t, err)
	april, err := gen.Next(context.Background(), tx, domain.ExpenseLineScope(domain.Period{Month: 4, Year: 2024}))
	require.NoError(t, err)

	assert.Equal(t, "DEP-2024-03-0002", march)
	assert.Equal(t, "DEP-2024-04-0001", april)
}

func TestReferenceGenerator_ExhaustedAfterBoundedAttempts(t *testing.T) {
	refs := newFakeReferences("REC-000001")
	refs.counters["REC"] = 1
	refs.frozen = true

	_, err := services.NewReferenceGenerator(1).Next(context.Background(), referenceStore{refs: refs}, domain.ScopeOf(domain.FamilyReceipt))
	assert.ErrorIs(t, err, apperrors.ErrReferenceExhausted)
	assert.Len(t, refs.advanced, 1)

	refs.advanced = nil
	_, err = services.NewReferenceGenerator(4).Next(context.Background(), referenceStore{refs: refs}, domain.ScopeOf(domain.FamilyReceipt))
	assert.ErrorIs(t, err, apperrors.ErrReferenceExhausted)
	assert.Len(t, refs.advanced, 4, "every attempt rescans before giving up")
}

func TestReferenceGenerator_ExhaustedPastWidth(t *testing.T) {
	tests := []struct {
		name  string
		scope domain.ReferenceScope
	}{
		{"six digit family", domain.ScopeOf(domain.FamilyCheque)},
		{"four digit expense lines", domain.ExpenseLineScope(domain.Period{Month: 12, Year: 2024})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := newFakeReferences()
			refs.counters[tt.scope.Key()] = tt.scope.Max()

			_, err := services.NewReferenceGenerator(5).Next(context.Background(), referenceStore{refs: refs}, tt.scope)
			assert.ErrorIs(t, err, apperrors.ErrReferenceExhausted)
			assert.Contains(t, err.Error(), fmt.Sprint(tt.scope.Max()))
		})
	}
}

func TestReferenceGenerator_DefaultAttempts(t *testing.T) {
	refs := newFakeReferences("CHQ-000001")
	refs.counters["CHQ"] = 1
	refs.frozen = true

	_, err := services.NewReferenceGenerator(0).Next(context.Background(), referenceStore{refs: refs}, domain.ScopeOf(domain.FamilyCheque))
	assert.ErrorIs(t, err, apperrors.ErrReferenceExhausted)
	assert.Len(t, refs.advanced, services.DefaultReferenceAttempts)
}

type ReferenceServiceTestSuite struct {
	KernelSuite
}

func TestReferenceService(t *testing.T) {
	suite.Run(t, new(ReferenceServiceTestSuite))
}

// Requests restored behind the counter's back must not be overwritten.
func (s *ReferenceServiceTestSuite) TestCreateRequestSkipsRestoredReferences() {
	err := s.db.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Store) error {
		for n := 1; n <= 3; n++ {
			r, err := domain.NewRequest(fmt.Sprintf("DEM-%06d", n), author, "logistics", "6011", "restored",
				domain.MustAmount(domain.USD, "10.00"), nil, s.clock.Now())
			if err != nil {
				return err
			}
			if err := tx.Requests().SaveRequest(ctx, *r); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	created, err := s.svc.Request.CreateRequest(s.ctx, dto.CreateRequestRequest{
		Service:     "logistics",
		NatureCode:  "6011",
		Description: "fuel",
		Total:       dto.AmountDTO{Currency: "USD", Value: domain.MustAmount(domain.USD, "25.00").Value},
	}, author)
	s.Require().NoError(err)
	s.Equal("DEM-000004", created.Reference)

	next := s.validatedRequest(domain.USD, "5.00")
	s.Equal("DEM-000005", next.Reference)
}
