package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

func (s *store) SaveClosing(ctx context.Context, closing domain.Closing) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.closings[closing.Period]; exists {
			err = fmt.Errorf("%w: closing %s", apperrors.ErrDuplicate, closing.Period)
			return
		}
		st.closings[closing.Period] = closing
	})
	return err
}

func (s *store) UpdateClosing(ctx context.Context, closing domain.Closing) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.closings[closing.Period]; !exists {
			err = fmt.Errorf("%w: closing %s", apperrors.ErrNotFound, closing.Period)
			return
		}
		st.closings[closing.Period] = closing
	})
	return err
}

func (s *store) FindClosingByPeriod(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	var (
		c  domain.Closing
		ok bool
	)
	s.read(func(st *state) { c, ok = st.closings[period] })
	if !ok {
		return nil, fmt.Errorf("%w: closing %s", apperrors.ErrNotFound, period)
	}
	return &c, nil
}

func (s *store) FindClosingByPeriodForUpdate(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	return s.FindClosingByPeriod(ctx, period)
}

func (s *store) ListClosings(ctx context.Context, filter portsrepo.ClosingFilter) ([]domain.Closing, error) {
	out := make([]domain.Closing, 0)
	s.read(func(st *state) {
		for _, c := range st.closings {
			if filter.Status != "" && c.Status != filter.Status {
				continue
			}
			if filter.AfterPeriod != nil && !filter.AfterPeriod.Before(c.Period) {
				continue
			}
			out = append(out, c)
		}
	})
	slices.SortFunc(out, func(a, b domain.Closing) int { return a.Period.Compare(b.Period) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *store) NextSequence(ctx context.Context, key string) (int64, error) {
	var n int64
	s.write(func(st *state) {
		st.counters[key]++
		n = st.counters[key]
	})
	return n, nil
}

func (s *store) AdvanceSequence(ctx context.Context, key string, floor int64) error {
	s.write(func(st *state) {
		if st.counters[key] < floor {
			st.counters[key] = floor
		}
	})
	return nil
}

func (s *store) ReferenceExists(ctx context.Context, scope domain.ReferenceScope, ref string) (bool, error) {
	var exists bool
	s.read(func(st *state) {
		switch scope.Family {
		case domain.FamilyRequest:
			_, exists = st.requests[ref]
		case domain.FamilyStatement:
			_, exists = st.statements[ref]
		case domain.FamilyPayment:
			_, exists = st.payments[ref]
		case domain.FamilyReceipt:
			_, exists = st.receipts[ref]
		case domain.FamilyCheque:
			_, exists = st.cheques[ref]
		case domain.FamilyExpenseLine:
			exists = slices.ContainsFunc(st.expenseLines, func(l domain.ExpenseLine) bool { return l.Code == ref })
		}
	})
	return exists, nil
}

func (s *store) MaxSequenceInUse(ctx context.Context, scope domain.ReferenceScope) (int64, error) {
	var refs []string
	s.read(func(st *state) {
		switch scope.Family {
		case domain.FamilyRequest:
			refs = keysOf(st.requests)
		case domain.FamilyStatement:
			refs = keysOf(st.statements)
		case domain.FamilyPayment:
			refs = keysOf(st.payments)
		case domain.FamilyReceipt:
			refs = keysOf(st.receipts)
		case domain.FamilyCheque:
			refs = keysOf(st.cheques)
		case domain.FamilyExpenseLine:
			for _, l := range st.expenseLines {
				refs = append(refs, l.Code)
			}
		}
	})
	var highest int64
	for _, ref := range refs {
		if n, ok := scope.Sequence(ref); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func keysOf[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (s *store) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.write(func(st *state) {
		entry.Seq = int64(len(st.journal)) + 1
		if entry.RecordedAt.IsZero() {
			entry.RecordedAt = time.Now().UTC()
		}
		st.journal = append(st.journal, entry)
	})
	return nil
}

func (s *store) ListEntries(ctx context.Context, afterSeq int64, limit int) ([]domain.JournalEntry, error) {
	out := make([]domain.JournalEntry, 0)
	s.read(func(st *state) {
		for _, e := range st.journal {
			if e.Seq <= afterSeq {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}
