package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

func (s *store) FindStatementByNumber(ctx context.Context, number string) (*domain.Statement, error) {
	var (
		st domain.Statement
		ok bool
	)
	s.read(func(state *state) { st, ok = state.statements[number] })
	if !ok {
		return nil, fmt.Errorf("%w: statement %s", apperrors.ErrNotFound, number)
	}
	st = st.Clone()
	return &st, nil
}

func (s *store) FindStatementByNumberForUpdate(ctx context.Context, number string) (*domain.Statement, error) {
	return s.FindStatementByNumber(ctx, number)
}

func (s *store) FindStatementByPeriod(ctx context.Context, period domain.Period) (*domain.Statement, error) {
	var found *domain.Statement
	s.read(func(state *state) {
		for _, st := range state.statements {
			if st.Period == period {
				c := st.Clone()
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: statement for period %s", apperrors.ErrNotFound, period)
	}
	return found, nil
}

func (s *store) FindStatementByMember(ctx context.Context, requestRef string) (*domain.Statement, error) {
	var (
		number string
		ok     bool
	)
	s.read(func(state *state) { number, ok = state.members[requestRef] })
	if !ok {
		return nil, fmt.Errorf("%w: request %s is not attached to a statement", apperrors.ErrNotFound, requestRef)
	}
	return s.FindStatementByNumber(ctx, number)
}

func (s *store) ListStatements(ctx context.Context, filter portsrepo.StatementFilter) ([]domain.Statement, error) {
	var out []domain.Statement
	s.read(func(state *state) {
		out = page(state.statements, filter.AfterNumber, filter.Limit, func(st domain.Statement) bool {
			if filter.Year != 0 && st.Period.Year != filter.Year {
				return false
			}
			if filter.Sealed != nil && st.ExpensesValidated != *filter.Sealed {
				return false
			}
			return filter.Settled == nil || st.Settled == *filter.Settled
		})
	})
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out, nil
}

func (s *store) SaveStatement(ctx context.Context, statement domain.Statement) error {
	var err error
	s.write(func(state *state) {
		if _, exists := state.statements[statement.Number]; exists {
			err = fmt.Errorf("%w: statement %s", apperrors.ErrDuplicate, statement.Number)
			return
		}
		for _, st := range state.statements {
			if st.Period == statement.Period {
				err = fmt.Errorf("%w: period %s already has statement %s", apperrors.ErrDuplicate, statement.Period, st.Number)
				return
			}
		}
		statement = statement.Clone()
		statement.Members = nil
		state.statements[statement.Number] = statement
	})
	return err
}

func (s *store) UpdateStatement(ctx context.Context, statement domain.Statement) error {
	var err error
	s.write(func(state *state) {
		current, exists := state.statements[statement.Number]
		if !exists {
			err = fmt.Errorf("%w: statement %s", apperrors.ErrNotFound, statement.Number)
			return
		}
		// Membership is owned by AddMembers.
		statement = statement.Clone()
		statement.Members = current.Members
		state.statements[statement.Number] = statement
	})
	return err
}

func (s *store) AddMembers(ctx context.Context, number string, requestRefs []string) error {
	var err error
	s.write(func(state *state) {
		st, exists := state.statements[number]
		if !exists {
			err = fmt.Errorf("%w: statement %s", apperrors.ErrNotFound, number)
			return
		}
		for _, ref := range requestRefs {
			if owner, taken := state.members[ref]; taken {
				err = fmt.Errorf("%w: request %s already belongs to %s", apperrors.ErrMembershipConflict, ref, owner)
				return
			}
		}
		members := slices.Clone(st.Members)
		for _, ref := range requestRefs {
			state.members[ref] = number
			members = append(members, ref)
		}
		slices.Sort(members)
		st.Members = members
		state.statements[number] = st
	})
	return err
}

func (s *store) SaveExpenseLines(ctx context.Context, lines []domain.ExpenseLine) error {
	var err error
	s.write(func(state *state) {
		for _, l := range lines {
			for _, existing := range state.expenseLines {
				if existing.Code == l.Code {
					err = fmt.Errorf("%w: expense line %s", apperrors.ErrDuplicate, l.Code)
					return
				}
			}
		}
		state.expenseLines = append(state.expenseLines, lines...)
	})
	return err
}

func (s *store) ListExpenseLinesByStatement(ctx context.Context, number string) ([]domain.ExpenseLine, error) {
	out := make([]domain.ExpenseLine, 0)
	s.read(func(state *state) {
		for _, l := range state.expenseLines {
			if l.StatementNumber == number {
				out = append(out, l)
			}
		}
	})
	return out, nil
}

func (s *store) SumExpenseLines(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error) {
	var totals domain.CurrencyTotals
	s.read(func(state *state) {
		for _, l := range state.expenseLines {
			if l.Period == period {
				totals.CDF = totals.CDF.Add(l.Amounts.CDF)
				totals.USD = totals.USD.Add(l.Amounts.USD)
			}
		}
	})
	return totals, nil
}
