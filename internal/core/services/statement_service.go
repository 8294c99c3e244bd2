package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

type statementService struct {
	BaseService
	refs *ReferenceGenerator
}

// NewStatementService creates the statement service.
func NewStatementService(deps Dependencies, refs *ReferenceGenerator) portssvc.StatementSvcFacade {
	return &statementService{BaseService: deps.base(), refs: refs}
}

func (s *statementService) OpenStatement(ctx context.Context, req dto.OpenStatementRequest, actor string) (*domain.Statement, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	var opened *domain.Statement
	err = s.execute(ctx, domain.CmdOpenStatement, func(ctx context.Context, tx portsrepo.Store) error {
		if _, err := tx.Statements().FindStatementByPeriod(ctx, period); err == nil {
			return fmt.Errorf("%w (%s)", apperrors.ErrStatementPeriodConflict, period)
		} else if !isNotFound(err) {
			return err
		}

		number, err := s.refs.Next(ctx, tx, domain.ScopeOf(domain.FamilyStatement))
		if err != nil {
			return err
		}
		now := s.now()
		st := domain.Statement{
			Number:      number,
			Period:      period,
			Members:     []string{},
			Validator:   actor,
			ValidatedAt: now,
			Observation: req.Observation,
			AuditFields: domain.NewAuditFields(actor, now),
		}
		if err := tx.Statements().SaveStatement(ctx, st); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w (%s)", apperrors.ErrStatementPeriodConflict, period)
			}
			return err
		}
		opened = &st
		return s.journal(ctx, tx, domain.CmdOpenStatement, actor, number, req)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Statement opened",
		slog.String("number", opened.Number),
		slog.String("period", period.String()))
	return opened, nil
}

func (s *statementService) AddMembers(ctx context.Context, number string, refs []string, actor string) (*domain.Statement, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	refs, err := normaliseRefs(refs)
	if err != nil {
		return nil, err
	}

	var updated *domain.Statement
	err = s.execute(ctx, domain.CmdAddStatementMembers, func(ctx context.Context, tx portsrepo.Store) error {
		st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if err := st.EnsureOpen(); err != nil {
			return err
		}

		requests, err := tx.Requests().FindRequestsByRefsForUpdate(ctx, refs)
		if err != nil {
			return err
		}
		if err := requireAll(refs, requests); err != nil {
			return err
		}
		for _, r := range requests {
			if !r.State.Statementable() {
				return fmt.Errorf("%w: request %s is %s and cannot join a statement", apperrors.ErrInvalidStateTransition, r.Reference, r.State)
			}
		}

		if err := tx.Statements().AddMembers(ctx, number, refs); err != nil {
			return err
		}
		st.Members = append(slices.Clone(st.Members), refs...)
		slices.Sort(st.Members)

		if err := s.refreshTotals(ctx, tx, st, actor); err != nil {
			return err
		}
		updated = st
		return s.journal(ctx, tx, domain.CmdAddStatementMembers, actor, number, refs)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Statement members added",
		slog.String("number", number),
		slog.Int("added", len(refs)))
	return updated, nil
}

func (s *statementService) RecomputeTotals(ctx context.Context, number string, actor string) (*domain.Statement, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var updated *domain.Statement
	err := s.execute(ctx, domain.CmdRecomputeStatement, func(ctx context.Context, tx portsrepo.Store) error {
		st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if err := s.refreshTotals(ctx, tx, st, actor); err != nil {
			return err
		}
		updated = st
		return s.journal(ctx, tx, domain.CmdRecomputeStatement, actor, number, st.Totals)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *statementService) SealExpenses(ctx context.Context, number string, actor string) (*domain.Statement, []domain.ExpenseLine, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}

	var (
		sealed *domain.Statement
		lines  []domain.ExpenseLine
	)
	err := s.execute(ctx, domain.CmdSealStatement, func(ctx context.Context, tx portsrepo.Store) error {
		st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if st.ExpensesValidated {
			// Already sealed: return what exists without touching anything.
			sealed = st
			lines, err = tx.ExpenseLines().ListExpenseLinesByStatement(ctx, number)
			return err
		}
		if len(st.Members) == 0 {
			return fmt.Errorf("%w: statement %s has no members to seal", apperrors.ErrValidation, number)
		}
		if err := s.ensurePeriodOpen(ctx, tx, st.Period); err != nil {
			return err
		}

		members, err := tx.Requests().FindRequestsByRefsForUpdate(ctx, st.Members)
		if err != nil {
			return err
		}
		now := s.now()
		st.Totals = domain.ComputeStatementTotals(members, s.Policy.IPRRate, s.Policy.Rounding)
		st.Seal(actor, now)

		lines = make([]domain.ExpenseLine, 0, len(members))
		for _, r := range members {
			code, err := s.refs.Next(ctx, tx, domain.ExpenseLineScope(st.Period))
			if err != nil {
				return err
			}
			lines = append(lines, domain.NewExpenseLine(code, st, r, actor, now))
		}
		if err := tx.ExpenseLines().SaveExpenseLines(ctx, lines); err != nil {
			return err
		}
		if err := s.checkStatement(ctx, st, members); err != nil {
			return err
		}
		if err := tx.Statements().UpdateStatement(ctx, *st); err != nil {
			return err
		}
		sealed = st
		return s.journal(ctx, tx, domain.CmdSealStatement, actor, number, map[string]any{
			"expenseLines": len(lines),
			"totals":       st.Totals,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Statement expenses sealed",
		slog.String("number", number),
		slog.Int("expense_lines", len(lines)))
	return sealed, lines, nil
}

func (s *statementService) GetStatement(ctx context.Context, number string) (*domain.Statement, error) {
	st, err := s.TxManager.Reader().Statements().FindStatementByNumber(ctx, number)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find statement", slog.String("number", number))
		}
		return nil, err
	}
	return st, nil
}

func (s *statementService) ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error) {
	filter, err := mapping.ToStatementFilter(params)
	if err != nil {
		return nil, err
	}
	statements, err := s.TxManager.Reader().Statements().ListStatements(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list statements")
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	page, next := pagination.Trim(statements, dto.ClampLimit(params.Limit), func(st domain.Statement) string { return st.Number })
	return &dto.ListStatementsResponse{Statements: dto.ToListStatementResponse(page), NextToken: next}, nil
}

func (s *statementService) ListExpenseLines(ctx context.Context, number string) ([]domain.ExpenseLine, error) {
	reader := s.TxManager.Reader()
	if _, err := reader.Statements().FindStatementByNumber(ctx, number); err != nil {
		return nil, err
	}
	return reader.ExpenseLines().ListExpenseLinesByStatement(ctx, number)
}

// refreshTotals recomputes totals and the settled flag from the current members and saves the statement.
func (s *statementService) refreshTotals(ctx context.Context, tx portsrepo.Store, st *domain.Statement, actor string) error {
	members, err := tx.Requests().FindRequestsByRefs(ctx, st.Members)
	if err != nil {
		return err
	}
	now := s.now()
	st.Totals = domain.ComputeStatementTotals(members, s.Policy.IPRRate, s.Policy.Rounding)
	st.RefreshSettlement(members, now)
	st.Touch(actor, now)
	if err := s.checkStatement(ctx, st, members); err != nil {
		return err
	}
	return tx.Statements().UpdateStatement(ctx, *st)
}

// checkStatement verifies stored totals against members and member states.
func (s *BaseService) checkStatement(ctx context.Context, st *domain.Statement, members []domain.Request) error {
	if len(members) != len(st.Members) {
		err := fmt.Errorf("%w: statement %s lists %d members, %d found", apperrors.ErrIntegrity, st.Number, len(st.Members), len(members))
		return s.integrityFailure(ctx, "statement_members", err)
	}
	for _, r := range members {
		if !r.State.Statementable() {
			err := fmt.Errorf("%w: member %s of %s is %s", apperrors.ErrIntegrity, r.Reference, st.Number, r.State)
			return s.integrityFailure(ctx, "statement_members", err)
		}
	}
	if err := st.CheckTotals(members, s.Policy.IPRRate, s.Policy.Rounding); err != nil {
		return s.integrityFailure(ctx, "statement_totals", err)
	}
	return nil
}

// normaliseRefs trims, drops blanks and duplicates, and sorts.
func normaliseRefs(refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one request reference is required", apperrors.ErrValidation)
	}
	return out, nil
}

// requireAll reports the references that did not resolve to a request.
func requireAll(refs []string, found []domain.Request) error {
	if len(found) == len(refs) {
		return nil
	}
	var missing []string
	for _, ref := range refs {
		if !slices.ContainsFunc(found, func(r domain.Request) bool { return r.Reference == ref }) {
			missing = append(missing, ref)
		}
	}
	return fmt.Errorf("%w: requests %s", apperrors.ErrNotFound, strings.Join(missing, ", "))
}
