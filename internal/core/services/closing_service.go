package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

// systemActor stamps closings created on demand.
const systemActor = "system"

type closingService struct {
	BaseService
}

// NewClosingService creates the monthly closing engine.
func NewClosingService(deps Dependencies) portssvc.ClosingSvcFacade {
	return &closingService{BaseService: deps.base()}
}

// GetCurrentClosing returns the closing of the calendar period, creating it
// with the previous period's net as opening when the previous period is closed.
func (s *closingService) GetCurrentClosing(ctx context.Context) (*domain.Closing, error) {
	period := domain.PeriodOf(s.now())
	c, err := s.TxManager.Reader().Closings().FindClosingByPeriod(ctx, period)
	if err == nil {
		return c, nil
	}
	if !isNotFound(err) {
		s.LogError(ctx, err, "Failed to find current closing", slog.String("period", period.String()))
		return nil, err
	}

	var created *domain.Closing
	err = s.TxManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		c, err := s.openClosing(ctx, tx, period)
		created = c
		return err
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		// Another caller created it first.
		return s.TxManager.Reader().Closings().FindClosingByPeriod(ctx, period)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to create current closing", slog.String("period", period.String()))
		return nil, err
	}
	s.LogInfo(ctx, "Closing opened",
		slog.String("period", period.String()),
		slog.String("opening_cdf", created.Opening.CDF.StringFixed(2)),
		slog.String("opening_usd", created.Opening.USD.StringFixed(2)))
	return created, nil
}

// openClosing inserts the closing of period. Its opening is the previous
// period's net once that period is closed. A previous period that was never
// closed stays open and lapsed: it can no longer be closed and carries nothing.
func (s *closingService) openClosing(ctx context.Context, tx portsrepo.Store, period domain.Period) (*domain.Closing, error) {
	var opening domain.CurrencyTotals
	prev, err := tx.Closings().FindClosingByPeriod(ctx, period.Prev())
	switch {
	case err == nil:
		if prev.IsClosed() {
			opening = prev.Net
		} else {
			s.LogWarn(ctx, "Previous period was never closed, opening at zero",
				slog.String("period", period.String()),
				slog.String("lapsed_period", prev.Period.String()))
		}
	case !isNotFound(err):
		return nil, err
	}
	c := domain.NewClosing(period, opening, systemActor, s.now())
	if err := tx.Closings().SaveClosing(ctx, *c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *closingService) GetClosing(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	c, err := s.TxManager.Reader().Closings().FindClosingByPeriod(ctx, period)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find closing", slog.String("period", period.String()))
		}
		return nil, err
	}
	return c, nil
}

func (s *closingService) ListClosings(ctx context.Context, params dto.ListClosingsParams) (*dto.ListClosingsResponse, error) {
	filter, err := mapping.ToClosingFilter(params)
	if err != nil {
		return nil, err
	}
	closings, err := s.TxManager.Reader().Closings().ListClosings(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list closings")
		return nil, fmt.Errorf("failed to list closings: %w", err)
	}
	page, next := pagination.Trim(closings, dto.ClampLimit(params.Limit), func(c domain.Closing) string { return c.Period.String() })
	return &dto.ListClosingsResponse{Closings: dto.ToListClosingResponse(page), NextToken: next}, nil
}

// ComputeBalances refreshes receipts and expenses of an open closing. Running
// it twice with no intervening change yields the same figures.
func (s *closingService) ComputeBalances(ctx context.Context, period domain.Period, actor string) (*domain.Closing, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var computed *domain.Closing
	err := s.execute(ctx, domain.CmdComputeBalances, func(ctx context.Context, tx portsrepo.Store) error {
		c, err := s.lockClosing(ctx, tx, period)
		if err != nil {
			return err
		}
		if c.IsClosed() {
			return fmt.Errorf("%w: period %s is closed", apperrors.ErrInvalidStateTransition, period)
		}
		if err := s.refresh(ctx, tx, c); err != nil {
			return err
		}
		c.Touch(actor, s.now())
		if err := tx.Closings().UpdateClosing(ctx, *c); err != nil {
			return err
		}
		computed = c
		return s.journal(ctx, tx, domain.CmdComputeBalances, actor, period.String(), dto.ToClosingResponse(c))
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Closing balances computed",
		slog.String("period", period.String()),
		slog.String("net_cdf", computed.Net.CDF.StringFixed(2)),
		slog.String("net_usd", computed.Net.USD.StringFixed(2)))
	return computed, nil
}

// ClosePeriod refreshes, freezes and carries the net of period forward, all in one transaction.
func (s *closingService) ClosePeriod(ctx context.Context, period domain.Period, req dto.ClosePeriodRequest, actor string) (*domain.Closing, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var closed *domain.Closing
	err := s.execute(ctx, domain.CmdClosePeriod, func(ctx context.Context, tx portsrepo.Store) error {
		c, err := s.lockClosing(ctx, tx, period)
		if err != nil {
			return err
		}
		now := s.now()
		if err := c.CanClose(now, s.Policy.ClosingStrictness); err != nil {
			return err
		}
		if err := s.refresh(ctx, tx, c); err != nil {
			return err
		}
		c.Close(actor, req.Observation, now)
		if err := tx.Closings().UpdateClosing(ctx, *c); err != nil {
			return err
		}
		if err := s.carryForward(ctx, tx, c, actor); err != nil {
			return err
		}
		closed = c
		return s.journal(ctx, tx, domain.CmdClosePeriod, actor, period.String(), req)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Period closed",
		slog.String("period", period.String()),
		slog.String("net_cdf", closed.Net.CDF.StringFixed(2)),
		slog.String("net_usd", closed.Net.USD.StringFixed(2)))
	return closed, nil
}

// lockClosing locks the closing row of period. The current period is created when missing.
func (s *closingService) lockClosing(ctx context.Context, tx portsrepo.Store, period domain.Period) (*domain.Closing, error) {
	c, err := tx.Closings().FindClosingByPeriodForUpdate(ctx, period)
	if err == nil || !isNotFound(err) || period != domain.PeriodOf(s.now()) {
		return c, err
	}
	if _, err := s.openClosing(ctx, tx, period); err != nil {
		return nil, err
	}
	return tx.Closings().FindClosingByPeriodForUpdate(ctx, period)
}

func (s *closingService) refresh(ctx context.Context, tx portsrepo.Store, c *domain.Closing) error {
	receipts, err := tx.Receipts().SumValidatedReceipts(ctx, c.Period)
	if err != nil {
		return fmt.Errorf("failed to sum receipts of %s: %w", c.Period, err)
	}
	expenses, err := tx.ExpenseLines().SumExpenseLines(ctx, c.Period)
	if err != nil {
		return fmt.Errorf("failed to sum expenses of %s: %w", c.Period, err)
	}
	c.ApplyBalances(receipts, expenses, s.now())
	return nil
}

// carryForward sets the next period's opening to the net of c.
func (s *closingService) carryForward(ctx context.Context, tx portsrepo.Store, c *domain.Closing, actor string) error {
	nextPeriod := c.Period.Next()
	next, err := tx.Closings().FindClosingByPeriodForUpdate(ctx, nextPeriod)
	if isNotFound(err) {
		return tx.Closings().SaveClosing(ctx, *domain.NewClosing(nextPeriod, c.Net, actor, s.now()))
	}
	if err != nil {
		return err
	}
	if next.IsClosed() {
		return s.integrityFailure(ctx, "closing_carry_forward",
			fmt.Errorf("%w: period %s is closed before %s", apperrors.ErrIntegrity, nextPeriod, c.Period))
	}
	next.Opening = c.Net
	next.Touch(actor, s.now())
	return tx.Closings().UpdateClosing(ctx, *next)
}
