package pgsql

import (
	"context"
	"fmt"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
)

const closingColumns = `period, status, opening_cdf, opening_usd, receipts_cdf, receipts_usd, expenses_cdf, expenses_usd,
	net_cdf, net_usd, computed_at, closed_by, closed_at, observation, created_at, created_by, last_updated_at, last_updated_by`

type PgxClosingRepository struct {
	db querier
}

func newPgxClosingRepository(db querier) *PgxClosingRepository {
	return &PgxClosingRepository{db: db}
}

var _ portsrepo.ClosingRepositoryFacade = (*PgxClosingRepository)(nil)

func toModelClosing(d domain.Closing) models.Closing {
	return models.Closing{
		Period:      d.Period.String(),
		Status:      string(d.Status),
		OpeningCDF:  d.Opening.CDF,
		OpeningUSD:  d.Opening.USD,
		ReceiptsCDF: d.Receipts.CDF,
		ReceiptsUSD: d.Receipts.USD,
		ExpensesCDF: d.Expenses.CDF,
		ExpensesUSD: d.Expenses.USD,
		NetCDF:      d.Net.CDF,
		NetUSD:      d.Net.USD,
		ComputedAt:  d.ComputedAt,
		ClosedBy:    d.ClosedBy,
		ClosedAt:    d.ClosedAt,
		Observation: d.Observation,
		AuditFields: toModelAudit(d.AuditFields),
	}
}

func toDomainClosing(m models.Closing) (domain.Closing, error) {
	period, err := domain.ParsePeriod(m.Period)
	if err != nil {
		return domain.Closing{}, fmt.Errorf("closing has a corrupt period: %w", err)
	}
	return domain.Closing{
		Period:      period,
		Status:      domain.ClosingStatus(m.Status),
		Opening:     domain.CurrencyTotals{CDF: m.OpeningCDF, USD: m.OpeningUSD},
		Receipts:    domain.CurrencyTotals{CDF: m.ReceiptsCDF, USD: m.ReceiptsUSD},
		Expenses:    domain.CurrencyTotals{CDF: m.ExpensesCDF, USD: m.ExpensesUSD},
		Net:         domain.CurrencyTotals{CDF: m.NetCDF, USD: m.NetUSD},
		ComputedAt:  m.ComputedAt,
		ClosedBy:    m.ClosedBy,
		ClosedAt:    m.ClosedAt,
		Observation: m.Observation,
		AuditFields: toDomainAudit(m.AuditFields),
	}, nil
}

func (r *PgxClosingRepository) SaveClosing(ctx context.Context, closing domain.Closing) error {
	m := toModelClosing(closing)
	query := `
		INSERT INTO closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.db.Exec(ctx, query,
		m.Period, m.Status, m.OpeningCDF, m.OpeningUSD, m.ReceiptsCDF, m.ReceiptsUSD, m.ExpensesCDF, m.ExpensesUSD,
		m.NetCDF, m.NetUSD, m.ComputedAt, m.ClosedBy, m.ClosedAt, m.Observation,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: closing %s", apperrors.ErrDuplicate, m.Period)
		}
		return fmt.Errorf("failed to save closing %s: %w", m.Period, err)
	}
	return nil
}

func (r *PgxClosingRepository) UpdateClosing(ctx context.Context, closing domain.Closing) error {
	m := toModelClosing(closing)
	query := `
		UPDATE closings
		SET status = $1, opening_cdf = $2, opening_usd = $3, receipts_cdf = $4, receipts_usd = $5,
			expenses_cdf = $6, expenses_usd = $7, net_cdf = $8, net_usd = $9, computed_at = $10,
			closed_by = $11, closed_at = $12, observation = $13, last_updated_at = $14, last_updated_by = $15
		WHERE period = $16;
	`
	tag, err := r.db.Exec(ctx, query,
		m.Status, m.OpeningCDF, m.OpeningUSD, m.ReceiptsCDF, m.ReceiptsUSD,
		m.ExpensesCDF, m.ExpensesUSD, m.NetCDF, m.NetUSD, m.ComputedAt,
		m.ClosedBy, m.ClosedAt, m.Observation, m.LastUpdatedAt, m.LastUpdatedBy, m.Period,
	)
	if err != nil {
		return fmt.Errorf("failed to update closing %s: %w", m.Period, err)
	}
	return expectOne(tag, "closing", m.Period)
}

func (r *PgxClosingRepository) FindClosingByPeriod(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	return r.findClosing(ctx, `SELECT `+closingColumns+` FROM closings WHERE period = $1;`, period)
}

func (r *PgxClosingRepository) FindClosingByPeriodForUpdate(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	return r.findClosing(ctx, `SELECT `+closingColumns+` FROM closings WHERE period = $1 FOR UPDATE;`, period)
}

func (r *PgxClosingRepository) findClosing(ctx context.Context, query string, period domain.Period) (*domain.Closing, error) {
	rows, err := r.db.Query(ctx, query, period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query closing %s: %w", period, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Closing])
	if err != nil {
		return nil, notFoundOr(err, "closing", period.String())
	}
	c, err := toDomainClosing(m)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxClosingRepository) ListClosings(ctx context.Context, filter portsrepo.ClosingFilter) ([]domain.Closing, error) {
	var w where
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}
	if filter.AfterPeriod != nil {
		w.add("period > ?", filter.AfterPeriod.String())
	}
	query := `SELECT ` + closingColumns + ` FROM closings` + w.clause() + ` ORDER BY period` + w.limit(filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list closings: %w", err)
	}
	modelClosings, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Closing])
	if err != nil {
		return nil, fmt.Errorf("failed to scan closings: %w", err)
	}
	closings := make([]domain.Closing, 0, len(modelClosings))
	for _, m := range modelClosings {
		c, err := toDomainClosing(m)
		if err != nil {
			return nil, err
		}
		closings = append(closings, c)
	}
	return closings, nil
}
