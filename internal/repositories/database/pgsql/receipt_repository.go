package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
)

const receiptColumns = `reference, bank, amount_usd, amount_cdf, encashed_on, author, validated, validated_by, validated_at,
	posted_movement_ids, deleted_at, deleted_by, created_at, created_by, last_updated_at, last_updated_by`

type PgxReceiptRepository struct {
	db querier
}

func newPgxReceiptRepository(db querier) *PgxReceiptRepository {
	return &PgxReceiptRepository{db: db}
}

var _ portsrepo.ReceiptRepositoryFacade = (*PgxReceiptRepository)(nil)

func toModelReceipt(d domain.Receipt) models.Receipt {
	posted := d.PostedMovementIDs
	if posted == nil {
		posted = []string{}
	}
	return models.Receipt{
		Reference:         d.Reference,
		Bank:              d.Bank,
		AmountUSD:         d.AmountUSD,
		AmountCDF:         d.AmountCDF,
		EncashedOn:        d.EncashedOn,
		Author:            d.Author,
		Validated:         d.Validated,
		ValidatedBy:       d.ValidatedBy,
		ValidatedAt:       d.ValidatedAt,
		PostedMovementIDs: posted,
		DeletedAt:         d.DeletedAt,
		DeletedBy:         d.DeletedBy,
		AuditFields:       toModelAudit(d.AuditFields),
	}
}

func toDomainReceipt(m models.Receipt) domain.Receipt {
	var posted []string
	if len(m.PostedMovementIDs) > 0 {
		posted = m.PostedMovementIDs
	}
	return domain.Receipt{
		Reference:         m.Reference,
		Bank:              m.Bank,
		AmountUSD:         m.AmountUSD,
		AmountCDF:         m.AmountCDF,
		EncashedOn:        m.EncashedOn.UTC(),
		Author:            m.Author,
		Validated:         m.Validated,
		ValidatedBy:       m.ValidatedBy,
		ValidatedAt:       m.ValidatedAt,
		PostedMovementIDs: posted,
		DeletedAt:         m.DeletedAt,
		DeletedBy:         m.DeletedBy,
		AuditFields:       toDomainAudit(m.AuditFields),
	}
}

func (r *PgxReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := toModelReceipt(receipt)
	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.db.Exec(ctx, query,
		m.Reference, m.Bank, m.AmountUSD, m.AmountCDF, m.EncashedOn, m.Author, m.Validated, m.ValidatedBy, m.ValidatedAt,
		m.PostedMovementIDs, m.DeletedAt, m.DeletedBy, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: receipt %s", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to save receipt %s: %w", m.Reference, err)
	}
	return nil
}

func (r *PgxReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	m := toModelReceipt(receipt)
	query := `
		UPDATE receipts
		SET validated = $1, validated_by = $2, validated_at = $3, posted_movement_ids = $4,
			deleted_at = $5, deleted_by = $6, last_updated_at = $7, last_updated_by = $8
		WHERE reference = $9;
	`
	tag, err := r.db.Exec(ctx, query,
		m.Validated, m.ValidatedBy, m.ValidatedAt, m.PostedMovementIDs,
		m.DeletedAt, m.DeletedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Reference,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt %s: %w", m.Reference, err)
	}
	return expectOne(tag, "receipt", m.Reference)
}

func (r *PgxReceiptRepository) FindReceiptByRef(ctx context.Context, ref string) (*domain.Receipt, error) {
	return r.findReceipt(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE reference = $1;`, ref)
}

func (r *PgxReceiptRepository) FindReceiptByRefForUpdate(ctx context.Context, ref string) (*domain.Receipt, error) {
	return r.findReceipt(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE reference = $1 FOR UPDATE;`, ref)
}

func (r *PgxReceiptRepository) findReceipt(ctx context.Context, query, ref string) (*domain.Receipt, error) {
	rows, err := r.db.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt %s: %w", ref, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Receipt])
	if err != nil {
		return nil, notFoundOr(err, "receipt", ref)
	}
	rec := toDomainReceipt(m)
	return &rec, nil
}

func (r *PgxReceiptRepository) ListReceipts(ctx context.Context, filter portsrepo.ReceiptFilter) ([]domain.Receipt, error) {
	var w where
	if !filter.IncludeDeleted {
		w.conds = append(w.conds, "deleted_at IS NULL")
	}
	if filter.Bank != "" {
		w.add("bank = ?", filter.Bank)
	}
	if filter.Validated != nil {
		w.add("validated = ?", *filter.Validated)
	}
	if filter.Period != nil {
		from, to := periodDates(*filter.Period)
		w.add("encashed_on >= ?::date", from)
		w.add("encashed_on < ?::date", to)
	}
	if filter.AfterRef != "" {
		w.add("reference > ?", filter.AfterRef)
	}
	query := `SELECT ` + receiptColumns + ` FROM receipts` + w.clause() + ` ORDER BY reference` + w.limit(filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	modelReceipts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Receipt])
	if err != nil {
		return nil, fmt.Errorf("failed to scan receipts: %w", err)
	}
	receipts := make([]domain.Receipt, 0, len(modelReceipts))
	for _, m := range modelReceipts {
		receipts = append(receipts, toDomainReceipt(m))
	}
	return receipts, nil
}

// SumValidatedReceipts totals validated, live receipts encashed in period.
func (r *PgxReceiptRepository) SumValidatedReceipts(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error) {
	query := `
		SELECT COALESCE(SUM(amount_cdf), 0), COALESCE(SUM(amount_usd), 0)
		FROM receipts
		WHERE validated AND deleted_at IS NULL AND encashed_on >= $1::date AND encashed_on < $2::date;
	`
	from, to := periodDates(period)
	var totals domain.CurrencyTotals
	if err := r.db.QueryRow(ctx, query, from, to).Scan(&totals.CDF, &totals.USD); err != nil {
		return domain.CurrencyTotals{}, fmt.Errorf("failed to sum receipts of %s: %w", period, err)
	}
	return totals, nil
}

// periodDates renders the half-open date range of a period.
func periodDates(p domain.Period) (string, string) {
	return p.Start(time.UTC).Format(time.DateOnly), p.End(time.UTC).Format(time.DateOnly)
}
