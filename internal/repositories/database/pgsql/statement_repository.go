package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
)

const statementColumns = `number, period, validator, validated_at, observation, gross_cdf, gross_usd, ipr_cdf, ipr_usd,
	net_cdf, net_usd, expenses_validated, sealed_by, sealed_at, settled, settled_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxStatementRepository struct {
	db querier
}

func newPgxStatementRepository(db querier) *PgxStatementRepository {
	return &PgxStatementRepository{db: db}
}

var _ portsrepo.StatementRepositoryFacade = (*PgxStatementRepository)(nil)

func toModelStatement(d domain.Statement) models.Statement {
	return models.Statement{
		Number:            d.Number,
		Period:            d.Period.String(),
		Validator:         d.Validator,
		ValidatedAt:       d.ValidatedAt,
		Observation:       d.Observation,
		GrossCDF:          d.Totals.Gross.CDF,
		GrossUSD:          d.Totals.Gross.USD,
		IPRCDF:            d.Totals.IPR.CDF,
		IPRUSD:            d.Totals.IPR.USD,
		NetCDF:            d.Totals.Net.CDF,
		NetUSD:            d.Totals.Net.USD,
		ExpensesValidated: d.ExpensesValidated,
		SealedBy:          d.SealedBy,
		SealedAt:          d.SealedAt,
		Settled:           d.Settled,
		SettledAt:         d.SettledAt,
		AuditFields:       toModelAudit(d.AuditFields),
	}
}

func toDomainStatement(m models.Statement, members []string) (domain.Statement, error) {
	period, err := domain.ParsePeriod(m.Period)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("statement %s has a corrupt period: %w", m.Number, err)
	}
	if members == nil {
		members = []string{}
	}
	return domain.Statement{
		Number:      m.Number,
		Period:      period,
		Members:     members,
		Validator:   m.Validator,
		ValidatedAt: m.ValidatedAt,
		Observation: m.Observation,
		Totals: domain.StatementTotals{
			Gross: domain.CurrencyTotals{CDF: m.GrossCDF, USD: m.GrossUSD},
			IPR:   domain.CurrencyTotals{CDF: m.IPRCDF, USD: m.IPRUSD},
			Net:   domain.CurrencyTotals{CDF: m.NetCDF, USD: m.NetUSD},
		},
		ExpensesValidated: m.ExpensesValidated,
		SealedBy:          m.SealedBy,
		SealedAt:          m.SealedAt,
		Settled:           m.Settled,
		SettledAt:         m.SettledAt,
		AuditFields:       toDomainAudit(m.AuditFields),
	}, nil
}

// SaveStatement inserts the statement row. Members are attached with AddMembers.
func (r *PgxStatementRepository) SaveStatement(ctx context.Context, statement domain.Statement) error {
	m := toModelStatement(statement)
	query := `
		INSERT INTO statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.db.Exec(ctx, query,
		m.Number, m.Period, m.Validator, m.ValidatedAt, m.Observation, m.GrossCDF, m.GrossUSD, m.IPRCDF, m.IPRUSD,
		m.NetCDF, m.NetUSD, m.ExpensesValidated, m.SealedBy, m.SealedAt, m.Settled, m.SettledAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if constraint, dup := uniqueViolation(err); dup {
			if constraint == "statements_period_key" {
				return fmt.Errorf("%w: period %s", apperrors.ErrStatementPeriodConflict, m.Period)
			}
			return fmt.Errorf("%w: statement %s", apperrors.ErrDuplicate, m.Number)
		}
		return fmt.Errorf("failed to save statement %s: %w", m.Number, err)
	}
	return nil
}

// UpdateStatement writes the scalar columns. Membership is untouched.
func (r *PgxStatementRepository) UpdateStatement(ctx context.Context, statement domain.Statement) error {
	m := toModelStatement(statement)
	query := `
		UPDATE statements
		SET observation = $1, gross_cdf = $2, gross_usd = $3, ipr_cdf = $4, ipr_usd = $5, net_cdf = $6, net_usd = $7,
			expenses_validated = $8, sealed_by = $9, sealed_at = $10, settled = $11, settled_at = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE number = $15;
	`
	tag, err := r.db.Exec(ctx, query,
		m.Observation, m.GrossCDF, m.GrossUSD, m.IPRCDF, m.IPRUSD, m.NetCDF, m.NetUSD,
		m.ExpensesValidated, m.SealedBy, m.SealedAt, m.Settled, m.SettledAt,
		m.LastUpdatedAt, m.LastUpdatedBy, m.Number,
	)
	if err != nil {
		return fmt.Errorf("failed to update statement %s: %w", m.Number, err)
	}
	return expectOne(tag, "statement", m.Number)
}

// AddMembers attaches requests, refusing the whole batch when any is already attached.
func (r *PgxStatementRepository) AddMembers(ctx context.Context, number string, requestRefs []string) error {
	refs := sortedRefs(requestRefs)
	if len(refs) == 0 {
		return nil
	}

	var owner, taken string
	err := r.db.QueryRow(ctx,
		`SELECT request_ref, statement_number FROM statement_members WHERE request_ref = ANY($1) ORDER BY request_ref LIMIT 1;`,
		refs,
	).Scan(&taken, &owner)
	switch {
	case err == nil:
		return fmt.Errorf("%w: request %s already belongs to %s", apperrors.ErrMembershipConflict, taken, owner)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("failed to check membership for statement %s: %w", number, err)
	}

	query := `
		INSERT INTO statement_members (request_ref, statement_number)
		SELECT ref, $2 FROM unnest($1::text[]) AS ref;
	`
	if _, err := r.db.Exec(ctx, query, refs, number); err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: a request was attached concurrently to another statement", apperrors.ErrMembershipConflict)
		}
		return fmt.Errorf("failed to add members to statement %s: %w", number, err)
	}
	return nil
}

func (r *PgxStatementRepository) FindStatementByNumber(ctx context.Context, number string) (*domain.Statement, error) {
	return r.findStatement(ctx, `SELECT `+statementColumns+` FROM statements WHERE number = $1;`, "statement", number)
}

func (r *PgxStatementRepository) FindStatementByNumberForUpdate(ctx context.Context, number string) (*domain.Statement, error) {
	return r.findStatement(ctx, `SELECT `+statementColumns+` FROM statements WHERE number = $1 FOR UPDATE;`, "statement", number)
}

func (r *PgxStatementRepository) FindStatementByPeriod(ctx context.Context, period domain.Period) (*domain.Statement, error) {
	return r.findStatement(ctx, `SELECT `+statementColumns+` FROM statements WHERE period = $1;`, "statement for period", period.String())
}

func (r *PgxStatementRepository) FindStatementByMember(ctx context.Context, requestRef string) (*domain.Statement, error) {
	query := `
		SELECT ` + statementColumns + ` FROM statements
		WHERE number = (SELECT statement_number FROM statement_members WHERE request_ref = $1);
	`
	return r.findStatement(ctx, query, "statement holding request", requestRef)
}

func (r *PgxStatementRepository) findStatement(ctx context.Context, query, what, key string) (*domain.Statement, error) {
	statements, err := r.queryStatements(ctx, query, key)
	if err != nil {
		return nil, err
	}
	if len(statements) == 0 {
		return nil, notFoundOr(pgx.ErrNoRows, what, key)
	}
	return &statements[0], nil
}

func (r *PgxStatementRepository) ListStatements(ctx context.Context, filter portsrepo.StatementFilter) ([]domain.Statement, error) {
	var w where
	if filter.Year > 0 {
		w.add("period LIKE ?", fmt.Sprintf("%04d-%%", filter.Year))
	}
	if filter.Sealed != nil {
		w.add("expenses_validated = ?", *filter.Sealed)
	}
	if filter.Settled != nil {
		w.add("settled = ?", *filter.Settled)
	}
	if filter.AfterNumber != "" {
		w.add("number > ?", filter.AfterNumber)
	}
	query := `SELECT ` + statementColumns + ` FROM statements` + w.clause() + ` ORDER BY number` + w.limit(filter.Limit)
	return r.queryStatements(ctx, query, w.args...)
}

// queryStatements scans statements, then loads their members in one query.
func (r *PgxStatementRepository) queryStatements(ctx context.Context, query string, args ...any) ([]domain.Statement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	modelStatements, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Statement])
	if err != nil {
		return nil, fmt.Errorf("failed to scan statements: %w", err)
	}
	if len(modelStatements) == 0 {
		return []domain.Statement{}, nil
	}

	numbers := make([]string, 0, len(modelStatements))
	for _, m := range modelStatements {
		numbers = append(numbers, m.Number)
	}
	members, err := r.membersOf(ctx, numbers)
	if err != nil {
		return nil, err
	}

	statements := make([]domain.Statement, 0, len(modelStatements))
	for _, m := range modelStatements {
		st, err := toDomainStatement(m, members[m.Number])
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}
	return statements, nil
}

func (r *PgxStatementRepository) membersOf(ctx context.Context, numbers []string) (map[string][]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT statement_number, request_ref FROM statement_members WHERE statement_number = ANY($1) ORDER BY request_ref;`,
		numbers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string, len(numbers))
	for rows.Next() {
		var number, ref string
		if err := rows.Scan(&number, &ref); err != nil {
			return nil, fmt.Errorf("failed to scan statement member: %w", err)
		}
		members[number] = append(members[number], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement members: %w", err)
	}
	return members, nil
}

const expenseLineColumns = `code, statement_number, request_ref, period, nature_code, amount_cdf, amount_usd, created_at, created_by`

type PgxExpenseLineRepository struct {
	db querier
}

func newPgxExpenseLineRepository(db querier) *PgxExpenseLineRepository {
	return &PgxExpenseLineRepository{db: db}
}

var _ portsrepo.ExpenseLineRepositoryFacade = (*PgxExpenseLineRepository)(nil)

// SaveExpenseLines inserts the lines in one batch.
func (r *PgxExpenseLineRepository) SaveExpenseLines(ctx context.Context, lines []domain.ExpenseLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO expense_lines (` + expenseLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query,
			l.Code, l.StatementNumber, l.RequestRef, l.Period.String(), l.NatureCode,
			l.Amounts.CDF, l.Amounts.USD, l.CreatedAt, l.CreatedBy,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, l := range lines {
		if _, err := br.Exec(); err != nil {
			if _, dup := uniqueViolation(err); dup {
				return fmt.Errorf("%w: expense line %s", apperrors.ErrDuplicate, l.Code)
			}
			return fmt.Errorf("failed to save expense line %s: %w", l.Code, err)
		}
	}
	return nil
}

func (r *PgxExpenseLineRepository) ListExpenseLinesByStatement(ctx context.Context, number string) ([]domain.ExpenseLine, error) {
	rows, err := r.db.Query(ctx, `SELECT `+expenseLineColumns+` FROM expense_lines WHERE statement_number = $1 ORDER BY code;`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense lines of %s: %w", number, err)
	}
	modelLines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ExpenseLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense lines: %w", err)
	}
	lines := make([]domain.ExpenseLine, 0, len(modelLines))
	for _, m := range modelLines {
		period, err := domain.ParsePeriod(m.Period)
		if err != nil {
			return nil, fmt.Errorf("expense line %s has a corrupt period: %w", m.Code, err)
		}
		lines = append(lines, domain.ExpenseLine{
			Code:            m.Code,
			StatementNumber: m.StatementNumber,
			RequestRef:      m.RequestRef,
			Period:          period,
			NatureCode:      m.NatureCode,
			Amounts:         domain.CurrencyTotals{CDF: m.AmountCDF, USD: m.AmountUSD},
			CreatedAt:       m.CreatedAt,
			CreatedBy:       m.CreatedBy,
		})
	}
	return lines, nil
}

func (r *PgxExpenseLineRepository) SumExpenseLines(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error) {
	var totals domain.CurrencyTotals
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cdf), 0), COALESCE(SUM(amount_usd), 0) FROM expense_lines WHERE period = $1;`,
		period.String(),
	).Scan(&totals.CDF, &totals.USD)
	if err != nil {
		return domain.CurrencyTotals{}, fmt.Errorf("failed to sum expense lines of %s: %w", period, err)
	}
	return totals, nil
}
