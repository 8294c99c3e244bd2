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

const paymentColumns = `reference, statement_number, request_ref, account_id, movement_id, currency_code, amount, notes,
	paid_by, paid_at, reversed, reversed_by, reversed_at, reversal_movement_id`

type PgxPaymentRepository struct {
	db querier
}

func newPgxPaymentRepository(db querier) *PgxPaymentRepository {
	return &PgxPaymentRepository{db: db}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func toModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		Reference:          d.Reference,
		StatementNumber:    d.StatementNumber,
		RequestRef:         d.RequestRef,
		AccountID:          d.AccountID,
		MovementID:         d.MovementID,
		CurrencyCode:       string(d.Amount.Currency),
		Amount:             d.Amount.Value,
		Notes:              d.Notes,
		PaidBy:             d.PaidBy,
		PaidAt:             d.PaidAt,
		Reversed:           d.Reversed,
		ReversedBy:         d.ReversedBy,
		ReversedAt:         d.ReversedAt,
		ReversalMovementID: d.ReversalMovementID,
	}
}

func toDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		Reference:          m.Reference,
		StatementNumber:    m.StatementNumber,
		RequestRef:         m.RequestRef,
		AccountID:          m.AccountID,
		MovementID:         m.MovementID,
		Amount:             domain.Amount{Currency: domain.Currency(m.CurrencyCode), Value: m.Amount},
		Notes:              m.Notes,
		PaidBy:             m.PaidBy,
		PaidAt:             m.PaidAt,
		Reversed:           m.Reversed,
		ReversedBy:         m.ReversedBy,
		ReversedAt:         m.ReversedAt,
		ReversalMovementID: m.ReversalMovementID,
	}
}

func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := toModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		m.Reference, m.StatementNumber, m.RequestRef, m.AccountID, m.MovementID, m.CurrencyCode, m.Amount, m.Notes,
		m.PaidBy, m.PaidAt, m.Reversed, m.ReversedBy, m.ReversedAt, m.ReversalMovementID,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to save payment %s: %w", m.Reference, err)
	}
	return nil
}

// UpdatePayment records the reversal columns; the rest of a payment never changes.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment) error {
	query := `
		UPDATE payments
		SET reversed = $1, reversed_by = $2, reversed_at = $3, reversal_movement_id = $4
		WHERE reference = $5;
	`
	tag, err := r.db.Exec(ctx, query,
		payment.Reversed, payment.ReversedBy, payment.ReversedAt, payment.ReversalMovementID, payment.Reference,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.Reference, err)
	}
	return expectOne(tag, "payment", payment.Reference)
}

func (r *PgxPaymentRepository) FindPaymentByRef(ctx context.Context, ref string) (*domain.Payment, error) {
	return r.findPayment(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference = $1;`, ref)
}

func (r *PgxPaymentRepository) FindPaymentByRefForUpdate(ctx context.Context, ref string) (*domain.Payment, error) {
	return r.findPayment(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference = $1 FOR UPDATE;`, ref)
}

func (r *PgxPaymentRepository) findPayment(ctx context.Context, query, ref string) (*domain.Payment, error) {
	rows, err := r.db.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment %s: %w", ref, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Payment])
	if err != nil {
		return nil, notFoundOr(err, "payment", ref)
	}
	p := toDomainPayment(m)
	return &p, nil
}

func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	var w where
	if filter.StatementNumber != "" {
		w.add("statement_number = ?", filter.StatementNumber)
	}
	if filter.RequestRef != "" {
		w.add("request_ref = ?", filter.RequestRef)
	}
	if filter.AfterRef != "" {
		w.add("reference > ?", filter.AfterRef)
	}
	query := `SELECT ` + paymentColumns + ` FROM payments` + w.clause() + ` ORDER BY reference` + w.limit(filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	modelPayments, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Payment])
	if err != nil {
		return nil, fmt.Errorf("failed to scan payments: %w", err)
	}
	payments := make([]domain.Payment, 0, len(modelPayments))
	for _, m := range modelPayments {
		payments = append(payments, toDomainPayment(m))
	}
	return payments, nil
}

const chequeColumns = `number, statement_number, bank, beneficiary, amount_cdf, amount_usd, status,
	issued_at, cashed_at, cancelled_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxChequeRepository struct {
	db querier
}

func newPgxChequeRepository(db querier) *PgxChequeRepository {
	return &PgxChequeRepository{db: db}
}

var _ portsrepo.ChequeRepositoryFacade = (*PgxChequeRepository)(nil)

func toDomainCheque(m models.Cheque) domain.Cheque {
	return domain.Cheque{
		Number:          m.Number,
		StatementNumber: m.StatementNumber,
		Bank:            m.Bank,
		Beneficiary:     m.Beneficiary,
		Amounts:         domain.CurrencyTotals{CDF: m.AmountCDF, USD: m.AmountUSD},
		Status:          domain.ChequeStatus(m.Status),
		IssuedAt:        m.IssuedAt,
		CashedAt:        m.CashedAt,
		CancelledAt:     m.CancelledAt,
		AuditFields:     toDomainAudit(m.AuditFields),
	}
}

// SaveCheque inserts a cheque. The partial unique index allows one active cheque per statement.
func (r *PgxChequeRepository) SaveCheque(ctx context.Context, cheque domain.Cheque) error {
	query := `
		INSERT INTO cheques (` + chequeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		cheque.Number, cheque.StatementNumber, cheque.Bank, cheque.Beneficiary, cheque.Amounts.CDF, cheque.Amounts.USD,
		string(cheque.Status), cheque.IssuedAt, cheque.CashedAt, cheque.CancelledAt,
		cheque.CreatedAt, cheque.CreatedBy, cheque.LastUpdatedAt, cheque.LastUpdatedBy,
	)
	if err != nil {
		if constraint, dup := uniqueViolation(err); dup {
			if constraint == "cheques_one_active_per_statement" {
				return fmt.Errorf("%w: statement %s already has an active cheque", apperrors.ErrDuplicate, cheque.StatementNumber)
			}
			return fmt.Errorf("%w: cheque %s", apperrors.ErrDuplicate, cheque.Number)
		}
		return fmt.Errorf("failed to save cheque %s: %w", cheque.Number, err)
	}
	return nil
}

func (r *PgxChequeRepository) UpdateCheque(ctx context.Context, cheque domain.Cheque) error {
	query := `
		UPDATE cheques
		SET status = $1, issued_at = $2, cashed_at = $3, cancelled_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE number = $7;
	`
	tag, err := r.db.Exec(ctx, query,
		string(cheque.Status), cheque.IssuedAt, cheque.CashedAt, cheque.CancelledAt,
		cheque.LastUpdatedAt, cheque.LastUpdatedBy, cheque.Number,
	)
	if err != nil {
		return fmt.Errorf("failed to update cheque %s: %w", cheque.Number, err)
	}
	return expectOne(tag, "cheque", cheque.Number)
}

func (r *PgxChequeRepository) FindChequeByNumber(ctx context.Context, number string) (*domain.Cheque, error) {
	return r.findCheque(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE number = $1;`, "cheque", number)
}

func (r *PgxChequeRepository) FindChequeByNumberForUpdate(ctx context.Context, number string) (*domain.Cheque, error) {
	return r.findCheque(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE number = $1 FOR UPDATE;`, "cheque", number)
}

func (r *PgxChequeRepository) FindActiveChequeByStatement(ctx context.Context, statementNumber string) (*domain.Cheque, error) {
	query := `SELECT ` + chequeColumns + ` FROM cheques WHERE statement_number = $1 AND status <> 'cancelled';`
	return r.findCheque(ctx, query, "active cheque for statement", statementNumber)
}

func (r *PgxChequeRepository) findCheque(ctx context.Context, query, what, key string) (*domain.Cheque, error) {
	rows, err := r.db.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s %s: %w", what, key, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Cheque])
	if err != nil {
		return nil, notFoundOr(err, what, key)
	}
	c := toDomainCheque(m)
	return &c, nil
}
