package pgsql

import (
	"context"
	"fmt"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, bank, account_number, currency_code, initial_balance, current_balance,
	last_movement_at, is_active, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	db querier
}

// newPgxAccountRepository creates a new repository for bank accounts.
func newPgxAccountRepository(db querier) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// Helper to convert domain.BankAccount to models.Account for DB storage
func toModelAccount(d domain.BankAccount) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		Bank:           d.Bank,
		AccountNumber:  d.AccountNumber,
		CurrencyCode:   string(d.Currency),
		InitialBalance: d.InitialBalance,
		CurrentBalance: d.CurrentBalance,
		LastMovementAt: d.LastMovementAt,
		IsActive:       d.IsActive,
		Version:        d.Version,
		AuditFields:    toModelAudit(d.AuditFields),
	}
}

// Helper to convert models.Account from DB to domain.BankAccount
func toDomainAccount(m models.Account) domain.BankAccount {
	return domain.BankAccount{
		AccountID:      m.AccountID,
		Bank:           m.Bank,
		AccountNumber:  m.AccountNumber,
		Currency:       domain.Currency(m.CurrencyCode),
		InitialBalance: m.InitialBalance,
		CurrentBalance: m.CurrentBalance,
		LastMovementAt: m.LastMovementAt,
		IsActive:       m.IsActive,
		Version:        m.Version,
		AuditFields:    toDomainAudit(m.AuditFields),
	}
}

func toModelAudit(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func toDomainAudit(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	m := toModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID, m.Bank, m.AccountNumber, m.CurrencyCode, m.InitialBalance, m.CurrentBalance,
		m.LastMovementAt, m.IsActive, m.Version, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: account %s/%s", apperrors.ErrDuplicate, m.Bank, m.AccountNumber)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// UpdateAccount writes the mutable columns when the stored version matches.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.BankAccount, expectedVersion int64) error {
	query := `
		UPDATE accounts
		SET current_balance = $1, last_movement_at = $2, is_active = $3, version = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $7 AND version = $8;
	`
	tag, err := r.db.Exec(ctx, query,
		account.CurrentBalance, account.LastMovementAt, account.IsActive, account.Version,
		account.LastUpdatedAt, account.LastUpdatedBy, account.AccountID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindAccountByID(ctx, account.AccountID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %s is no longer at version %d", apperrors.ErrConflict, account.AccountID, expectedVersion)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	return r.findAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1;`, accountID)
}

// FindAccountByIDForUpdate retrieves an account and locks its row.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	return r.findAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID)
}

func (r *PgxAccountRepository) findAccount(ctx context.Context, query, accountID string) (*domain.BankAccount, error) {
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", accountID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, notFoundOr(err, "account", accountID)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// ListAccounts returns accounts ordered by account_id.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.BankAccount, error) {
	var w where
	if filter.Bank != "" {
		w.add("bank = ?", filter.Bank)
	}
	if filter.Currency != "" {
		w.add("currency_code = ?", string(filter.Currency))
	}
	if filter.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if filter.AfterID != "" {
		w.add("account_id > ?", filter.AfterID)
	}
	query := `SELECT ` + accountColumns + ` FROM accounts` + w.clause() + ` ORDER BY account_id` + w.limit(filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	accounts := make([]domain.BankAccount, 0, len(modelAccounts))
	for _, m := range modelAccounts {
		accounts = append(accounts, toDomainAccount(m))
	}
	return accounts, nil
}

const movementColumns = `movement_id, account_id, sequence, direction, amount, currency_code, cause, cause_ref,
	balance_after, reverses_movement_id, created_at, created_by`

type PgxMovementRepository struct {
	db querier
}

func newPgxMovementRepository(db querier) *PgxMovementRepository {
	return &PgxMovementRepository{db: db}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

func toModelMovement(d domain.Movement) models.Movement {
	return models.Movement{
		MovementID:         d.MovementID,
		AccountID:          d.AccountID,
		Sequence:           d.Sequence,
		Direction:          string(d.Direction),
		Amount:             d.Amount.Value,
		CurrencyCode:       string(d.Amount.Currency),
		Cause:              string(d.Cause),
		CauseRef:           d.CauseRef,
		BalanceAfter:       d.BalanceAfter,
		ReversesMovementID: d.ReversesMovementID,
		CreatedAt:          d.CreatedAt,
		CreatedBy:          d.CreatedBy,
	}
}

func toDomainMovement(m models.Movement) domain.Movement {
	return domain.Movement{
		MovementID:         m.MovementID,
		AccountID:          m.AccountID,
		Sequence:           m.Sequence,
		Direction:          domain.MovementDirection(m.Direction),
		Amount:             domain.Amount{Currency: domain.Currency(m.CurrencyCode), Value: m.Amount},
		Cause:              domain.MovementCause(m.Cause),
		CauseRef:           m.CauseRef,
		BalanceAfter:       m.BalanceAfter,
		ReversesMovementID: m.ReversesMovementID,
		CreatedAt:          m.CreatedAt,
		CreatedBy:          m.CreatedBy,
	}
}

// SaveMovement appends a movement.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	m := toModelMovement(movement)
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		m.MovementID, m.AccountID, m.Sequence, m.Direction, m.Amount, m.CurrencyCode, m.Cause, m.CauseRef,
		m.BalanceAfter, m.ReversesMovementID, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if constraint, dup := uniqueViolation(err); dup {
			if constraint == "movements_reverses_key" && m.ReversesMovementID != nil {
				return fmt.Errorf("%w: movement %s is already reversed", apperrors.ErrDuplicate, *m.ReversesMovementID)
			}
			return fmt.Errorf("%w: movement %s (%s)", apperrors.ErrDuplicate, m.MovementID, constraint)
		}
		return fmt.Errorf("failed to save movement %s: %w", m.MovementID, err)
	}
	return nil
}

func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+movementColumns+` FROM movements WHERE movement_id = $1;`, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement %s: %w", movementID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movement])
	if err != nil {
		return nil, notFoundOr(err, "movement", movementID)
	}
	mv := toDomainMovement(m)
	return &mv, nil
}

// ListMovements returns the account's movements after afterSeq in posting order.
func (r *PgxMovementRepository) ListMovements(ctx context.Context, accountID string, afterSeq int64, limit int) ([]domain.Movement, error) {
	var w where
	w.add("account_id = ?", accountID)
	w.add("sequence > ?", afterSeq)
	query := `SELECT ` + movementColumns + ` FROM movements` + w.clause() + ` ORDER BY sequence` + w.limit(limit)
	return r.queryMovements(ctx, query, w.args...)
}

func (r *PgxMovementRepository) FindMovementsByCause(ctx context.Context, cause domain.MovementCause, causeRef string) ([]domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE cause = $1 AND cause_ref = $2 ORDER BY created_at, movement_id;`
	return r.queryMovements(ctx, query, string(cause), causeRef)
}

func (r *PgxMovementRepository) FindReversalOf(ctx context.Context, movementID string) (*domain.Movement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+movementColumns+` FROM movements WHERE reverses_movement_id = $1;`, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reversal of %s: %w", movementID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movement])
	if err != nil {
		return nil, notFoundOr(err, "reversal of movement", movementID)
	}
	mv := toDomainMovement(m)
	return &mv, nil
}

// SumSignedMovements adds credits and subtracts debits.
func (r *PgxMovementRepository) SumSignedMovements(ctx context.Context, accountID string) (decimal.Decimal, int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END), 0), COUNT(*)
		FROM movements
		WHERE account_id = $1;
	`
	var (
		sum   decimal.Decimal
		count int64
	)
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum movements of account %s: %w", accountID, err)
	}
	return sum, count, nil
}

func (r *PgxMovementRepository) queryMovements(ctx context.Context, query string, args ...any) ([]domain.Movement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	modelMovements, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movement])
	if err != nil {
		return nil, fmt.Errorf("failed to scan movements: %w", err)
	}
	movements := make([]domain.Movement, 0, len(modelMovements))
	for _, m := range modelMovements {
		movements = append(movements, toDomainMovement(m))
	}
	return movements, nil
}
