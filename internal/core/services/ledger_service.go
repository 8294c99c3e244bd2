package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/observability/metrics"
	"github.com/google/uuid"
)

// ledgerService is the only writer of account balances.
type ledgerService struct {
	BaseService
}

// NewLedgerService creates the ledger. It runs inside transactions owned by other services.
func NewLedgerService(policy domain.Policy, clock Clock) portssvc.LedgerSvc {
	return &ledgerService{BaseService: BaseService{Policy: policy, Clock: clock}}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

func (s *ledgerService) Credit(ctx context.Context, tx portsrepo.Store, accountID string, amount domain.Amount, cause domain.MovementCause, causeRef string, actor string) (*domain.Movement, []domain.Warning, error) {
	return s.post(ctx, tx, accountID, domain.DirectionCredit, amount, cause, causeRef, nil, actor)
}

func (s *ledgerService) Debit(ctx context.Context, tx portsrepo.Store, accountID string, amount domain.Amount, cause domain.MovementCause, causeRef string, actor string) (*domain.Movement, []domain.Warning, error) {
	return s.post(ctx, tx, accountID, domain.DirectionDebit, amount, cause, causeRef, nil, actor)
}

func (s *ledgerService) Reverse(ctx context.Context, tx portsrepo.Store, movementID string, actor string) (*domain.Movement, []domain.Warning, error) {
	original, err := tx.Movements().FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, nil, err
	}
	if original.Cause == domain.CauseReversal {
		return nil, nil, fmt.Errorf("%w: movement %s is itself a reversal", apperrors.ErrInvalidStateTransition, movementID)
	}
	if _, err := tx.Movements().FindReversalOf(ctx, movementID); err == nil {
		return nil, nil, fmt.Errorf("%w: movement %s was already reversed", apperrors.ErrInvalidStateTransition, movementID)
	} else if !isNotFound(err) {
		return nil, nil, err
	}

	reverses := original.MovementID
	return s.post(ctx, tx, original.AccountID, original.Direction.Opposite(), original.Amount,
		domain.CauseReversal, original.MovementID, &reverses, actor)
}

func (s *ledgerService) SelectAccount(ctx context.Context, tx portsrepo.Store, bank string, currency domain.Currency) (*domain.BankAccount, error) {
	accounts, err := tx.Accounts().ListAccounts(ctx, portsrepo.AccountFilter{
		Bank:       bank,
		Currency:   currency,
		ActiveOnly: true,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no active %s account at %q", apperrors.ErrNoSuitableAccount, currency, bank)
	}
	return &accounts[0], nil
}

func (s *ledgerService) VerifyAccount(ctx context.Context, store portsrepo.Store, accountID string) (*dto.AccountVerification, error) {
	acc, err := store.Accounts().FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	sum, count, err := store.Movements().SumSignedMovements(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements of %s: %w", accountID, err)
	}
	drift := acc.CurrentBalance.Sub(acc.InitialBalance.Add(sum))
	return &dto.AccountVerification{
		AccountID:      acc.AccountID,
		InitialBalance: acc.InitialBalance,
		CurrentBalance: acc.CurrentBalance,
		MovementSum:    sum,
		MovementCount:  count,
		Drift:          drift,
		Consistent:     drift.IsZero() && count == acc.Version,
	}, nil
}

// post locks the account, appends the movement and moves the balance.
func (s *ledgerService) post(ctx context.Context, tx portsrepo.Store, accountID string, direction domain.MovementDirection, amount domain.Amount, cause domain.MovementCause, causeRef string, reverses *string, actor string) (*domain.Movement, []domain.Warning, error) {
	acc, err := tx.Accounts().FindAccountByIDForUpdate(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrNoSuitableAccount, accountID)
		}
		return nil, nil, err
	}
	if !acc.IsActive {
		return nil, nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrNoSuitableAccount, accountID)
	}
	if amount.Currency != acc.Currency {
		return nil, nil, fmt.Errorf("%w: %s movement on %s account %s", apperrors.ErrCurrencyMismatch, amount.Currency, acc.Currency, accountID)
	}
	if amount.IsZero() {
		return nil, nil, fmt.Errorf("%w: movement amount must be greater than zero", apperrors.ErrValidation)
	}

	balance := domain.Apply(acc.CurrentBalance, direction, amount.Value)
	var warnings []domain.Warning
	if direction == domain.DirectionDebit && balance.IsNegative() {
		if !s.Policy.AllowOverdraft {
			return nil, nil, fmt.Errorf("%w: debit of %s leaves account %s at %s", apperrors.ErrInsufficientFunds, amount, accountID, balance.StringFixed(2))
		}
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarningOverdraft,
			Message: fmt.Sprintf("account %s overdrawn: balance %s %s", accountID, balance.StringFixed(2), acc.Currency),
		})
		metrics.IncOverdraftWarning()
		s.LogWarn(ctx, "Account overdrawn",
			slog.String("account_id", accountID),
			slog.String("balance", balance.StringFixed(2)),
			slog.String("cause_ref", causeRef))
	}

	now := s.now()
	movement := domain.Movement{
		MovementID:         uuid.NewString(),
		AccountID:          acc.AccountID,
		Sequence:           acc.Version + 1,
		Direction:          direction,
		Amount:             amount,
		Cause:              cause,
		CauseRef:           causeRef,
		BalanceAfter:       balance,
		ReversesMovementID: reverses,
		CreatedAt:          now,
		CreatedBy:          actor,
	}
	if err := tx.Movements().SaveMovement(ctx, movement); err != nil {
		return nil, nil, fmt.Errorf("failed to append movement on %s: %w", accountID, err)
	}

	expected := acc.Version
	acc.CurrentBalance = balance
	acc.Version++
	acc.LastMovementAt = &now
	acc.Touch(actor, now)
	if err := tx.Accounts().UpdateAccount(ctx, *acc, expected); err != nil {
		return nil, nil, fmt.Errorf("failed to update balance of %s: %w", accountID, err)
	}

	if err := s.checkBalance(ctx, tx, accountID); err != nil {
		return nil, nil, err
	}

	metrics.IncMovement(string(direction), string(cause))
	s.LogDebug(ctx, "Movement posted",
		slog.String("account_id", accountID),
		slog.String("movement_id", movement.MovementID),
		slog.String("direction", string(direction)),
		slog.String("amount", amount.String()))
	return &movement, warnings, nil
}

// checkBalance verifies current = initial + signed movements after a posting.
func (s *ledgerService) checkBalance(ctx context.Context, tx portsrepo.Store, accountID string) error {
	v, err := s.VerifyAccount(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if !v.Consistent {
		err := fmt.Errorf("%w: account %s drifted by %s over %d movements", apperrors.ErrIntegrity, accountID, v.Drift.StringFixed(2), v.MovementCount)
		return s.integrityFailure(ctx, "account_balance", err)
	}
	return nil
}
