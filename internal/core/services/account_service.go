package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	ledger portssvc.LedgerSvc
}

// NewAccountService creates the bank account service.
func NewAccountService(deps Dependencies, ledger portssvc.LedgerSvc) portssvc.AccountSvcFacade {
	return &accountService{BaseService: deps.base(), ledger: ledger}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, actor string) (*domain.BankAccount, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bank := strings.TrimSpace(req.Bank)
	number := strings.TrimSpace(req.AccountNumber)
	if bank == "" || number == "" {
		return nil, fmt.Errorf("%w: bank and account number are required", apperrors.ErrValidation)
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	initial, err := domain.NewAmount(currency, req.InitialBalance)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := domain.BankAccount{
		AccountID:      uuid.NewString(),
		Bank:           bank,
		AccountNumber:  number,
		Currency:       currency,
		InitialBalance: initial.Value,
		CurrentBalance: initial.Value,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(actor, now),
	}

	err = s.execute(ctx, domain.CmdOpenAccount, func(ctx context.Context, tx portsrepo.Store) error {
		if err := tx.Accounts().SaveAccount(ctx, account); err != nil {
			return err
		}
		return s.journal(ctx, tx, domain.CmdOpenAccount, actor, account.AccountID, req)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_id", account.AccountID),
		slog.String("bank", bank),
		slog.String("currency", string(currency)))
	return &account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	err := s.execute(ctx, domain.CmdDeactivateAccount, func(ctx context.Context, tx portsrepo.Store) error {
		acc, err := tx.Accounts().FindAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrInvalidStateTransition, accountID)
		}
		acc.IsActive = false
		acc.Touch(actor, s.now())
		if err := tx.Accounts().UpdateAccount(ctx, *acc, acc.Version); err != nil {
			return err
		}
		return s.journal(ctx, tx, domain.CmdDeactivateAccount, actor, accountID, nil)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// ReverseMovement reverses a movement through the entity that owns it.
// Payment debits are reversed as a payment reversal. Receipt credits belong
// to a receipt that may span two currencies and are refused here.
func (s *accountService) ReverseMovement(ctx context.Context, movementID string, actor string) (*domain.Movement, []domain.Warning, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	var (
		reversal *domain.Movement
		warnings []domain.Warning
	)
	err := s.execute(ctx, domain.CmdReverseMovement, func(ctx context.Context, tx portsrepo.Store) error {
		original, err := tx.Movements().FindMovementByID(ctx, movementID)
		if err != nil {
			return err
		}

		switch original.Cause {
		case domain.CauseReceipt:
			return fmt.Errorf("%w: movement %s belongs to receipt %s; unvalidate the receipt instead",
				apperrors.ErrInvalidStateTransition, movementID, original.CauseRef)
		case domain.CausePayment:
			payment, err := tx.Payments().FindPaymentByRefForUpdate(ctx, original.CauseRef)
			if err != nil {
				return err
			}
			reversal, err = reversePaymentInTx(ctx, tx, &s.BaseService, s.ledger, payment, actor)
			if err != nil {
				return err
			}
		default:
			reversal, warnings, err = s.ledger.Reverse(ctx, tx, movementID, actor)
			if err != nil {
				return err
			}
		}

		return s.journal(ctx, tx, domain.CmdReverseMovement, actor, movementID, map[string]string{
			"reversalMovementID": reversal.MovementID,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Movement reversed",
		slog.String("movement_id", movementID),
		slog.String("reversal_id", reversal.MovementID))
	return reversal, warnings, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	acc, err := s.TxManager.Reader().Accounts().FindAccountByID(ctx, accountID)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalanceResponse, error) {
	acc, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.AccountBalanceResponse{
		AccountID:      acc.AccountID,
		Currency:       string(acc.Currency),
		Balance:        acc.CurrentBalance,
		LastMovementAt: acc.LastMovementAt,
	}, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	filter, err := mapping.ToAccountFilter(params)
	if err != nil {
		return nil, err
	}
	accounts, err := s.TxManager.Reader().Accounts().ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	page, next := pagination.Trim(accounts, dto.ClampLimit(params.Limit), func(a domain.BankAccount) string { return a.AccountID })
	return &dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(page), NextToken: next}, nil
}

func (s *accountService) ListMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	afterSeq, err := pagination.DecodeSeqToken(params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit := dto.ClampLimit(params.Limit)
	movements, err := s.TxManager.Reader().Movements().ListMovements(ctx, accountID, afterSeq, limit+1)
	if err != nil {
		s.LogError(ctx, err, "Failed to list movements", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	page, next := pagination.Trim(movements, limit, func(m domain.Movement) string { return strconv.FormatInt(m.Sequence, 10) })
	return &dto.ListMovementsResponse{Movements: dto.ToListMovementResponse(page), NextToken: next}, nil
}

func (s *accountService) VerifyAccount(ctx context.Context, accountID string) (*dto.AccountVerification, error) {
	v, err := s.ledger.VerifyAccount(ctx, s.TxManager.Reader(), accountID)
	if err != nil {
		return nil, err
	}
	if !v.Consistent {
		s.integrityFailure(ctx, "account_balance", fmt.Errorf("%w: account %s drifted by %s", apperrors.ErrIntegrity, accountID, v.Drift.StringFixed(2)))
	}
	return v, nil
}
