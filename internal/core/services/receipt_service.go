package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

type receiptService struct {
	BaseService
	ledger portssvc.LedgerSvc
	refs   *ReferenceGenerator
}

// NewReceiptService creates the receipt lifecycle service.
func NewReceiptService(deps Dependencies, ledger portssvc.LedgerSvc, refs *ReferenceGenerator) portssvc.ReceiptSvcFacade {
	return &receiptService{BaseService: deps.base(), ledger: ledger, refs: refs}
}

func (s *receiptService) RecordReceipt(ctx context.Context, req dto.RecordReceiptRequest, actor string) (*domain.Receipt, []domain.Warning, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	encashedOn, err := mapping.ToDomainDate(req.EncashedOn)
	if err != nil {
		return nil, nil, err
	}
	bank := strings.TrimSpace(req.Bank)

	var (
		receipt  *domain.Receipt
		warnings []domain.Warning
	)
	err = s.execute(ctx, domain.CmdRecordReceipt, func(ctx context.Context, tx portsrepo.Store) error {
		ref, err := s.refs.Next(ctx, tx, domain.ScopeOf(domain.FamilyReceipt))
		if err != nil {
			return err
		}
		r, err := domain.NewReceipt(ref, bank, req.AmountUSD, req.AmountCDF, encashedOn, actor, s.now())
		if err != nil {
			return err
		}
		if req.ValidatedBy != nil && *req.ValidatedBy != "" {
			ws, err := s.validate(ctx, tx, r, *req.ValidatedBy)
			if err != nil {
				return err
			}
			warnings = ws
		}
		if err := tx.Receipts().SaveReceipt(ctx, *r); err != nil {
			return err
		}
		receipt = r
		return s.journal(ctx, tx, domain.CmdRecordReceipt, actor, ref, req)
	})
	if err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Receipt recorded",
		slog.String("reference", receipt.Reference),
		slog.String("bank", receipt.Bank),
		slog.Bool("validated", receipt.Validated))
	return receipt, warnings, nil
}

func (s *receiptService) ValidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return s.transition(ctx, domain.CmdValidateReceipt, ref, actor, func(ctx context.Context, tx portsrepo.Store, r *domain.Receipt) ([]domain.Warning, error) {
		return s.validate(ctx, tx, r, actor)
	})
}

func (s *receiptService) UnvalidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return s.transition(ctx, domain.CmdUnvalidateReceipt, ref, actor, func(ctx context.Context, tx portsrepo.Store, r *domain.Receipt) ([]domain.Warning, error) {
		ws, err := s.compensate(ctx, tx, r, actor)
		if err != nil {
			return nil, err
		}
		return ws, r.MarkUnvalidated(actor, s.now())
	})
}

// DeleteReceipt soft deletes a receipt. A validated receipt is debited back first.
func (s *receiptService) DeleteReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return s.transition(ctx, domain.CmdDeleteReceipt, ref, actor, func(ctx context.Context, tx portsrepo.Store, r *domain.Receipt) ([]domain.Warning, error) {
		var warnings []domain.Warning
		if r.Validated && !r.IsDeleted() {
			ws, err := s.compensate(ctx, tx, r, actor)
			if err != nil {
				return nil, err
			}
			warnings = ws
		}
		return warnings, r.MarkDeleted(actor, s.now())
	})
}

type receiptStep func(ctx context.Context, tx portsrepo.Store, r *domain.Receipt) ([]domain.Warning, error)

// transition locks the receipt, applies step and persists the result.
func (s *receiptService) transition(ctx context.Context, command, ref, actor string, step receiptStep) (*domain.Receipt, []domain.Warning, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	var (
		receipt  *domain.Receipt
		warnings []domain.Warning
	)
	err := s.execute(ctx, command, func(ctx context.Context, tx portsrepo.Store) error {
		r, err := tx.Receipts().FindReceiptByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if err := s.ensurePeriodOpen(ctx, tx, domain.PeriodOf(r.EncashedOn)); err != nil {
			return err
		}
		ws, err := step(ctx, tx, r)
		if err != nil {
			return err
		}
		if err := tx.Receipts().UpdateReceipt(ctx, *r); err != nil {
			return err
		}
		receipt, warnings = r, ws
		return s.journal(ctx, tx, command, actor, ref, nil)
	})
	if err != nil {
		return nil, nil, err
	}
	s.LogInfo(ctx, "Receipt updated",
		slog.String("command", command),
		slog.String("reference", ref),
		slog.Bool("validated", receipt.Validated),
		slog.Bool("deleted", receipt.IsDeleted()))
	return receipt, warnings, nil
}

// validate marks r validated and posts one credit per non-zero currency.
func (s *receiptService) validate(ctx context.Context, tx portsrepo.Store, r *domain.Receipt, validator string) ([]domain.Warning, error) {
	if err := s.ensurePeriodOpen(ctx, tx, domain.PeriodOf(r.EncashedOn)); err != nil {
		return nil, err
	}
	if err := r.MarkValidated(validator, s.now()); err != nil {
		return nil, err
	}
	var (
		warnings []domain.Warning
		posted   []string
	)
	for _, amount := range r.Amounts() {
		acc, err := s.ledger.SelectAccount(ctx, tx, r.Bank, amount.Currency)
		if err != nil {
			return nil, err
		}
		m, ws, err := s.ledger.Credit(ctx, tx, acc.AccountID, amount, domain.CauseReceipt, r.Reference, validator)
		if err != nil {
			return nil, err
		}
		posted = append(posted, m.MovementID)
		warnings = append(warnings, ws...)
	}
	r.PostedMovementIDs = posted
	return warnings, nil
}

// compensate reverses the credits currently standing for r.
func (s *receiptService) compensate(ctx context.Context, tx portsrepo.Store, r *domain.Receipt, actor string) ([]domain.Warning, error) {
	if !r.Validated {
		return nil, nil
	}
	var warnings []domain.Warning
	for _, id := range r.PostedMovementIDs {
		_, ws, err := s.ledger.Reverse(ctx, tx, id, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to reverse credit %s of receipt %s: %w", id, r.Reference, err)
		}
		warnings = append(warnings, ws...)
	}
	return warnings, nil
}

func (s *receiptService) GetReceipt(ctx context.Context, ref string) (*domain.Receipt, error) {
	r, err := s.TxManager.Reader().Receipts().FindReceiptByRef(ctx, ref)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find receipt", slog.String("reference", ref))
		}
		return nil, err
	}
	return r, nil
}

func (s *receiptService) ListReceipts(ctx context.Context, params dto.ListReceiptsParams) (*dto.ListReceiptsResponse, error) {
	filter, err := mapping.ToReceiptFilter(params)
	if err != nil {
		return nil, err
	}
	receipts, err := s.TxManager.Reader().Receipts().ListReceipts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list receipts")
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	page, next := pagination.Trim(receipts, dto.ClampLimit(params.Limit), func(r domain.Receipt) string { return r.Reference })
	return &dto.ListReceiptsResponse{Receipts: dto.ToListReceiptResponse(page), NextToken: next}, nil
}
