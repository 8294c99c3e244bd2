package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
)

type chequeService struct {
	BaseService
	refs *ReferenceGenerator
}

// NewChequeService creates the cheque service.
func NewChequeService(deps Dependencies, refs *ReferenceGenerator) portssvc.ChequeSvcFacade {
	return &chequeService{BaseService: deps.base(), refs: refs}
}

func (s *chequeService) IssueCheque(ctx context.Context, statementNumber string, req dto.IssueChequeRequest, actor string) (*domain.Cheque, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	bank := strings.TrimSpace(req.Bank)
	beneficiary := strings.TrimSpace(req.Beneficiary)
	if bank == "" || beneficiary == "" {
		return nil, fmt.Errorf("%w: bank and beneficiary are required", apperrors.ErrValidation)
	}

	var issued *domain.Cheque
	err := s.execute(ctx, domain.CmdIssueCheque, func(ctx context.Context, tx portsrepo.Store) error {
		st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, statementNumber)
		if err != nil {
			return err
		}
		if active, err := tx.Cheques().FindActiveChequeByStatement(ctx, statementNumber); err == nil {
			return fmt.Errorf("%w: statement %s already has cheque %s", apperrors.ErrDuplicate, statementNumber, active.Number)
		} else if !isNotFound(err) {
			return err
		}

		number, err := s.refs.Next(ctx, tx, domain.ScopeOf(domain.FamilyCheque))
		if err != nil {
			return err
		}
		cheque := domain.Cheque{
			Number:          number,
			StatementNumber: st.Number,
			Bank:            bank,
			Beneficiary:     beneficiary,
			Amounts:         st.Totals.Net,
			Status:          domain.ChequeGenerated,
			AuditFields:     domain.NewAuditFields(actor, s.now()),
		}
		if err := tx.Cheques().SaveCheque(ctx, cheque); err != nil {
			return err
		}
		issued = &cheque
		return s.journal(ctx, tx, domain.CmdIssueCheque, actor, number, map[string]string{
			"statementNumber": statementNumber,
			"bank":            bank,
			"beneficiary":     beneficiary,
		})
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Cheque generated",
		slog.String("number", issued.Number),
		slog.String("statement", statementNumber),
		slog.String("bank", bank))
	return issued, nil
}

func (s *chequeService) SetChequeStatus(ctx context.Context, number string, req dto.SetChequeStatusRequest, actor string) (*domain.Cheque, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var updated *domain.Cheque
	err := s.execute(ctx, domain.CmdSetChequeStatus, func(ctx context.Context, tx portsrepo.Store) error {
		cheque, err := tx.Cheques().FindChequeByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if err := cheque.Transition(domain.ChequeStatus(req.Status), actor, s.now()); err != nil {
			return err
		}
		if err := tx.Cheques().UpdateCheque(ctx, *cheque); err != nil {
			return err
		}
		updated = cheque
		return s.journal(ctx, tx, domain.CmdSetChequeStatus, actor, number, req)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Cheque status changed",
		slog.String("number", number),
		slog.String("status", req.Status))
	return updated, nil
}

func (s *chequeService) GetCheque(ctx context.Context, number string) (*domain.Cheque, error) {
	return s.TxManager.Reader().Cheques().FindChequeByNumber(ctx, number)
}
