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
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

type paymentService struct {
	BaseService
	ledger portssvc.LedgerSvc
	refs   *ReferenceGenerator
}

// NewPaymentService creates the payment engine.
func NewPaymentService(deps Dependencies, ledger portssvc.LedgerSvc, refs *ReferenceGenerator) portssvc.PaymentSvcFacade {
	return &paymentService{BaseService: deps.base(), ledger: ledger, refs: refs}
}

// RecordPayment locks statement, request and account in that order, then
// debits the account, applies the amount and stores the payment.
func (s *paymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, []domain.Warning, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	amount, err := mapping.ToDomainAmount(req.Amount)
	if err != nil {
		return nil, nil, err
	}

	var (
		payment  *domain.Payment
		warnings []domain.Warning
	)
	err = s.execute(ctx, domain.CmdRecordPayment, func(ctx context.Context, tx portsrepo.Store) error {
		st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, req.StatementNumber)
		if err != nil {
			return err
		}
		if !st.HasMember(req.RequestRef) {
			return fmt.Errorf("%w: request %s is not a member of statement %s", apperrors.ErrValidation, req.RequestRef, st.Number)
		}

		r, err := tx.Requests().FindRequestByRefForUpdate(ctx, req.RequestRef)
		if err != nil {
			return err
		}
		now := s.now()
		if err := r.ApplyPayment(amount, now); err != nil {
			return err
		}

		accountID, err := s.payingAccount(ctx, tx, st.Number, req, amount.Currency)
		if err != nil {
			return err
		}

		ref, err := s.refs.Next(ctx, tx, domain.ScopeOf(domain.FamilyPayment))
		if err != nil {
			return err
		}
		movement, ws, err := s.ledger.Debit(ctx, tx, accountID, amount, domain.CausePayment, ref, actor)
		if err != nil {
			return err
		}

		if err := s.checkRequest(ctx, r); err != nil {
			return err
		}
		if err := tx.Requests().UpdateRequest(ctx, *r); err != nil {
			return err
		}

		p := domain.Payment{
			Reference:       ref,
			StatementNumber: st.Number,
			RequestRef:      r.Reference,
			AccountID:       accountID,
			MovementID:      movement.MovementID,
			Amount:          amount,
			Notes:           req.Notes,
			PaidBy:          actor,
			PaidAt:          now,
		}
		if err := tx.Payments().SavePayment(ctx, p); err != nil {
			return err
		}

		if err := s.refreshSettlement(ctx, tx, st, actor); err != nil {
			return err
		}

		payment, warnings = &p, ws
		return s.journal(ctx, tx, domain.CmdRecordPayment, actor, ref, req)
	})
	if err != nil {
		return nil, nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("reference", payment.Reference),
		slog.String("request", payment.RequestRef),
		slog.String("amount", payment.Amount.String()),
		slog.Int("warnings", len(warnings)))
	return payment, warnings, nil
}

// payingAccount resolves the account to debit: the active cheque's bank
// first, then an explicit account, then a bank chosen by the caller.
func (s *paymentService) payingAccount(ctx context.Context, tx portsrepo.Store, statementNumber string, req dto.RecordPaymentRequest, currency domain.Currency) (string, error) {
	cheque, err := tx.Cheques().FindActiveChequeByStatement(ctx, statementNumber)
	switch {
	case err == nil:
		acc, err := s.ledger.SelectAccount(ctx, tx, cheque.Bank, currency)
		if err != nil {
			return "", err
		}
		return acc.AccountID, nil
	case !isNotFound(err):
		return "", err
	}

	if req.AccountID != nil && *req.AccountID != "" {
		return *req.AccountID, nil
	}
	if req.Bank != nil && *req.Bank != "" {
		acc, err := s.ledger.SelectAccount(ctx, tx, *req.Bank, currency)
		if err != nil {
			return "", err
		}
		return acc.AccountID, nil
	}
	return "", fmt.Errorf("%w: statement %s has no cheque and no account or bank was given", apperrors.ErrNoSuitableAccount, statementNumber)
}

func (s *paymentService) ReversePayment(ctx context.Context, ref string, actor string) (*domain.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var reversed *domain.Payment
	err := s.execute(ctx, domain.CmdReversePayment, func(ctx context.Context, tx portsrepo.Store) error {
		p, err := tx.Payments().FindPaymentByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if _, err := reversePaymentInTx(ctx, tx, &s.BaseService, s.ledger, p, actor); err != nil {
			return err
		}
		reversed = p
		return s.journal(ctx, tx, domain.CmdReversePayment, actor, ref, map[string]string{
			"reversalMovementID": *p.ReversalMovementID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Payment reversed", slog.String("reference", ref))
	return reversed, nil
}

// reversePaymentInTx credits the account back, reopens the request and marks p reversed.
func reversePaymentInTx(ctx context.Context, tx portsrepo.Store, s *BaseService, ledger portssvc.LedgerSvc, p *domain.Payment, actor string) (*domain.Movement, error) {
	if p.Reversed {
		return nil, fmt.Errorf("%w: payment %s is already reversed", apperrors.ErrInvalidStateTransition, p.Reference)
	}
	st, err := tx.Statements().FindStatementByNumberForUpdate(ctx, p.StatementNumber)
	if err != nil {
		return nil, err
	}
	if st.ExpensesValidated {
		return nil, fmt.Errorf("%w: payment %s belongs to sealed statement %s", apperrors.ErrStatementSealed, p.Reference, st.Number)
	}
	r, err := tx.Requests().FindRequestByRefForUpdate(ctx, p.RequestRef)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := r.RevertPayment(p.Amount, now); err != nil {
		if apperrors.IsPrecondition(err) {
			return nil, err
		}
		return nil, s.integrityFailure(ctx, "request_amounts", err)
	}
	movement, _, err := ledger.Reverse(ctx, tx, p.MovementID, actor)
	if err != nil {
		return nil, err
	}
	if err := p.MarkReversed(actor, movement.MovementID, now); err != nil {
		return nil, err
	}

	if err := s.checkRequest(ctx, r); err != nil {
		return nil, err
	}
	if err := tx.Requests().UpdateRequest(ctx, *r); err != nil {
		return nil, err
	}
	if err := tx.Payments().UpdatePayment(ctx, *p); err != nil {
		return nil, err
	}
	if err := s.refreshSettlement(ctx, tx, st, actor); err != nil {
		return nil, err
	}
	return movement, nil
}

// refreshSettlement flags or unflags the statement as fully settled.
func (s *BaseService) refreshSettlement(ctx context.Context, tx portsrepo.Store, st *domain.Statement, actor string) error {
	members, err := tx.Requests().FindRequestsByRefs(ctx, st.Members)
	if err != nil {
		return err
	}
	now := s.now()
	if !st.RefreshSettlement(members, now) {
		return nil
	}
	st.Touch(actor, now)
	if st.Settled {
		s.LogInfo(ctx, "Statement fully settled", slog.String("number", st.Number))
	}
	return tx.Statements().UpdateStatement(ctx, *st)
}

func (s *paymentService) GetPayment(ctx context.Context, ref string) (*domain.Payment, error) {
	p, err := s.TxManager.Reader().Payments().FindPaymentByRef(ctx, ref)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find payment", slog.String("reference", ref))
		}
		return nil, err
	}
	return p, nil
}

func (s *paymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	filter, err := mapping.ToPaymentFilter(params)
	if err != nil {
		return nil, err
	}
	payments, err := s.TxManager.Reader().Payments().ListPayments(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments")
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	page, next := pagination.Trim(payments, dto.ClampLimit(params.Limit), func(p domain.Payment) string { return p.Reference })
	return &dto.ListPaymentsResponse{Payments: dto.ToListPaymentResponse(page), NextToken: next}, nil
}
