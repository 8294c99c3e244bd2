package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/core/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type PaymentServiceTestSuite struct {
	KernelSuite
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) TestHappyPathPayment() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	s.Equal("DEM-000001", r.Reference)
	st := s.statementWith("2024-03", r.Reference)
	s.Equal("REL-000001", st.Number)
	_, _, err := s.svc.Statement.SealExpenses(s.ctx, st.Number, finance)
	s.Require().NoError(err)

	p, warnings, err := s.pay(st.Number, r.Reference, "USD", "150.00", acc.AccountID)
	s.Require().NoError(err)
	s.Empty(warnings)
	s.Equal("PAY-000001", p.Reference)

	got := s.request(r.Reference)
	s.Equal("150.00", got.Paid.Value.StringFixed(2))
	s.Equal("250.00", got.Remaining.Value.StringFixed(2))
	s.Equal(domain.RequestValidatedDG, got.State)
	s.Equal("850.00", s.balance(acc.AccountID))

	_, _, err = s.pay(st.Number, r.Reference, "USD", "250.00", acc.AccountID)
	s.Require().NoError(err)

	got = s.request(r.Reference)
	s.Equal("400.00", got.Paid.Value.StringFixed(2))
	s.True(got.Remaining.IsZero())
	s.Equal(domain.RequestPaid, got.State)
	s.Equal("600.00", s.balance(acc.AccountID))

	settled, err := s.svc.Statement.GetStatement(s.ctx, st.Number)
	s.Require().NoError(err)
	s.True(settled.Settled)
	s.NotNil(settled.SettledAt)
}

func (s *PaymentServiceTestSuite) TestOverpaymentRefused() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	_, _, err := s.pay(st.Number, r.Reference, "USD", "150.00", acc.AccountID)
	s.Require().NoError(err)
	before := s.journalCommands()

	_, _, err = s.pay(st.Number, r.Reference, "USD", "300.00", acc.AccountID)
	s.ErrorIs(err, apperrors.ErrOverpaymentRefused)

	got := s.request(r.Reference)
	s.Equal("150.00", got.Paid.Value.StringFixed(2))
	s.Equal("250.00", got.Remaining.Value.StringFixed(2))
	s.Equal("850.00", s.balance(acc.AccountID))
	s.Equal(before, s.journalCommands())
}

func (s *PaymentServiceTestSuite) TestPaidRequestRefusesFurtherPayment() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	_, _, err := s.pay(st.Number, r.Reference, "USD", "400.00", acc.AccountID)
	s.Require().NoError(err)
	s.Require().Equal(domain.RequestPaid, s.request(r.Reference).State)
	before := s.journalCommands()

	_, _, err = s.pay(st.Number, r.Reference, "USD", "1.00", acc.AccountID)
	s.ErrorIs(err, apperrors.ErrOverpaymentRefused)

	got := s.request(r.Reference)
	s.Equal(domain.RequestPaid, got.State)
	s.True(got.Remaining.IsZero())
	s.Equal("600.00", s.balance(acc.AccountID))
	s.Equal(before, s.journalCommands())
}

func (s *PaymentServiceTestSuite) TestRecordPayment_Refusals() {
	usd := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	outsider := s.validatedRequest(domain.USD, "50.00")
	st := s.statementWith("2024-03", r.Reference)

	_, _, err := s.pay(st.Number, outsider.Reference, "USD", "10.00", usd.AccountID)
	s.ErrorIs(err, apperrors.ErrValidation, "request outside the statement")

	_, _, err = s.pay(st.Number, r.Reference, "CDF", "10.00", usd.AccountID)
	s.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	_, _, err = s.pay(st.Number, r.Reference, "USD", "0.00", usd.AccountID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = s.svc.Payment.RecordPayment(s.ctx, dto.RecordPaymentRequest{
		StatementNumber: st.Number,
		RequestRef:      r.Reference,
		Amount:          dto.AmountDTO{Currency: "USD", Value: decimal.RequireFromString("10.00")},
	}, finance)
	s.ErrorIs(err, apperrors.ErrNoSuitableAccount)

	s.Equal("1000.00", s.balance(usd.AccountID))
}

func (s *PaymentServiceTestSuite) TestActiveChequeSelectsAccount() {
	other := s.openAccount("TMB", "USD-009", domain.USD, "500.00")
	chequeBank := s.openAccount("EQUITY", "USD-002", domain.USD, "500.00")
	r := s.validatedRequest(domain.USD, "100.00")
	st := s.statementWith("2024-03", r.Reference)

	cheque, err := s.svc.Cheque.IssueCheque(s.ctx, st.Number, dto.IssueChequeRequest{Bank: "EQUITY", Beneficiary: "Kin Transport"}, finance)
	s.Require().NoError(err)
	s.Equal("97.00", cheque.Amounts.USD.StringFixed(2))

	p, _, err := s.pay(st.Number, r.Reference, "USD", "40.00", other.AccountID)
	s.Require().NoError(err)
	s.Equal(chequeBank.AccountID, p.AccountID)
	s.Equal("460.00", s.balance(chequeBank.AccountID))
	s.Equal("500.00", s.balance(other.AccountID))

	_, err = s.svc.Cheque.SetChequeStatus(s.ctx, cheque.Number, dto.SetChequeStatusRequest{Status: "cancelled"}, finance)
	s.Require().NoError(err)

	p, _, err = s.pay(st.Number, r.Reference, "USD", "10.00", other.AccountID)
	s.Require().NoError(err)
	s.Equal(other.AccountID, p.AccountID)
}

func (s *PaymentServiceTestSuite) TestReversePayment() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	p, _, err := s.pay(st.Number, r.Reference, "USD", "400.00", acc.AccountID)
	s.Require().NoError(err)
	s.Equal(domain.RequestPaid, s.request(r.Reference).State)

	reversed, err := s.svc.Payment.ReversePayment(s.ctx, p.Reference, finance)
	s.Require().NoError(err)
	s.True(reversed.Reversed)
	s.Require().NotNil(reversed.ReversalMovementID)

	got := s.request(r.Reference)
	s.Equal(domain.RequestValidatedDG, got.State)
	s.Equal("400.00", got.Remaining.Value.StringFixed(2))
	s.True(got.Paid.IsZero())
	s.Equal("1000.00", s.balance(acc.AccountID))

	unsettled, err := s.svc.Statement.GetStatement(s.ctx, st.Number)
	s.Require().NoError(err)
	s.False(unsettled.Settled)

	_, err = s.svc.Payment.ReversePayment(s.ctx, p.Reference, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (s *PaymentServiceTestSuite) TestReversePayment_SealedStatement() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	p, _, err := s.pay(st.Number, r.Reference, "USD", "100.00", acc.AccountID)
	s.Require().NoError(err)
	_, _, err = s.svc.Statement.SealExpenses(s.ctx, st.Number, finance)
	s.Require().NoError(err)

	_, err = s.svc.Payment.ReversePayment(s.ctx, p.Reference, finance)
	s.ErrorIs(err, apperrors.ErrStatementSealed)
	s.Equal("900.00", s.balance(acc.AccountID))
}

func (s *PaymentServiceTestSuite) TestConcurrentPaymentsNeverOverpay() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)

	const workers = 8
	results := make([]error, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, _, results[i] = s.pay(st.Number, r.Reference, "USD", "150.00", acc.AccountID)
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, apperrors.ErrOverpaymentRefused)
	}
	s.Equal(2, succeeded)

	got := s.request(r.Reference)
	s.Equal("300.00", got.Paid.Value.StringFixed(2))
	s.Equal("700.00", s.balance(acc.AccountID))

	page, err := s.svc.Payment.ListPayments(s.ctx, dto.ListPaymentsParams{StatementNumber: st.Number})
	s.Require().NoError(err)
	s.Len(page.Payments, 2)
	s.NotEqual(page.Payments[0].Reference, page.Payments[1].Reference)
}

func (s *PaymentServiceTestSuite) TestCancelledContextLeavesNoTrace() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	before := s.journalCommands()

	// The deadline passes while the command is running.
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	slow := services.NewServiceContainer(services.Dependencies{
		TxManager: s.db,
		Policy:    s.policy,
		Clock: func() time.Time {
			cancel()
			return s.clock.Now()
		},
	})

	accountID := acc.AccountID
	_, _, err := slow.Payment.RecordPayment(ctx, dto.RecordPaymentRequest{
		StatementNumber: st.Number,
		RequestRef:      r.Reference,
		Amount:          dto.AmountDTO{Currency: "USD", Value: decimal.RequireFromString("150.00")},
		AccountID:       &accountID,
	}, finance)
	s.True(errors.Is(err, context.Canceled))

	s.Equal("1000.00", s.balance(acc.AccountID))
	s.True(s.request(r.Reference).Paid.IsZero())
	s.Equal(before, s.journalCommands())
}

func (s *PaymentServiceTestSuite) TestListPayments_Paginates() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)
	for i := 0; i < 3; i++ {
		_, _, err := s.pay(st.Number, r.Reference, "USD", "10.00", acc.AccountID)
		s.Require().NoError(err)
	}

	first, err := s.svc.Payment.ListPayments(s.ctx, dto.ListPaymentsParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(first.Payments, 2)
	s.Require().NotNil(first.NextToken)

	second, err := s.svc.Payment.ListPayments(s.ctx, dto.ListPaymentsParams{Limit: 2, NextToken: *first.NextToken})
	s.Require().NoError(err)
	s.Len(second.Payments, 1)
	s.Nil(second.NextToken)
	s.Equal("PAY-000003", second.Payments[0].Reference)
}
