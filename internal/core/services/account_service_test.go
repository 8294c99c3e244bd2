package services_test

import (
	"context"
	"testing"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	KernelSuite
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestOpenAccount() {
	acc := s.openAccount(" RAWBANK ", "USD-001", domain.USD, "1000.00")
	s.Equal("RAWBANK", acc.Bank)
	s.True(acc.IsActive)
	s.Equal("1000.00", acc.CurrentBalance.StringFixed(2))
	s.EqualValues(0, acc.Version)

	_, err := s.svc.Account.OpenAccount(s.ctx, dto.OpenAccountRequest{
		Bank: "RAWBANK", AccountNumber: "USD-001", Currency: "USD",
	}, finance)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Account.OpenAccount(s.ctx, dto.OpenAccountRequest{
		Bank: "RAWBANK", AccountNumber: "EUR-001", Currency: "EUR",
	}, finance)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Account.OpenAccount(s.ctx, dto.OpenAccountRequest{
		Bank: "RAWBANK", AccountNumber: "USD-002", Currency: "USD", InitialBalance: decimal.RequireFromString("1.005"),
	}, finance)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestOverdraftWarns() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "100.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)

	_, warnings, err := s.pay(st.Number, r.Reference, "USD", "150.00", acc.AccountID)
	s.Require().NoError(err)
	s.Require().Len(warnings, 1)
	s.Equal(domain.WarningOverdraft, warnings[0].Code)
	s.Equal("-50.00", s.balance(acc.AccountID))
}

func (s *AccountServiceTestSuite) TestInsufficientFundsWhenOverdraftDisabled() {
	s.policy.AllowOverdraft = false
	s.rebuild()
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "100.00")
	r := s.validatedRequest(domain.USD, "400.00")
	st := s.statementWith("2024-03", r.Reference)

	_, _, err := s.pay(st.Number, r.Reference, "USD", "150.00", acc.AccountID)
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal("100.00", s.balance(acc.AccountID))
	s.True(s.request(r.Reference).Paid.IsZero())

	_, _, err = s.pay(st.Number, r.Reference, "USD", "100.00", acc.AccountID)
	s.Require().NoError(err)
	s.Equal("0.00", s.balance(acc.AccountID))
}

func (s *AccountServiceTestSuite) TestDeactivateAccount() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "100.00")
	r := s.validatedRequest(domain.USD, "50.00")
	st := s.statementWith("2024-03", r.Reference)

	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, acc.AccountID, finance))
	s.ErrorIs(s.svc.Account.DeactivateAccount(s.ctx, acc.AccountID, finance), apperrors.ErrInvalidStateTransition)

	_, _, err := s.pay(st.Number, r.Reference, "USD", "10.00", acc.AccountID)
	s.ErrorIs(err, apperrors.ErrNoSuitableAccount)

	page, err := s.svc.Account.ListAccounts(s.ctx, dto.ListAccountsParams{ActiveOnly: true})
	s.Require().NoError(err)
	s.Empty(page.Accounts)
}

func (s *AccountServiceTestSuite) TestReverseMovementDispatch() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	validator := approver
	receipt, _, err := s.svc.Receipt.RecordReceipt(s.ctx, dto.RecordReceiptRequest{
		Bank:        "RAWBANK",
		AmountUSD:   decimal.RequireFromString("200.00"),
		EncashedOn:  "2024-03-01",
		ValidatedBy: &validator,
	}, finance)
	s.Require().NoError(err)

	_, _, err = s.svc.Account.ReverseMovement(s.ctx, receipt.PostedMovementIDs[0], finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	r := s.validatedRequest(domain.USD, "300.00")
	st := s.statementWith("2024-03", r.Reference)
	p, _, err := s.pay(st.Number, r.Reference, "USD", "300.00", acc.AccountID)
	s.Require().NoError(err)
	s.Equal("900.00", s.balance(acc.AccountID))

	reversal, _, err := s.svc.Account.ReverseMovement(s.ctx, p.MovementID, finance)
	s.Require().NoError(err)
	s.Equal(domain.CauseReversal, reversal.Cause)
	s.Equal(domain.DirectionCredit, reversal.Direction)
	s.Equal("1200.00", s.balance(acc.AccountID))

	payment, err := s.svc.Payment.GetPayment(s.ctx, p.Reference)
	s.Require().NoError(err)
	s.True(payment.Reversed)
	s.Equal(reversal.MovementID, *payment.ReversalMovementID)
	s.Equal("300.00", s.request(r.Reference).Remaining.Value.StringFixed(2))

	_, _, err = s.svc.Account.ReverseMovement(s.ctx, p.MovementID, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	_, _, err = s.svc.Account.ReverseMovement(s.ctx, reversal.MovementID, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	_, _, err = s.svc.Account.ReverseMovement(s.ctx, "missing", finance)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListMovementsAndVerify() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "300.00")
	st := s.statementWith("2024-03", r.Reference)
	for i := 0; i < 3; i++ {
		_, _, err := s.pay(st.Number, r.Reference, "USD", "100.00", acc.AccountID)
		s.Require().NoError(err)
	}

	first, err := s.svc.Account.ListMovements(s.ctx, acc.AccountID, dto.ListMovementsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first.Movements, 2)
	s.Require().NotNil(first.NextToken)
	s.Equal("900.00", first.Movements[0].BalanceAfter.StringFixed(2))

	rest, err := s.svc.Account.ListMovements(s.ctx, acc.AccountID, dto.ListMovementsParams{Limit: 2, NextToken: *first.NextToken})
	s.Require().NoError(err)
	s.Require().Len(rest.Movements, 1)
	s.EqualValues(3, rest.Movements[0].Sequence)
	s.Nil(rest.NextToken)

	v, err := s.svc.Account.VerifyAccount(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.True(v.Consistent)
	s.Equal("-300.00", v.MovementSum.StringFixed(2))
	s.True(v.Drift.IsZero())

	_, err = s.svc.Account.ListMovements(s.ctx, acc.AccountID, dto.ListMovementsParams{NextToken: "%%%"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestVerifyAccountReportsDrift() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	err := s.db.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Store) error {
		stored, err := tx.Accounts().FindAccountByIDForUpdate(ctx, acc.AccountID)
		if err != nil {
			return err
		}
		stored.CurrentBalance = decimal.RequireFromString("999.00")
		return tx.Accounts().UpdateAccount(ctx, *stored, stored.Version)
	})
	s.Require().NoError(err)

	v, err := s.svc.Account.VerifyAccount(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.False(v.Consistent)
	s.Equal("-1.00", v.Drift.StringFixed(2))
}

func (s *AccountServiceTestSuite) TestReferenceCollisionAdvancesCounter() {
	// A request inserted behind the generator's back occupies DEM-000001 and DEM-000002.
	err := s.db.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Store) error {
		for _, ref := range []string{"DEM-000001", "DEM-000002"} {
			r, err := domain.NewRequest(ref, author, "legacy", "6011", "imported", domain.MustAmount(domain.USD, "1.00"), nil, s.clock.Now())
			if err != nil {
				return err
			}
			if err := tx.Requests().SaveRequest(ctx, *r); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	r := s.validatedRequest(domain.USD, "10.00")
	s.Equal("DEM-000003", r.Reference)
	next := s.validatedRequest(domain.USD, "10.00")
	s.Equal("DEM-000004", next.Reference)
}

func (s *AccountServiceTestSuite) TestCommandsAreJournaled() {
	acc := s.openAccount("RAWBANK", "USD-001", domain.USD, "1000.00")
	r := s.validatedRequest(domain.USD, "100.00")
	st := s.statementWith("2024-03", r.Reference)
	_, _, err := s.pay(st.Number, r.Reference, "USD", "100.00", acc.AccountID)
	s.Require().NoError(err)

	s.Equal([]string{
		domain.CmdOpenAccount,
		domain.CmdCreateRequest,
		domain.CmdValidateRequest,
		domain.CmdOpenStatement,
		domain.CmdAddStatementMembers,
		domain.CmdRecordPayment,
	}, s.journalCommands())

	page, err := s.svc.Journal.ListJournal(s.ctx, dto.ListJournalParams{Limit: 4})
	s.Require().NoError(err)
	s.Len(page.Entries, 4)
	s.Require().NotNil(page.NextToken)
	s.Equal(acc.AccountID, page.Entries[0].Subject)

	rest, err := s.svc.Journal.ListJournal(s.ctx, dto.ListJournalParams{Limit: 4, NextToken: *page.NextToken})
	s.Require().NoError(err)
	s.Len(rest.Entries, 2)
	s.EqualValues(6, rest.Entries[1].Seq)
}
