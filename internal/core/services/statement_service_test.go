package services_test

import (
	"testing"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/stretchr/testify/suite"
)

type StatementServiceTestSuite struct {
	KernelSuite
}

func TestStatementService(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}

func (s *StatementServiceTestSuite) TestTotalsAndIPR() {
	a := s.validatedRequest(domain.USD, "100.00")
	b := s.validatedRequest(domain.USD, "200.00")
	c := s.validatedRequest(domain.CDF, "1000000.00")

	st := s.statementWith("2024-03", a.Reference, b.Reference, c.Reference)

	s.Equal("300.00", st.Totals.Gross.USD.StringFixed(2))
	s.Equal("9.00", st.Totals.IPR.USD.StringFixed(2))
	s.Equal("291.00", st.Totals.Net.USD.StringFixed(2))
	s.Equal("1000000.00", st.Totals.Gross.CDF.StringFixed(2))
	s.Equal("30000.00", st.Totals.IPR.CDF.StringFixed(2))
	s.Equal("970000.00", st.Totals.Net.CDF.StringFixed(2))
	s.Equal([]string{a.Reference, b.Reference, c.Reference}, st.Members)

	recomputed, err := s.svc.Statement.RecomputeTotals(s.ctx, st.Number, finance)
	s.Require().NoError(err)
	s.True(st.Totals.Equal(recomputed.Totals))
}

func (s *StatementServiceTestSuite) TestOnePeriodOneStatement() {
	s.statementWith("2024-03")
	_, err := s.svc.Statement.OpenStatement(s.ctx, dto.OpenStatementRequest{Period: "2024-03"}, finance)
	s.ErrorIs(err, apperrors.ErrStatementPeriodConflict)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Statement.OpenStatement(s.ctx, dto.OpenStatementRequest{Period: "2024-13"}, finance)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StatementServiceTestSuite) TestMembership() {
	a := s.validatedRequest(domain.USD, "100.00")
	pending, err := s.svc.Request.CreateRequest(s.ctx, dto.CreateRequestRequest{
		Service: "it", NatureCode: "6020", Description: "toner",
		Total: dto.AmountDTO{Currency: "USD", Value: a.Total.Value},
	}, author)
	s.Require().NoError(err)

	march := s.statementWith("2024-03", a.Reference)
	april := s.statementWith("2024-04")

	_, err = s.svc.Statement.AddMembers(s.ctx, april.Number, []string{a.Reference}, finance)
	s.ErrorIs(err, apperrors.ErrMembershipConflict)

	_, err = s.svc.Statement.AddMembers(s.ctx, april.Number, []string{pending.Reference}, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	_, err = s.svc.Statement.AddMembers(s.ctx, april.Number, []string{"DEM-999999"}, finance)
	s.ErrorIs(err, apperrors.ErrNotFound)

	got, err := s.svc.Statement.GetStatement(s.ctx, april.Number)
	s.Require().NoError(err)
	s.Empty(got.Members)

	got, err = s.svc.Statement.GetStatement(s.ctx, march.Number)
	s.Require().NoError(err)
	s.Equal([]string{a.Reference}, got.Members)
}

func (s *StatementServiceTestSuite) TestMembershipOnlyGrows() {
	a := s.validatedRequest(domain.USD, "100.00")
	b := s.validatedRequest(domain.USD, "40.00")
	c := s.validatedRequest(domain.CDF, "5000.00")
	st := s.statementWith("2024-03", a.Reference)

	grown, err := s.svc.Statement.AddMembers(s.ctx, st.Number, []string{b.Reference}, finance)
	s.Require().NoError(err)
	s.Equal([]string{a.Reference, b.Reference}, grown.Members)

	// A refused batch leaves earlier members in place.
	_, err = s.svc.Statement.AddMembers(s.ctx, st.Number, []string{c.Reference, a.Reference}, finance)
	s.ErrorIs(err, apperrors.ErrMembershipConflict)

	recomputed, err := s.svc.Statement.RecomputeTotals(s.ctx, st.Number, finance)
	s.Require().NoError(err)
	s.Equal([]string{a.Reference, b.Reference}, recomputed.Members)
	s.Equal("140.00", recomputed.Totals.Gross.USD.StringFixed(2))

	sealed, _, err := s.svc.Statement.SealExpenses(s.ctx, st.Number, finance)
	s.Require().NoError(err)
	s.Equal([]string{a.Reference, b.Reference}, sealed.Members)

	for _, cmd := range s.journalCommands() {
		s.NotContains(cmd, "remove")
	}
}

func (s *StatementServiceTestSuite) TestSealIsIdempotent() {
	a := s.validatedRequest(domain.USD, "100.00")
	b := s.validatedRequest(domain.CDF, "250000.00")
	st := s.statementWith("2024-03", a.Reference, b.Reference)

	sealed, lines, err := s.svc.Statement.SealExpenses(s.ctx, st.Number, finance)
	s.Require().NoError(err)
	s.True(sealed.ExpensesValidated)
	s.Require().Len(lines, 2)
	s.Equal("DEP-2024-03-0001", lines[0].Code)
	s.Equal("DEP-2024-03-0002", lines[1].Code)
	journalAfterFirst := s.journalCommands()

	again, linesAgain, err := s.svc.Statement.SealExpenses(s.ctx, st.Number, "someone-else")
	s.Require().NoError(err)
	s.Equal(lines, linesAgain)
	s.Equal(sealed.SealedAt, again.SealedAt)
	s.Equal(finance, *again.SealedBy)
	s.Equal(journalAfterFirst, s.journalCommands())

	stored, err := s.svc.Statement.ListExpenseLines(s.ctx, st.Number)
	s.Require().NoError(err)
	s.Len(stored, 2)

	c := s.validatedRequest(domain.USD, "10.00")
	_, err = s.svc.Statement.AddMembers(s.ctx, st.Number, []string{c.Reference}, finance)
	s.ErrorIs(err, apperrors.ErrStatementSealed)
	got, err := s.svc.Statement.GetStatement(s.ctx, st.Number)
	s.Require().NoError(err)
	s.Equal([]string{a.Reference, b.Reference}, got.Members)
}

func (s *StatementServiceTestSuite) TestSealEmptyStatementRefused() {
	st := s.statementWith("2024-03")
	_, _, err := s.svc.Statement.SealExpenses(s.ctx, st.Number, finance)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StatementServiceTestSuite) TestExpenseLineCounterRestartsEachPeriod() {
	a := s.validatedRequest(domain.USD, "100.00")
	b := s.validatedRequest(domain.USD, "200.00")
	march := s.statementWith("2024-03", a.Reference)
	april := s.statementWith("2024-04", b.Reference)

	_, marchLines, err := s.svc.Statement.SealExpenses(s.ctx, march.Number, finance)
	s.Require().NoError(err)
	_, aprilLines, err := s.svc.Statement.SealExpenses(s.ctx, april.Number, finance)
	s.Require().NoError(err)

	s.Equal("DEP-2024-03-0001", marchLines[0].Code)
	s.Equal("DEP-2024-04-0001", aprilLines[0].Code)
}

func (s *StatementServiceTestSuite) TestChequeLifecycle() {
	a := s.validatedRequest(domain.USD, "100.00")
	st := s.statementWith("2024-03", a.Reference)

	cheque, err := s.svc.Cheque.IssueCheque(s.ctx, st.Number, dto.IssueChequeRequest{Bank: "RAWBANK", Beneficiary: "ACME"}, finance)
	s.Require().NoError(err)
	s.Equal("CHQ-000001", cheque.Number)
	s.Equal(domain.ChequeGenerated, cheque.Status)

	_, err = s.svc.Cheque.IssueCheque(s.ctx, st.Number, dto.IssueChequeRequest{Bank: "TMB", Beneficiary: "ACME"}, finance)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Cheque.SetChequeStatus(s.ctx, cheque.Number, dto.SetChequeStatusRequest{Status: "cashed"}, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	issued, err := s.svc.Cheque.SetChequeStatus(s.ctx, cheque.Number, dto.SetChequeStatusRequest{Status: "issued"}, finance)
	s.Require().NoError(err)
	s.NotNil(issued.IssuedAt)

	cashed, err := s.svc.Cheque.SetChequeStatus(s.ctx, cheque.Number, dto.SetChequeStatusRequest{Status: "cashed"}, finance)
	s.Require().NoError(err)
	s.Equal(domain.ChequeCashed, cashed.Status)

	_, err = s.svc.Cheque.SetChequeStatus(s.ctx, cheque.Number, dto.SetChequeStatusRequest{Status: "cancelled"}, finance)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (s *StatementServiceTestSuite) TestListStatements() {
	s.statementWith("2024-03")
	s.statementWith("2024-04")
	sealed := true

	all, err := s.svc.Statement.ListStatements(s.ctx, dto.ListStatementsParams{Year: 2024})
	s.Require().NoError(err)
	s.Len(all.Statements, 2)
	s.Nil(all.NextToken)

	none, err := s.svc.Statement.ListStatements(s.ctx, dto.ListStatementsParams{Sealed: &sealed})
	s.Require().NoError(err)
	s.Empty(none.Statements)
}
