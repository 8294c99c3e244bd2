package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestStatement(members ...string) *domain.Statement {
	return &domain.Statement{
		Number:      "REL-000001",
		Period:      domain.Period{Month: 3, Year: 2024},
		Members:     members,
		Validator:   testActor,
		ValidatedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func (suite *HandlerTestSuite) TestCreateRequest_Success() {
	created := &domain.Request{
		Reference:   "DEM-000001",
		Service:     "Recouvrement",
		NatureCode:  "611",
		Description: "Fournitures",
		Total:       domain.MustAmount(domain.CDF, "250000.00"),
		Paid:        domain.ZeroAmount(domain.CDF),
		Remaining:   domain.MustAmount(domain.CDF, "250000.00"),
		State:       domain.RequestPending,
		Author:      testActor,
	}
	suite.mockRequestService.On("CreateRequest", mock.Anything,
		mock.MatchedBy(func(r dto.CreateRequestRequest) bool {
			return r.Service == "Recouvrement" && r.Total.Currency == "CDF"
		}),
		testActor,
	).Return(created, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/requests", map[string]any{
		"service":     "Recouvrement",
		"natureCode":  "611",
		"description": "Fournitures",
		"total":       map[string]any{"currency": "CDF", "value": "250000.00"},
	}, testActor)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RequestResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("DEM-000001", resp.Reference)
	suite.Equal("pending", resp.State)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestValidateRequest_RejectsUnknownDecision() {
	w := suite.serve(http.MethodPost, "/api/v1/requests/DEM-000001/validate", map[string]any{
		"decision": "paid",
	}, testActor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRequestService.AssertNotCalled(suite.T(), "ValidateRequest")
}

func (suite *HandlerTestSuite) TestEditRequest_ForbiddenActor() {
	suite.mockRequestService.On("EditRequest", mock.Anything, "DEM-000001", mock.Anything, "someone-else").
		Return(nil, fmt.Errorf("%w: only the author may edit", apperrors.ErrForbiddenActor)).Once()

	w := suite.serve(http.MethodPut, "/api/v1/requests/DEM-000001", map[string]any{
		"description": "changed",
	}, "someone-else")

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestOpenStatement_InvalidPeriod() {
	w := suite.serve(http.MethodPost, "/api/v1/statements", map[string]any{"period": "2024-13"}, testActor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatementService.AssertNotCalled(suite.T(), "OpenStatement")
}

func (suite *HandlerTestSuite) TestOpenStatement_PeriodTaken() {
	suite.mockStatementService.On("OpenStatement", mock.Anything,
		dto.OpenStatementRequest{Period: "2024-03"}, testActor,
	).Return(nil, apperrors.ErrStatementPeriodConflict).Once()

	w := suite.serve(http.MethodPost, "/api/v1/statements", map[string]any{"period": "2024-03"}, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockStatementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestAddMembers_Conflict() {
	refs := []string{"DEM-000001", "DEM-000002"}
	suite.mockStatementService.On("AddMembers", mock.Anything, "REL-000001", refs, testActor).
		Return(nil, fmt.Errorf("%w: DEM-000002 belongs to REL-000000", apperrors.ErrMembershipConflict)).Once()

	w := suite.serve(http.MethodPost, "/api/v1/statements/REL-000001/members",
		dto.StatementMembersRequest{RequestRefs: refs}, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockStatementService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestStatementMembers_NoDetachRoute() {
	w := suite.serve(http.MethodDelete, "/api/v1/statements/REL-000001/members",
		dto.StatementMembersRequest{RequestRefs: []string{"DEM-000002"}}, testActor)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockStatementService.AssertNotCalled(suite.T(), "AddMembers")
}

func (suite *HandlerTestSuite) TestSealExpenses_ReturnsLines() {
	statement := newTestStatement("DEM-000001")
	statement.ExpensesValidated = true
	lines := []domain.ExpenseLine{{
		Code:            "DEP-2024-03-0001",
		StatementNumber: statement.Number,
		RequestRef:      "DEM-000001",
		Period:          statement.Period,
		NatureCode:      "611",
		Amounts:         domain.CurrencyTotals{CDF: decimal.RequireFromString("1000.00"), USD: decimal.Zero},
	}}
	suite.mockStatementService.On("SealExpenses", mock.Anything, statement.Number, testActor).Return(statement, lines, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/statements/"+statement.Number+"/seal", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var resp struct {
		Statement    dto.StatementResponse     `json:"statement"`
		ExpenseLines []dto.ExpenseLineResponse `json:"expenseLines"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Statement.ExpensesValidated)
	suite.Require().Len(resp.ExpenseLines, 1)
	suite.Equal("DEP-2024-03-0001", resp.ExpenseLines[0].Code)
}

func (suite *HandlerTestSuite) TestIssueCheque_ActiveChequeExists() {
	suite.mockChequeService.On("IssueCheque", mock.Anything, "REL-000001",
		dto.IssueChequeRequest{Bank: "RAWBANK", Beneficiary: "DGRAD"}, testActor,
	).Return(nil, fmt.Errorf("%w: statement REL-000001 already has an active cheque", apperrors.ErrDuplicate)).Once()

	w := suite.serve(http.MethodPost, "/api/v1/statements/REL-000001/cheque",
		map[string]any{"bank": "RAWBANK", "beneficiary": "DGRAD"}, testActor)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestRecordPayment_PreconditionsAreUnprocessable() {
	cases := []struct {
		name string
		err  error
	}{
		{"overpayment", fmt.Errorf("%w: 600.00 exceeds remaining 500.00", apperrors.ErrOverpaymentRefused)},
		{"currency", fmt.Errorf("%w: USD against CDF", apperrors.ErrCurrencyMismatch)},
		{"account", fmt.Errorf("%w: no active USD account", apperrors.ErrNoSuitableAccount)},
		{"funds", fmt.Errorf("%w: overdraft disabled", apperrors.ErrInsufficientFunds)},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.mockPaymentService.On("RecordPayment", mock.Anything, mock.Anything, testActor).Return(nil, nil, tc.err).Once()

			w := suite.serve(http.MethodPost, "/api/v1/payments", map[string]any{
				"statementNumber": "REL-000001",
				"requestRef":      "DEM-000001",
				"amount":          map[string]any{"currency": "USD", "value": "600.00"},
			}, testActor)

			suite.Equal(http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func (suite *HandlerTestSuite) TestRecordPayment_Success() {
	payment := &domain.Payment{
		Reference:       "PAY-000001",
		StatementNumber: "REL-000001",
		RequestRef:      "DEM-000001",
		AccountID:       "acc-usd",
		MovementID:      "mv-9",
		Amount:          domain.MustAmount(domain.USD, "200.00"),
		PaidBy:          testActor,
		PaidAt:          time.Now().UTC(),
	}
	warnings := []domain.Warning{{Code: domain.WarningOverdraft, Message: "acc-usd below zero"}}
	suite.mockPaymentService.On("RecordPayment", mock.Anything,
		mock.MatchedBy(func(r dto.RecordPaymentRequest) bool {
			return r.RequestRef == "DEM-000001" && r.Amount.Value.Equal(decimal.RequireFromString("200"))
		}),
		testActor,
	).Return(payment, warnings, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/payments", map[string]any{
		"statementNumber": "REL-000001",
		"requestRef":      "DEM-000001",
		"amount":          map[string]any{"currency": "USD", "value": "200.00"},
	}, testActor)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.PaymentResult
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("PAY-000001", resp.Payment.Reference)
	suite.Len(resp.Warnings, 1)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestReversePayment_StatementSealed() {
	suite.mockPaymentService.On("ReversePayment", mock.Anything, "PAY-000001", testActor).
		Return(nil, fmt.Errorf("%w: REL-000001", apperrors.ErrStatementSealed)).Once()

	w := suite.serve(http.MethodPost, "/api/v1/payments/PAY-000001/reverse", nil, testActor)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestListPayments_ByStatement() {
	suite.mockPaymentService.On("ListPayments", mock.Anything,
		mock.MatchedBy(func(p dto.ListPaymentsParams) bool { return p.StatementNumber == "REL-000001" }),
	).Return(&dto.ListPaymentsResponse{Payments: []dto.PaymentResponse{}}, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/payments?statement=REL-000001", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestRecordReceipt_BadDate() {
	w := suite.serve(http.MethodPost, "/api/v1/receipts", map[string]any{
		"bank": "RAWBANK", "amountUSD": "10.00", "encashedOn": "15/03/2024",
	}, testActor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReceiptService.AssertNotCalled(suite.T(), "RecordReceipt")
}

func (suite *HandlerTestSuite) TestValidateReceipt_Success() {
	receipt := &domain.Receipt{
		Reference:         "REC-000001",
		Bank:              "RAWBANK",
		AmountUSD:         decimal.RequireFromString("10.00"),
		AmountCDF:         decimal.Zero,
		EncashedOn:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Author:            testActor,
		Validated:         true,
		PostedMovementIDs: []string{"mv-1"},
	}
	suite.mockReceiptService.On("ValidateReceipt", mock.Anything, "REC-000001", testActor).
		Return(receipt, []domain.Warning(nil), nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/receipts/REC-000001/validate", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ReceiptResult
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Receipt.Validated)
	suite.Equal("2024-03-15", resp.Receipt.EncashedOn)
	suite.NotNil(resp.Warnings)
}

func (suite *HandlerTestSuite) TestDeleteReceipt_ClosedPeriod() {
	suite.mockReceiptService.On("DeleteReceipt", mock.Anything, "REC-000001", testActor).
		Return(nil, nil, apperrors.NewClosingNotAllowed(apperrors.ReasonAlreadyClosed, "2024-03")).Once()

	w := suite.serve(http.MethodDelete, "/api/v1/receipts/REC-000001", nil, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(string(apperrors.ReasonAlreadyClosed), suite.decodeError(w).Reason)
}

func (suite *HandlerTestSuite) TestClosePeriod_NotLastDay() {
	period := domain.Period{Month: 3, Year: 2024}
	suite.mockClosingService.On("ClosePeriod", mock.Anything, period, dto.ClosePeriodRequest{}, testActor).
		Return(nil, apperrors.NewClosingNotAllowed(apperrors.ReasonNotLastDayOfMonth, "2024-03")).Once()

	w := suite.serve(http.MethodPost, "/api/v1/closings/2024-03/close", nil, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(string(apperrors.ReasonNotLastDayOfMonth), suite.decodeError(w).Reason)
	suite.mockClosingService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestClosePeriod_WithObservation() {
	period := domain.Period{Month: 3, Year: 2024}
	observation := "RAS"
	closedBy := testActor
	closedAt := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	closing := &domain.Closing{
		Period:      period,
		Status:      domain.ClosingClosed,
		Net:         domain.CurrencyTotals{CDF: decimal.RequireFromString("1500.00"), USD: decimal.RequireFromString("20.00")},
		ClosedBy:    &closedBy,
		ClosedAt:    &closedAt,
		Observation: &observation,
	}
	suite.mockClosingService.On("ClosePeriod", mock.Anything, period,
		mock.MatchedBy(func(r dto.ClosePeriodRequest) bool { return r.Observation != nil && *r.Observation == "RAS" }),
		testActor,
	).Return(closing, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/closings/2024-03/close", map[string]any{"observation": "RAS"}, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ClosingResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("closed", resp.Status)
	suite.True(resp.Net.USD.Equal(decimal.RequireFromString("20")))
}

func (suite *HandlerTestSuite) TestGetClosing_InvalidPeriod() {
	w := suite.serve(http.MethodGet, "/api/v1/closings/march", nil, testActor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockClosingService.AssertNotCalled(suite.T(), "GetClosing")
}

func (suite *HandlerTestSuite) TestGetCurrentClosing() {
	suite.mockClosingService.On("GetCurrentClosing", mock.Anything).
		Return(&domain.Closing{Period: domain.Period{Month: 10, Year: 2026}, Status: domain.ClosingOpen}, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/closings/current", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ClosingResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2026-10", resp.Period)
	suite.mockClosingService.AssertNotCalled(suite.T(), "GetClosing")
}

func (suite *HandlerTestSuite) TestListJournal() {
	entries := []dto.JournalEntryResponse{{EntryID: "e-1", Seq: 1, Command: domain.CmdOpenAccount, Actor: testActor}}
	suite.mockJournalService.On("ListJournal", mock.Anything,
		mock.MatchedBy(func(p dto.ListJournalParams) bool { return p.Limit == 50 }),
	).Return(&dto.ListJournalResponse{Entries: entries}, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/journal", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListJournalResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Entries, 1)
	suite.Equal(domain.CmdOpenAccount, resp.Entries[0].Command)
}
