package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/handlers"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testActor = "caissier-01"

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockAccountService   *MockAccountService
	mockRequestService   *MockRequestService
	mockStatementService *MockStatementService
	mockChequeService    *MockChequeService
	mockPaymentService   *MockPaymentService
	mockReceiptService   *MockReceiptService
	mockClosingService   *MockClosingService
	mockJournalService   *MockJournalService
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterValidators())
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))

	suite.mockAccountService = new(MockAccountService)
	suite.mockRequestService = new(MockRequestService)
	suite.mockStatementService = new(MockStatementService)
	suite.mockChequeService = new(MockChequeService)
	suite.mockPaymentService = new(MockPaymentService)
	suite.mockReceiptService = new(MockReceiptService)
	suite.mockClosingService = new(MockClosingService)
	suite.mockJournalService = new(MockJournalService)

	handlers.RegisterRoutes(suite.router, &portssvc.ServiceContainer{
		Account:   suite.mockAccountService,
		Request:   suite.mockRequestService,
		Statement: suite.mockStatementService,
		Cheque:    suite.mockChequeService,
		Payment:   suite.mockPaymentService,
		Receipt:   suite.mockReceiptService,
		Closing:   suite.mockClosingService,
		Journal:   suite.mockJournalService,
	})
}

// serve sends a request as actor; an empty actor omits the header.
func (suite *HandlerTestSuite) serve(method, path string, body any, actor string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if actor != "" {
		req.Header.Set(middleware.ActorHeader, actor)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var body dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body), "Failed to unmarshal error body")
	return body
}

func newTestAccount() *domain.BankAccount {
	now := time.Now().UTC()
	return &domain.BankAccount{
		AccountID:      uuid.NewString(),
		Bank:           "RAWBANK",
		AccountNumber:  "0001-USD",
		Currency:       domain.USD,
		InitialBalance: decimal.RequireFromString("100.00"),
		CurrentBalance: decimal.RequireFromString("100.00"),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(testActor, now),
	}
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.serve(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestOpenAccount_Success() {
	account := newTestAccount()
	suite.mockAccountService.On("OpenAccount",
		mock.Anything,
		mock.MatchedBy(func(r dto.OpenAccountRequest) bool {
			return r.Bank == "RAWBANK" && r.Currency == "USD" && r.InitialBalance.Equal(decimal.RequireFromString("100.00"))
		}),
		testActor,
	).Return(account, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/accounts", map[string]any{
		"bank":           "RAWBANK",
		"accountNumber":  "0001-USD",
		"currency":       "USD",
		"initialBalance": "100.00",
	}, testActor)

	suite.Equal(http.StatusCreated, w.Code, "Expected status Created")
	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.AccountID, resp.AccountID)
	suite.Equal("USD", resp.Currency)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestOpenAccount_MissingActor() {
	w := suite.serve(http.MethodPost, "/api/v1/accounts", map[string]any{
		"bank": "RAWBANK", "accountNumber": "0001", "currency": "USD",
	}, "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.decodeError(w).Error, middleware.ActorHeader)
	suite.mockAccountService.AssertNotCalled(suite.T(), "OpenAccount")
}

func (suite *HandlerTestSuite) TestOpenAccount_UnsupportedCurrency() {
	w := suite.serve(http.MethodPost, "/api/v1/accounts", map[string]any{
		"bank": "RAWBANK", "accountNumber": "0001", "currency": "EUR",
	}, testActor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "OpenAccount")
}

func (suite *HandlerTestSuite) TestOpenAccount_Duplicate() {
	suite.mockAccountService.On("OpenAccount", mock.Anything, mock.Anything, testActor).
		Return(nil, fmt.Errorf("%w: account 0001 at RAWBANK", apperrors.ErrDuplicate)).Once()

	w := suite.serve(http.MethodPost, "/api/v1/accounts", map[string]any{
		"bank": "RAWBANK", "accountNumber": "0001", "currency": "CDF",
	}, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListAccounts_PassesFilters() {
	suite.mockAccountService.On("ListAccounts", mock.Anything,
		mock.MatchedBy(func(p dto.ListAccountsParams) bool {
			return p.Bank == "TMB" && p.Currency == "CDF" && p.ActiveOnly && p.Limit == 5
		}),
	).Return(&dto.ListAccountsResponse{Accounts: []dto.AccountResponse{}}, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts?bank=TMB&currency=CDF&activeOnly=true&limit=5", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestGetAccountBalance_NotFound() {
	suite.mockAccountService.On("GetAccountBalance", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound)).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/missing/balance", nil, testActor)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestVerifyAccount_ReportsDrift() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("VerifyAccount", mock.Anything, accountID).Return(&dto.AccountVerification{
		AccountID:      accountID,
		InitialBalance: decimal.RequireFromString("10.00"),
		CurrentBalance: decimal.RequireFromString("15.00"),
		MovementSum:    decimal.RequireFromString("4.00"),
		Drift:          decimal.RequireFromString("1.00"),
		Consistent:     false,
	}, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/"+accountID+"/verify", nil, testActor)

	suite.Equal(http.StatusOK, w.Code)
	var report dto.AccountVerification
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &report))
	suite.False(report.Consistent)
	suite.True(report.Drift.Equal(decimal.RequireFromString("1.00")))
}

func (suite *HandlerTestSuite) TestDeactivateAccount_NoContent() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, accountID, testActor).Return(nil).Once()

	w := suite.serve(http.MethodDelete, "/api/v1/accounts/"+accountID, nil, testActor)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestReverseMovement_AlreadyReversed() {
	suite.mockAccountService.On("ReverseMovement", mock.Anything, "mv-1", testActor).
		Return(nil, nil, fmt.Errorf("%w: movement mv-1 already reversed", apperrors.ErrDuplicate)).Once()

	w := suite.serve(http.MethodPost, "/api/v1/movements/mv-1/reverse", nil, testActor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(suite.decodeError(w).Error, "already reversed")
}

func (suite *HandlerTestSuite) TestReverseMovement_ReturnsWarnings() {
	reversal := &domain.Movement{
		MovementID: uuid.NewString(),
		AccountID:  uuid.NewString(),
		Sequence:   3,
		Direction:  domain.DirectionDebit,
		Amount:     domain.MustAmount(domain.USD, "50.00"),
		Cause:      domain.CauseReversal,
		CauseRef:   "mv-1",
		CreatedBy:  testActor,
	}
	warnings := []domain.Warning{{Code: domain.WarningOverdraft, Message: "balance below zero"}}
	suite.mockAccountService.On("ReverseMovement", mock.Anything, "mv-1", testActor).Return(reversal, warnings, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/movements/mv-1/reverse", nil, testActor)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.MovementResult
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(reversal.MovementID, resp.Movement.MovementID)
	suite.Require().Len(resp.Warnings, 1)
	suite.Equal(domain.WarningOverdraft, resp.Warnings[0].Code)
}

func (suite *HandlerTestSuite) TestIntegrityFailure_HidesDetails() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").
		Return(nil, fmt.Errorf("%w: balance drift on acc-1", apperrors.ErrIntegrity)).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/acc-1", nil, testActor)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(suite.decodeError(w).Error, "drift")
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
