package handlers_test

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}
func (m *MockAccountService) GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalanceResponse, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountBalanceResponse), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAccountsResponse), args.Error(1)
}
func (m *MockAccountService) ListMovements(ctx context.Context, accountID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListMovementsResponse), args.Error(1)
}
func (m *MockAccountService) VerifyAccount(ctx context.Context, accountID string) (*dto.AccountVerification, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountVerification), args.Error(1)
}
func (m *MockAccountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, actor string) (*domain.BankAccount, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, actor string) error {
	args := m.Called(ctx, accountID, actor)
	return args.Error(0)
}
func (m *MockAccountService) ReverseMovement(ctx context.Context, movementID string, actor string) (*domain.Movement, []domain.Warning, error) {
	args := m.Called(ctx, movementID, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Movement), args.Get(1).([]domain.Warning), args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock RequestService ---
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) GetRequest(ctx context.Context, ref string) (*domain.Request, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}
func (m *MockRequestService) ListRequests(ctx context.Context, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRequestsResponse), args.Error(1)
}
func (m *MockRequestService) CreateRequest(ctx context.Context, req dto.CreateRequestRequest, actor string) (*domain.Request, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}
func (m *MockRequestService) EditRequest(ctx context.Context, ref string, req dto.EditRequestRequest, actor string) (*domain.Request, error) {
	args := m.Called(ctx, ref, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}
func (m *MockRequestService) ValidateRequest(ctx context.Context, ref string, req dto.ValidateRequestRequest, actor string) (*domain.Request, error) {
	args := m.Called(ctx, ref, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

var _ portssvc.RequestSvcFacade = (*MockRequestService)(nil)

// --- Mock StatementService ---
type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) GetStatement(ctx context.Context, number string) (*domain.Statement, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListStatementsResponse), args.Error(1)
}
func (m *MockStatementService) ListExpenseLines(ctx context.Context, number string) ([]domain.ExpenseLine, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseLine), args.Error(1)
}
func (m *MockStatementService) OpenStatement(ctx context.Context, req dto.OpenStatementRequest, actor string) (*domain.Statement, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) AddMembers(ctx context.Context, number string, refs []string, actor string) (*domain.Statement, error) {
	args := m.Called(ctx, number, refs, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) RecomputeTotals(ctx context.Context, number string, actor string) (*domain.Statement, error) {
	args := m.Called(ctx, number, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) SealExpenses(ctx context.Context, number string, actor string) (*domain.Statement, []domain.ExpenseLine, error) {
	args := m.Called(ctx, number, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Statement), args.Get(1).([]domain.ExpenseLine), args.Error(2)
}

var _ portssvc.StatementSvcFacade = (*MockStatementService)(nil)

// --- Mock ChequeService ---
type MockChequeService struct {
	mock.Mock
}

func (m *MockChequeService) IssueCheque(ctx context.Context, statementNumber string, req dto.IssueChequeRequest, actor string) (*domain.Cheque, error) {
	args := m.Called(ctx, statementNumber, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cheque), args.Error(1)
}
func (m *MockChequeService) SetChequeStatus(ctx context.Context, number string, req dto.SetChequeStatusRequest, actor string) (*domain.Cheque, error) {
	args := m.Called(ctx, number, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cheque), args.Error(1)
}
func (m *MockChequeService) GetCheque(ctx context.Context, number string) (*domain.Cheque, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cheque), args.Error(1)
}

var _ portssvc.ChequeSvcFacade = (*MockChequeService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, actor string) (*domain.Payment, []domain.Warning, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).([]domain.Warning), args.Error(2)
}
func (m *MockPaymentService) ReversePayment(ctx context.Context, ref string, actor string) (*domain.Payment, error) {
	args := m.Called(ctx, ref, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, ref string) (*domain.Payment, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPaymentsResponse), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock ReceiptService ---
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) receiptResult(args mock.Arguments) (*domain.Receipt, []domain.Warning, error) {
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Receipt), args.Get(1).([]domain.Warning), args.Error(2)
}
func (m *MockReceiptService) RecordReceipt(ctx context.Context, req dto.RecordReceiptRequest, actor string) (*domain.Receipt, []domain.Warning, error) {
	return m.receiptResult(m.Called(ctx, req, actor))
}
func (m *MockReceiptService) ValidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return m.receiptResult(m.Called(ctx, ref, actor))
}
func (m *MockReceiptService) UnvalidateReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return m.receiptResult(m.Called(ctx, ref, actor))
}
func (m *MockReceiptService) DeleteReceipt(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error) {
	return m.receiptResult(m.Called(ctx, ref, actor))
}
func (m *MockReceiptService) GetReceipt(ctx context.Context, ref string) (*domain.Receipt, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}
func (m *MockReceiptService) ListReceipts(ctx context.Context, params dto.ListReceiptsParams) (*dto.ListReceiptsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListReceiptsResponse), args.Error(1)
}

var _ portssvc.ReceiptSvcFacade = (*MockReceiptService)(nil)

// --- Mock ClosingService ---
type MockClosingService struct {
	mock.Mock
}

func (m *MockClosingService) closingResult(args mock.Arguments) (*domain.Closing, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Closing), args.Error(1)
}
func (m *MockClosingService) GetCurrentClosing(ctx context.Context) (*domain.Closing, error) {
	return m.closingResult(m.Called(ctx))
}
func (m *MockClosingService) GetClosing(ctx context.Context, period domain.Period) (*domain.Closing, error) {
	return m.closingResult(m.Called(ctx, period))
}
func (m *MockClosingService) ListClosings(ctx context.Context, params dto.ListClosingsParams) (*dto.ListClosingsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListClosingsResponse), args.Error(1)
}
func (m *MockClosingService) ComputeBalances(ctx context.Context, period domain.Period, actor string) (*domain.Closing, error) {
	return m.closingResult(m.Called(ctx, period, actor))
}
func (m *MockClosingService) ClosePeriod(ctx context.Context, period domain.Period, req dto.ClosePeriodRequest, actor string) (*domain.Closing, error) {
	return m.closingResult(m.Called(ctx, period, req, actor))
}

var _ portssvc.ClosingSvcFacade = (*MockClosingService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) ListJournal(ctx context.Context, params dto.ListJournalParams) (*dto.ListJournalResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalResponse), args.Error(1)
}

var _ portssvc.JournalSvc = (*MockJournalService)(nil)
