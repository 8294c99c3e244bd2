package services

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/dto"
)

// RequestReaderSvc defines read operations for expenditure requests
type RequestReaderSvc interface {
	GetRequest(ctx context.Context, ref string) (*domain.Request, error)
	ListRequests(ctx context.Context, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error)
}

// RequestWriterSvc defines the request lifecycle commands
type RequestWriterSvc interface {
	// CreateRequest submits a pending request with a fresh DEM reference.
	CreateRequest(ctx context.Context, req dto.CreateRequestRequest, actor string) (*domain.Request, error)

	// EditRequest changes a pending request. Only its author may do so.
	EditRequest(ctx context.Context, ref string, req dto.EditRequestRequest, actor string) (*domain.Request, error)

	// ValidateRequest records the approver's decision.
	ValidateRequest(ctx context.Context, ref string, req dto.ValidateRequestRequest, actor string) (*domain.Request, error)
}

// RequestSvcFacade combines all request-related service interfaces
type RequestSvcFacade interface {
	RequestReaderSvc
	RequestWriterSvc
}

// StatementReaderSvc defines read operations for statements
type StatementReaderSvc interface {
	GetStatement(ctx context.Context, number string) (*domain.Statement, error)
	ListStatements(ctx context.Context, params dto.ListStatementsParams) (*dto.ListStatementsResponse, error)
	ListExpenseLines(ctx context.Context, number string) ([]domain.ExpenseLine, error)
}

// StatementWriterSvc defines the statement commands
type StatementWriterSvc interface {
	// OpenStatement creates the statement of a period. One statement per period.
	OpenStatement(ctx context.Context, req dto.OpenStatementRequest, actor string) (*domain.Statement, error)

	// AddMembers attaches validated requests, all or none.
	AddMembers(ctx context.Context, number string, refs []string, actor string) (*domain.Statement, error)

	// RecomputeTotals derives gross, IPR and net from the members.
	RecomputeTotals(ctx context.Context, number string, actor string) (*domain.Statement, error)

	// SealExpenses freezes membership and mints expense lines. Repeated calls are no-ops.
	SealExpenses(ctx context.Context, number string, actor string) (*domain.Statement, []domain.ExpenseLine, error)
}

// StatementSvcFacade combines all statement-related service interfaces
type StatementSvcFacade interface {
	StatementReaderSvc
	StatementWriterSvc
}

// ChequeSvcFacade manages statement cheques
type ChequeSvcFacade interface {
	// IssueCheque generates the cheque of a statement, cloning its net totals.
	IssueCheque(ctx context.Context, statementNumber string, req dto.IssueChequeRequest, actor string) (*domain.Cheque, error)
	SetChequeStatus(ctx context.Context, number string, req dto.SetChequeStatusRequest, actor string) (*domain.Cheque, error)
	GetCheque(ctx context.Context, number string) (*domain.Cheque, error)
}
