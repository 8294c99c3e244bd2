package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// RequestFilter narrows ListRequests.
type RequestFilter struct {
	State    domain.RequestState
	Service  string
	Author   string
	Currency domain.Currency
	AfterRef string // Keyset cursor on reference
	Limit    int
}

// RequestReader defines read operations for expenditure requests
type RequestReader interface {
	FindRequestByRef(ctx context.Context, ref string) (*domain.Request, error)

	// FindRequestsByRefs returns the requests that exist, ordered by reference.
	FindRequestsByRefs(ctx context.Context, refs []string) ([]domain.Request, error)

	ListRequests(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
}

// RequestWriter defines write operations for expenditure requests
type RequestWriter interface {
	// SaveRequest inserts a request. Returns apperrors.ErrDuplicate when the reference is taken.
	SaveRequest(ctx context.Context, request domain.Request) error
	UpdateRequest(ctx context.Context, request domain.Request) error
}

// RequestTransactionSupport defines locking reads for requests
type RequestTransactionSupport interface {
	FindRequestByRefForUpdate(ctx context.Context, ref string) (*domain.Request, error)

	// FindRequestsByRefsForUpdate locks rows in reference order so concurrent callers cannot deadlock.
	FindRequestsByRefsForUpdate(ctx context.Context, refs []string) ([]domain.Request, error)
}

// RequestRepositoryFacade combines all request repository interfaces
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
	RequestTransactionSupport
}
