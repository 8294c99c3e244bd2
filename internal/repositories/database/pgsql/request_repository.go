package pgsql

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `reference, service, nature_code, description, currency_code, total, paid, remaining,
	state, decision, author, approver, reject_comment, attachment_handle, submitted_at, modified_at, validated_at`

type PgxRequestRepository struct {
	db querier
}

func newPgxRequestRepository(db querier) *PgxRequestRepository {
	return &PgxRequestRepository{db: db}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

func toModelRequest(d domain.Request) models.Request {
	return models.Request{
		Reference:        d.Reference,
		Service:          d.Service,
		NatureCode:       d.NatureCode,
		Description:      d.Description,
		CurrencyCode:     string(d.Total.Currency),
		Total:            d.Total.Value,
		Paid:             d.Paid.Value,
		Remaining:        d.Remaining.Value,
		State:            string(d.State),
		Decision:         string(d.Decision),
		Author:           d.Author,
		Approver:         d.Approver,
		RejectComment:    d.RejectComment,
		AttachmentHandle: d.AttachmentHandle,
		SubmittedAt:      d.SubmittedAt,
		ModifiedAt:       d.ModifiedAt,
		ValidatedAt:      d.ValidatedAt,
	}
}

func toDomainRequest(m models.Request) domain.Request {
	currency := domain.Currency(m.CurrencyCode)
	return domain.Request{
		Reference:        m.Reference,
		Service:          m.Service,
		NatureCode:       m.NatureCode,
		Description:      m.Description,
		Total:            domain.Amount{Currency: currency, Value: m.Total},
		Paid:             domain.Amount{Currency: currency, Value: m.Paid},
		Remaining:        domain.Amount{Currency: currency, Value: m.Remaining},
		State:            domain.RequestState(m.State),
		Decision:         domain.RequestState(m.Decision),
		Author:           m.Author,
		Approver:         m.Approver,
		RejectComment:    m.RejectComment,
		AttachmentHandle: m.AttachmentHandle,
		SubmittedAt:      m.SubmittedAt,
		ModifiedAt:       m.ModifiedAt,
		ValidatedAt:      m.ValidatedAt,
	}
}

// SaveRequest inserts a new request.
func (r *PgxRequestRepository) SaveRequest(ctx context.Context, request domain.Request) error {
	m := toModelRequest(request)
	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db.Exec(ctx, query,
		m.Reference, m.Service, m.NatureCode, m.Description, m.CurrencyCode, m.Total, m.Paid, m.Remaining,
		m.State, m.Decision, m.Author, m.Approver, m.RejectComment, m.AttachmentHandle,
		m.SubmittedAt, m.ModifiedAt, m.ValidatedAt,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to save request %s: %w", m.Reference, err)
	}
	return nil
}

// UpdateRequest rewrites every mutable column of a request.
func (r *PgxRequestRepository) UpdateRequest(ctx context.Context, request domain.Request) error {
	m := toModelRequest(request)
	query := `
		UPDATE requests
		SET service = $1, nature_code = $2, description = $3, currency_code = $4, total = $5, paid = $6,
			remaining = $7, state = $8, decision = $9, approver = $10, reject_comment = $11,
			attachment_handle = $12, modified_at = $13, validated_at = $14
		WHERE reference = $15;
	`
	tag, err := r.db.Exec(ctx, query,
		m.Service, m.NatureCode, m.Description, m.CurrencyCode, m.Total, m.Paid,
		m.Remaining, m.State, m.Decision, m.Approver, m.RejectComment,
		m.AttachmentHandle, m.ModifiedAt, m.ValidatedAt, m.Reference,
	)
	if err != nil {
		return fmt.Errorf("failed to update request %s: %w", m.Reference, err)
	}
	return expectOne(tag, "request", m.Reference)
}

func (r *PgxRequestRepository) FindRequestByRef(ctx context.Context, ref string) (*domain.Request, error) {
	return r.findRequest(ctx, `SELECT `+requestColumns+` FROM requests WHERE reference = $1;`, ref)
}

func (r *PgxRequestRepository) FindRequestByRefForUpdate(ctx context.Context, ref string) (*domain.Request, error) {
	return r.findRequest(ctx, `SELECT `+requestColumns+` FROM requests WHERE reference = $1 FOR UPDATE;`, ref)
}

func (r *PgxRequestRepository) findRequest(ctx context.Context, query, ref string) (*domain.Request, error) {
	rows, err := r.db.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query request %s: %w", ref, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Request])
	if err != nil {
		return nil, notFoundOr(err, "request", ref)
	}
	req := toDomainRequest(m)
	return &req, nil
}

func (r *PgxRequestRepository) FindRequestsByRefs(ctx context.Context, refs []string) ([]domain.Request, error) {
	return r.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests WHERE reference = ANY($1) ORDER BY reference;`, sortedRefs(refs))
}

// FindRequestsByRefsForUpdate locks in reference order.
func (r *PgxRequestRepository) FindRequestsByRefsForUpdate(ctx context.Context, refs []string) ([]domain.Request, error) {
	return r.queryRequests(ctx, `SELECT `+requestColumns+` FROM requests WHERE reference = ANY($1) ORDER BY reference FOR UPDATE;`, sortedRefs(refs))
}

func (r *PgxRequestRepository) ListRequests(ctx context.Context, filter portsrepo.RequestFilter) ([]domain.Request, error) {
	var w where
	if filter.State != "" {
		w.add("state = ?", string(filter.State))
	}
	if filter.Service != "" {
		w.add("service = ?", filter.Service)
	}
	if filter.Author != "" {
		w.add("author = ?", filter.Author)
	}
	if filter.Currency != "" {
		w.add("currency_code = ?", string(filter.Currency))
	}
	if filter.AfterRef != "" {
		w.add("reference > ?", filter.AfterRef)
	}
	query := `SELECT ` + requestColumns + ` FROM requests` + w.clause() + ` ORDER BY reference` + w.limit(filter.Limit)
	return r.queryRequests(ctx, query, w.args...)
}

func (r *PgxRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	modelRequests, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Request])
	if err != nil {
		return nil, fmt.Errorf("failed to scan requests: %w", err)
	}
	requests := make([]domain.Request, 0, len(modelRequests))
	for _, m := range modelRequests {
		requests = append(requests, toDomainRequest(m))
	}
	return requests, nil
}

func sortedRefs(refs []string) []string {
	out := slices.Clone(refs)
	slices.Sort(out)
	return slices.Compact(out)
}
