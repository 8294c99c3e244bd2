package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

func (s *store) FindRequestByRef(ctx context.Context, ref string) (*domain.Request, error) {
	var (
		r  domain.Request
		ok bool
	)
	s.read(func(st *state) { r, ok = st.requests[ref] })
	if !ok {
		return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, ref)
	}
	return &r, nil
}

func (s *store) FindRequestByRefForUpdate(ctx context.Context, ref string) (*domain.Request, error) {
	return s.FindRequestByRef(ctx, ref)
}

func (s *store) FindRequestsByRefs(ctx context.Context, refs []string) ([]domain.Request, error) {
	sorted := slices.Clone(refs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]domain.Request, 0, len(sorted))
	s.read(func(st *state) {
		for _, ref := range sorted {
			if r, ok := st.requests[ref]; ok {
				out = append(out, r)
			}
		}
	})
	return out, nil
}

func (s *store) FindRequestsByRefsForUpdate(ctx context.Context, refs []string) ([]domain.Request, error) {
	return s.FindRequestsByRefs(ctx, refs)
}

func (s *store) ListRequests(ctx context.Context, filter portsrepo.RequestFilter) ([]domain.Request, error) {
	var out []domain.Request
	s.read(func(st *state) {
		out = page(st.requests, filter.AfterRef, filter.Limit, func(r domain.Request) bool {
			if filter.State != "" && r.State != filter.State {
				return false
			}
			if filter.Service != "" && r.Service != filter.Service {
				return false
			}
			if filter.Author != "" && r.Author != filter.Author {
				return false
			}
			return filter.Currency == "" || r.Total.Currency == filter.Currency
		})
	})
	return out, nil
}

func (s *store) SaveRequest(ctx context.Context, request domain.Request) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.requests[request.Reference]; exists {
			err = fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, request.Reference)
			return
		}
		st.requests[request.Reference] = request
	})
	return err
}

func (s *store) UpdateRequest(ctx context.Context, request domain.Request) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.requests[request.Reference]; !exists {
			err = fmt.Errorf("%w: request %s", apperrors.ErrNotFound, request.Reference)
			return
		}
		st.requests[request.Reference] = request
	})
	return err
}
