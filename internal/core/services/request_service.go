package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/mapping"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

type requestService struct {
	BaseService
	refs *ReferenceGenerator
}

// NewRequestService creates the expenditure request service.
func NewRequestService(deps Dependencies, refs *ReferenceGenerator) portssvc.RequestSvcFacade {
	return &requestService{BaseService: deps.base(), refs: refs}
}

func (s *requestService) CreateRequest(ctx context.Context, req dto.CreateRequestRequest, actor string) (*domain.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	total, err := mapping.ToDomainAmount(req.Total)
	if err != nil {
		return nil, err
	}

	var created *domain.Request
	err = s.execute(ctx, domain.CmdCreateRequest, func(ctx context.Context, tx portsrepo.Store) error {
		ref, err := s.refs.Next(ctx, tx, domain.ScopeOf(domain.FamilyRequest))
		if err != nil {
			return err
		}
		r, err := domain.NewRequest(ref, actor, req.Service, req.NatureCode, req.Description, total, req.AttachmentHandle, s.now())
		if err != nil {
			return err
		}
		if err := tx.Requests().SaveRequest(ctx, *r); err != nil {
			return err
		}
		created = r
		return s.journal(ctx, tx, domain.CmdCreateRequest, actor, ref, req)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Request created",
		slog.String("reference", created.Reference),
		slog.String("total", created.Total.String()))
	return created, nil
}

func (s *requestService) EditRequest(ctx context.Context, ref string, req dto.EditRequestRequest, actor string) (*domain.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	edit, err := mapping.ToDomainRequestEdit(req)
	if err != nil {
		return nil, err
	}

	var updated *domain.Request
	err = s.execute(ctx, domain.CmdEditRequest, func(ctx context.Context, tx portsrepo.Store) error {
		r, err := tx.Requests().FindRequestByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if err := r.Edit(actor, edit, s.now()); err != nil {
			return err
		}
		if err := s.checkRequest(ctx, r); err != nil {
			return err
		}
		if err := tx.Requests().UpdateRequest(ctx, *r); err != nil {
			return err
		}
		updated = r
		return s.journal(ctx, tx, domain.CmdEditRequest, actor, ref, req)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Request edited", slog.String("reference", ref))
	return updated, nil
}

func (s *requestService) ValidateRequest(ctx context.Context, ref string, req dto.ValidateRequestRequest, actor string) (*domain.Request, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var validated *domain.Request
	err := s.execute(ctx, domain.CmdValidateRequest, func(ctx context.Context, tx portsrepo.Store) error {
		r, err := tx.Requests().FindRequestByRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if err := r.Validate(actor, domain.RequestState(req.Decision), req.Comment, s.now()); err != nil {
			return err
		}
		if err := tx.Requests().UpdateRequest(ctx, *r); err != nil {
			return err
		}
		validated = r
		return s.journal(ctx, tx, domain.CmdValidateRequest, actor, ref, req)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Request validated",
		slog.String("reference", ref),
		slog.String("decision", req.Decision))
	return validated, nil
}

func (s *requestService) GetRequest(ctx context.Context, ref string) (*domain.Request, error) {
	r, err := s.TxManager.Reader().Requests().FindRequestByRef(ctx, ref)
	if err != nil {
		if !isNotFound(err) {
			s.LogError(ctx, err, "Failed to find request", slog.String("reference", ref))
		}
		return nil, err
	}
	return r, nil
}

func (s *requestService) ListRequests(ctx context.Context, params dto.ListRequestsParams) (*dto.ListRequestsResponse, error) {
	filter, err := mapping.ToRequestFilter(params)
	if err != nil {
		return nil, err
	}
	requests, err := s.TxManager.Reader().Requests().ListRequests(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list requests")
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	page, next := pagination.Trim(requests, dto.ClampLimit(params.Limit), func(r domain.Request) string { return r.Reference })
	return &dto.ListRequestsResponse{Requests: dto.ToListRequestResponse(page), NextToken: next}, nil
}

// checkRequest runs the request invariants and reports a failure as an integrity diagnostic.
func (s *BaseService) checkRequest(ctx context.Context, r *domain.Request) error {
	if err := r.CheckInvariants(); err != nil {
		return s.integrityFailure(ctx, "request_amounts", err)
	}
	return nil
}
