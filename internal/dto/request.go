package dto

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// CreateRequestRequest defines the data needed to submit an expenditure request.
type CreateRequestRequest struct {
	Service          string    `json:"service" binding:"required"`
	NatureCode       string    `json:"natureCode" binding:"required"`
	Description      string    `json:"description" binding:"required"`
	Total            AmountDTO `json:"total"`
	AttachmentHandle *string   `json:"attachmentHandle"` // Optional object store handle
}

// EditRequestRequest defines the fields an author may change on a pending request.
// Use pointers to distinguish between zero-value updates and fields not provided.
type EditRequestRequest struct {
	Service          *string    `json:"service"`
	NatureCode       *string    `json:"natureCode"`
	Description      *string    `json:"description"`
	Total            *AmountDTO `json:"total"`
	AttachmentHandle *string    `json:"attachmentHandle"`
}

// ValidateRequestRequest carries the approver's decision.
type ValidateRequestRequest struct {
	Decision string `json:"decision" binding:"required,oneof=validated_DF validated_DG rejected"`
	Comment  string `json:"comment"` // Required when rejecting
}

// RequestResponse defines the data returned for an expenditure request.
type RequestResponse struct {
	Reference        string     `json:"reference"`
	Service          string     `json:"service"`
	NatureCode       string     `json:"natureCode"`
	Description      string     `json:"description"`
	Total            AmountDTO  `json:"total"`
	Paid             AmountDTO  `json:"paid"`
	Remaining        AmountDTO  `json:"remaining"`
	State            string     `json:"state"`
	Author           string     `json:"author"`
	Approver         *string    `json:"approver,omitempty"`
	RejectComment    *string    `json:"rejectComment,omitempty"`
	AttachmentHandle *string    `json:"attachmentHandle,omitempty"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	ModifiedAt       time.Time  `json:"modifiedAt"`
	ValidatedAt      *time.Time `json:"validatedAt,omitempty"`
}

// ListRequestsParams defines query parameters for listing requests.
type ListRequestsParams struct {
	State     string `form:"state" binding:"omitempty,oneof=pending validated_DF validated_DG rejected paid"`
	Service   string `form:"service"`
	Author    string `form:"author"`
	Currency  string `form:"currency" binding:"omitempty,currency"`
	Limit     int    `form:"limit,default=20"`
	NextToken string `form:"nextToken"`
}

// ListRequestsResponse is a page of requests.
type ListRequestsResponse struct {
	Requests  []RequestResponse `json:"requests"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToRequestResponse converts a domain.Request
func ToRequestResponse(r *domain.Request) RequestResponse {
	return RequestResponse{
		Reference:        r.Reference,
		Service:          r.Service,
		NatureCode:       r.NatureCode,
		Description:      r.Description,
		Total:            ToAmountDTO(r.Total),
		Paid:             ToAmountDTO(r.Paid),
		Remaining:        ToAmountDTO(r.Remaining),
		State:            string(r.State),
		Author:           r.Author,
		Approver:         r.Approver,
		RejectComment:    r.RejectComment,
		AttachmentHandle: r.AttachmentHandle,
		SubmittedAt:      r.SubmittedAt,
		ModifiedAt:       r.ModifiedAt,
		ValidatedAt:      r.ValidatedAt,
	}
}

// ToListRequestResponse converts a slice of domain.Request
func ToListRequestResponse(rs []domain.Request) []RequestResponse {
	res := make([]RequestResponse, len(rs))
	for i := range rs {
		res[i] = ToRequestResponse(&rs[i])
	}
	return res
}
