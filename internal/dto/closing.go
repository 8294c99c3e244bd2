package dto

import (
	"encoding/json"
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// ClosePeriodRequest carries the optional closing observation.
type ClosePeriodRequest struct {
	Observation *string `json:"observation"`
}

// ClosingResponse defines the data returned for a monthly closing.
type ClosingResponse struct {
	Period      string            `json:"period"`
	Status      string            `json:"status"`
	Opening     CurrencyTotalsDTO `json:"opening"`
	Receipts    CurrencyTotalsDTO `json:"receipts"`
	Expenses    CurrencyTotalsDTO `json:"expenses"`
	Net         CurrencyTotalsDTO `json:"net"`
	ComputedAt  *time.Time        `json:"computedAt,omitempty"`
	ClosedBy    *string           `json:"closedBy,omitempty"`
	ClosedAt    *time.Time        `json:"closedAt,omitempty"`
	Observation *string           `json:"observation,omitempty"`
}

// ListClosingsParams defines query parameters for listing closings.
type ListClosingsParams struct {
	Status    string `form:"status" binding:"omitempty,oneof=open closed"`
	Limit     int    `form:"limit,default=24"`
	NextToken string `form:"nextToken"`
}

// ListClosingsResponse is a page of closings.
type ListClosingsResponse struct {
	Closings  []ClosingResponse `json:"closings"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToClosingResponse converts a domain.Closing
func ToClosingResponse(c *domain.Closing) ClosingResponse {
	return ClosingResponse{
		Period:      c.Period.String(),
		Status:      string(c.Status),
		Opening:     ToCurrencyTotalsDTO(c.Opening),
		Receipts:    ToCurrencyTotalsDTO(c.Receipts),
		Expenses:    ToCurrencyTotalsDTO(c.Expenses),
		Net:         ToCurrencyTotalsDTO(c.Net),
		ComputedAt:  c.ComputedAt,
		ClosedBy:    c.ClosedBy,
		ClosedAt:    c.ClosedAt,
		Observation: c.Observation,
	}
}

// ToListClosingResponse converts a slice of domain.Closing
func ToListClosingResponse(cs []domain.Closing) []ClosingResponse {
	res := make([]ClosingResponse, len(cs))
	for i := range cs {
		res[i] = ToClosingResponse(&cs[i])
	}
	return res
}

// JournalEntryResponse defines the data returned for a command journal entry.
type JournalEntryResponse struct {
	EntryID    string          `json:"entryID"`
	Seq        int64           `json:"seq"`
	Command    string          `json:"command"`
	Actor      string          `json:"actor"`
	Subject    string          `json:"subject"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// ListJournalParams defines query parameters for reading the command journal.
type ListJournalParams struct {
	Limit     int    `form:"limit,default=50"`
	NextToken string `form:"nextToken"`
}

// ListJournalResponse is a page of journal entries.
type ListJournalResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponses converts journal entries
func ToJournalEntryResponses(es []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(es))
	for i, e := range es {
		res[i] = JournalEntryResponse{
			EntryID:    e.EntryID,
			Seq:        e.Seq,
			Command:    e.Command,
			Actor:      e.Actor,
			Subject:    e.Subject,
			Payload:    e.Payload,
			RecordedAt: e.RecordedAt,
		}
	}
	return res
}
