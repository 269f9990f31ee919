package models

import (
	"time"

	"github.com/aleister1102/feedtap/internal/endpoint"
)

// InteractionConfirmation is the server's authoritative answer to a user
// action. Counter pointers are nil when the server did not return them.
type InteractionConfirmation struct {
	NoteID       string            `json:"note_id"`
	CommentID    string            `json:"comment_id,omitempty"`
	Action       endpoint.Endpoint `json:"action"`
	Success      bool              `json:"success"`
	LikeCount    *int64            `json:"like_count,omitempty"`
	CollectCount *int64            `json:"collect_count,omitempty"`
	CommentCount *int64            `json:"comment_count,omitempty"`
	ConfirmedAt  time.Time         `json:"confirmed_at"`
}

// DecodedResult bundles the capture metadata with what a decoder extracted.
type DecodedResult struct {
	URL          string
	Endpoint     endpoint.Endpoint
	Notes        []Note
	Comments     []Comment
	Interactions []InteractionConfirmation
}

// EntityCount is the number of typed entities the decoder produced.
func (r *DecodedResult) EntityCount() int {
	if r == nil {
		return 0
	}
	return len(r.Notes) + len(r.Comments) + len(r.Interactions)
}

// CapturedResponse is one accepted response. It is created once and never
// mutated; Body is the original text, never redacted.
type CapturedResponse struct {
	CapturedAt   time.Time                 `json:"captured_at"`
	URL          string                    `json:"url"`
	Method       string                    `json:"method"`
	StatusCode   int                       `json:"status_code"`
	Body         string                    `json:"body"`
	Endpoint     endpoint.Endpoint         `json:"endpoint"`
	EntityCount  int                       `json:"entity_count"`
	Notes        []Note                    `json:"notes,omitempty"`
	Comments     []Comment                 `json:"comments,omitempty"`
	Interactions []InteractionConfirmation `json:"interactions,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (c CapturedResponse) Clone() CapturedResponse {
	out := c
	if c.Notes != nil {
		out.Notes = make([]Note, len(c.Notes))
		for i := range c.Notes {
			out.Notes[i] = c.Notes[i].Clone()
		}
	}
	if c.Comments != nil {
		out.Comments = append([]Comment(nil), c.Comments...)
	}
	if c.Interactions != nil {
		out.Interactions = append([]InteractionConfirmation(nil), c.Interactions...)
	}
	return out
}

// DedupStats are the running counters of the deduplication store.
type DedupStats struct {
	TotalSeen  int `json:"total_seen"`
	Duplicates int `json:"duplicates"`
	Unique     int `json:"unique"`
}

// DuplicateRate is Duplicates/TotalSeen, or zero before anything was seen.
func (s DedupStats) DuplicateRate() float64 {
	if s.TotalSeen == 0 {
		return 0
	}
	return float64(s.Duplicates) / float64(s.TotalSeen)
}
