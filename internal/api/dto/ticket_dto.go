package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Priority    domain.TicketPriority `json:"priority,omitempty"`
	Status      domain.TicketStatus   `json:"status,omitempty"`
	Agent       string                `json:"agent,omitempty"`
	CreatedAt   *time.Time            `json:"created_at,omitempty"`
}

// UpdateTicketRequest payload for PUT /tickets/:id. Absent keys stay nil.
type UpdateTicketRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
	Status      *domain.TicketStatus   `json:"status,omitempty"`
	Agent       *string                `json:"agent,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateTicketRequest) Patch() domain.TicketPatch {
	return domain.TicketPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Agent:       r.Agent,
	}
}

// UpdateRequestFromPatch is the inverse of Patch.
func UpdateRequestFromPatch(p domain.TicketPatch) UpdateTicketRequest {
	return UpdateTicketRequest{
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      p.Status,
		Agent:       p.Agent,
	}
}

// DeleteTicketResponse body of DELETE /tickets/:id.
type DeleteTicketResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AIRequest payload for POST /api/ai-response.
type AIRequest struct {
	Prompt string `json:"prompt"`
}

// AIResponse body of POST /api/ai-response.
type AIResponse struct {
	Response string `json:"response"`
}
