package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter narrows List by exact agent and status. An empty value or
// domain.FilterAll leaves the field unconstrained.
type TicketFilter struct {
	Agent  string
	Status string
}

func (f TicketFilter) agent() (string, bool)  { return constrained(f.Agent) }
func (f TicketFilter) status() (string, bool) { return constrained(f.Status) }

func constrained(v string) (string, bool) {
	if v == "" || v == domain.FilterAll {
		return "", false
	}
	return v, true
}

// TicketRepository encapsulates ticket persistence. Every call touches a
// single row; unknown ids yield ErrNotFound.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
}
