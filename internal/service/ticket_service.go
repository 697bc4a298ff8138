package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// MergePolicy decides which patch fields overwrite the stored ticket.
type MergePolicy string

const (
	// MergeTruthy only overwrites with non-empty values, so a field can never
	// be cleared through an update. This is the default.
	MergeTruthy MergePolicy = "truthy"
	// MergePresence overwrites every field the caller supplied, including
	// empty strings.
	MergePresence MergePolicy = "presence"
)

// ParseMergePolicy validates a configured policy name.
func ParseMergePolicy(name string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", MergeTruthy:
		return MergeTruthy, nil
	case MergePresence:
		return MergePresence, nil
	}
	return "", fmt.Errorf("unknown merge policy %q", name)
}

const (
	msgTitleRequired  = "Title is required"
	msgTicketResource = "Ticket"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	merge      MergePolicy
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	MergePolicy MergePolicy
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TicketCreateInput describes ticket creation payload. Zero values receive
// defaults.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	Agent       string
	CreatedAt   *time.Time
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Agent  string
	Status string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		merge:      deps.MergePolicy,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.merge == "" {
		svc.merge = MergeTruthy
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Create validates input, applies defaults and persists a new ticket.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError(msgTitleRequired)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		Agent:       input.Agent,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if err := validateEnums(ticket.Priority, ticket.Status); err != nil {
		return nil, err
	}
	if input.CreatedAt != nil && !input.CreatedAt.IsZero() {
		ticket.CreatedAt = input.CreatedAt.UTC()
	} else {
		ticket.CreatedAt = s.now().UTC()
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create ticket: %w", err))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Agent:    ticket.Agent,
		},
	})
	return ticket, nil
}

// Get returns a single ticket.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError("get ticket", err)
	}
	return ticket, nil
}

// List returns tickets matching the agent/status filter.
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{Agent: filter.Agent, Status: filter.Status})
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list tickets: %w", err))
	}
	return tickets, nil
}

// Update merges patch into the stored ticket according to the merge policy.
// id and created_at never change.
func (s *TicketService) Update(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError("update ticket", err)
	}
	oldStatus := ticket.Status

	changed, err := s.applyPatch(ticket, patch)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapStoreError("update ticket", err)
	}

	if len(changed) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			Payload: events.TicketUpdatedPayload{
				Changed:   changed,
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// Delete hard-deletes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return s.mapStoreError("delete ticket", err)
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return s.mapStoreError("delete ticket", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

func (s *TicketService) applyPatch(ticket *domain.Ticket, patch domain.TicketPatch) ([]string, error) {
	var changed []string
	set := func(field string, dst *string, src *string) {
		if !s.overwrites(src) || *dst == *src {
			return
		}
		*dst = *src
		changed = append(changed, field)
	}

	if s.overwrites(patch.Title) && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.NewValidationError(msgTitleRequired)
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		set("title", &ticket.Title, &trimmed)
	}
	set("description", &ticket.Description, patch.Description)
	set("agent", &ticket.Agent, patch.Agent)

	if patch.Priority != nil && s.overwrites((*string)(patch.Priority)) {
		if !patch.Priority.Valid() {
			return nil, invalidPriority()
		}
		set("priority", (*string)(&ticket.Priority), (*string)(patch.Priority))
	}
	if patch.Status != nil && s.overwrites((*string)(patch.Status)) {
		if !patch.Status.Valid() {
			return nil, invalidStatus()
		}
		set("status", (*string)(&ticket.Status), (*string)(patch.Status))
	}
	return changed, nil
}

// overwrites reports whether a supplied value replaces the stored one.
func (s *TicketService) overwrites(v *string) bool {
	if v == nil {
		return false
	}
	if s.merge == MergeTruthy {
		return *v != ""
	}
	return true
}

func (s *TicketService) mapStoreError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(msgTicketResource)
	}
	return apperrors.NewInternalError(fmt.Errorf("%s: %w", op, err))
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func validateEnums(priority domain.TicketPriority, status domain.TicketStatus) error {
	if !priority.Valid() {
		return invalidPriority()
	}
	if !status.Valid() {
		return invalidStatus()
	}
	return nil
}

func invalidPriority() error {
	return apperrors.NewValidationError("Priority must be one of Low, Medium, High")
}

func invalidStatus() error {
	return apperrors.NewValidationError("Status must be one of Open, In Progress, Closed")
}
