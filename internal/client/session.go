package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

// Options configures a Session.
type Options struct {
	API   API
	Store StateStore
	// ActivityLimit caps the activity log; <= 0 means DefaultActivityLimit.
	ActivityLimit int
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// Session owns the cached client state. Every successful mutation is written
// back to the store before the method returns; when that write fails the
// in-memory state is restored to what it was before the call. A Session is not safe for
// concurrent use.
type Session struct {
	api    API
	store  StateStore
	limit  int
	now    func() time.Time
	logger *zap.Logger
	state  State
}

// NewSession returns a session holding DefaultState. Call Load to restore
// what a previous run saved.
func NewSession(opts Options) *Session {
	s := &Session{
		api:    opts.API,
		store:  opts.Store,
		limit:  opts.ActivityLimit,
		now:    opts.Clock,
		logger: opts.Logger,
		state:  DefaultState(),
	}
	if s.limit <= 0 {
		s.limit = DefaultActivityLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Load restores the saved state, or resets to defaults when nothing is saved.
// The legacy state key is removed either way.
func (s *Session) Load(ctx context.Context) error {
	if err := s.store.Delete(ctx, LegacyStateKey); err != nil {
		s.logger.Warn("remove legacy state", zap.Error(err))
	}

	data, err := s.store.Get(ctx, StateKey)
	if errors.Is(err, ErrNoState) {
		s.state = DefaultState()
		s.syncToken()
		return nil
	}
	if err != nil {
		return err
	}

	state := DefaultState()
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	state.normalize(s.limit)
	s.state = state
	s.syncToken()
	return nil
}

// Save overwrites the stored blob with the current state.
func (s *Session) Save(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.store.Set(ctx, StateKey, data)
}

// commit saves the state, restoring prev when the write fails.
func (s *Session) commit(ctx context.Context, prev State) error {
	if err := s.Save(ctx); err != nil {
		s.state = prev
		s.syncToken()
		return err
	}
	return nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state.Clone()
}

// RecordActivity prepends an entry to the activity log and saves.
func (s *Session) RecordActivity(ctx context.Context, msg string) error {
	prev := s.state.Clone()
	s.addActivity(msg)
	return s.commit(ctx, prev)
}

func (s *Session) addActivity(msg string) {
	entry := Activity{ID: uuid.NewString(), Msg: msg, Time: s.now().UTC()}
	log := make([]Activity, 0, min(len(s.state.Activity)+1, s.limit))
	log = append(log, entry)
	for _, a := range s.state.Activity {
		if len(log) == s.limit {
			break
		}
		log = append(log, a)
	}
	s.state.Activity = log
}

// Login authenticates against the server and remembers the user and token.
func (s *Session) Login(ctx context.Context, email, password string) (*UserSession, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user := &UserSession{Profile: resp.User, Token: resp.Token, ExpiresAt: resp.ExpiresAt}
	prev := s.state.Clone()
	s.state.User = user
	s.syncToken()
	s.addActivity(fmt.Sprintf("Logged in as %s", user.Name))
	if err := s.commit(ctx, prev); err != nil {
		return nil, err
	}
	u := *user
	return &u, nil
}

// Register creates an account. Nothing is cached.
func (s *Session) Register(ctx context.Context, req dto.UserRegisterRequest) error {
	return s.api.Register(ctx, req)
}

// Logout forgets the user and token.
func (s *Session) Logout(ctx context.Context) error {
	if s.state.User == nil {
		return nil
	}
	prev := s.state.Clone()
	s.state.User = nil
	s.syncToken()
	s.addActivity("Logged out")
	return s.commit(ctx, prev)
}

// RefreshTickets replaces the cached tickets with the server's list,
// narrowed by the agent and status filters.
func (s *Session) RefreshTickets(ctx context.Context) error {
	tickets, err := s.api.ListTickets(ctx, s.state.Filters.Agent, s.state.Filters.Status)
	if err != nil {
		return err
	}
	prev := s.state.Clone()
	s.state.Tickets = tickets
	return s.commit(ctx, prev)
}

// RefreshAgents replaces the cached agents with the server's user list.
func (s *Session) RefreshAgents(ctx context.Context) error {
	agents, err := s.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	prev := s.state.Clone()
	s.state.Agents = agents
	return s.commit(ctx, prev)
}

// TicketInput is what the caller provides for a new ticket.
type TicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
	Agent       string
}

// CreateTicket creates the ticket on the server and puts the stored record at
// the front of the cache.
func (s *Session) CreateTicket(ctx context.Context, in TicketInput) (*domain.Ticket, error) {
	createdAt := s.now().UTC()
	ticket, err := s.api.CreateTicket(ctx, dto.CreateTicketRequest{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Agent:       in.Agent,
		CreatedAt:   &createdAt,
	})
	if err != nil {
		return nil, err
	}
	prev := s.state.Clone()
	s.state.Tickets = slices.Insert(s.state.Tickets, 0, *ticket)
	s.addActivity(fmt.Sprintf("Created ticket #%d %q", ticket.ID, ticket.Title))
	if err := s.commit(ctx, prev); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTicket applies patch on the server and swaps in the server's answer.
// A ticket missing from the cache is added at the front.
func (s *Session) UpdateTicket(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.api.UpdateTicket(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	prev := s.state.Clone()
	if i := s.indexOf(id); i >= 0 {
		s.state.Tickets[i] = *ticket
	} else {
		s.state.Tickets = slices.Insert(s.state.Tickets, 0, *ticket)
	}
	s.addActivity(fmt.Sprintf("Updated ticket #%d: %s", id, describePatch(patch)))
	if err := s.commit(ctx, prev); err != nil {
		return nil, err
	}
	return ticket, nil
}

// DeleteTicket deletes on the server and drops the ticket from the cache.
func (s *Session) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.api.DeleteTicket(ctx, id); err != nil {
		return err
	}
	prev := s.state.Clone()
	if i := s.indexOf(id); i >= 0 {
		s.state.Tickets = slices.Delete(s.state.Tickets, i, i+1)
	}
	s.addActivity(fmt.Sprintf("Deleted ticket #%d", id))
	return s.commit(ctx, prev)
}

// SetFilters replaces the display filters.
func (s *Session) SetFilters(ctx context.Context, f query.Filters) error {
	prev := s.state.Clone()
	s.state.Filters = f
	return s.commit(ctx, prev)
}

// SetSort replaces the display ordering.
func (s *Session) SetSort(ctx context.Context, sort query.Sort) error {
	if !query.ValidKey(sort.Key) {
		return fmt.Errorf("unknown sort key %q", sort.Key)
	}
	if sort.Order != query.OrderAsc {
		sort.Order = query.OrderDesc
	}
	prev := s.state.Clone()
	s.state.Sort = sort
	return s.commit(ctx, prev)
}

// Visible is the cached ticket list after filters and sort.
func (s *Session) Visible() []domain.Ticket {
	return query.Project(s.state.Tickets, s.state.Filters, s.state.Sort)
}

// Stats summarizes the visible tickets.
func (s *Session) Stats() query.Stats {
	return query.Summarize(s.Visible())
}

// Ask sends prompt to the text generation proxy and logs the exchange.
func (s *Session) Ask(ctx context.Context, prompt string) (string, error) {
	answer, err := s.api.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	prev := s.state.Clone()
	s.addActivity(fmt.Sprintf("Asked AI: %s", truncate(prompt, 60)))
	if err := s.commit(ctx, prev); err != nil {
		return "", err
	}
	return answer, nil
}

func (s *Session) indexOf(id int64) int {
	return slices.IndexFunc(s.state.Tickets, func(t domain.Ticket) bool { return t.ID == id })
}

func (s *Session) syncToken() {
	if s.api == nil {
		return
	}
	if s.state.User != nil {
		s.api.SetToken(s.state.User.Token)
		return
	}
	s.api.SetToken("")
}

func describePatch(p domain.TicketPatch) string {
	var parts []string
	if p.Title != nil {
		parts = append(parts, fmt.Sprintf("title=%q", *p.Title))
	}
	if p.Description != nil {
		parts = append(parts, "description")
	}
	if p.Priority != nil {
		parts = append(parts, "priority="+string(*p.Priority))
	}
	if p.Status != nil {
		parts = append(parts, "status="+string(*p.Status))
	}
	if p.Agent != nil {
		parts = append(parts, fmt.Sprintf("agent=%q", *p.Agent))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
