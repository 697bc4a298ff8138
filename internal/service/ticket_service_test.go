package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *persistence.SQLite {
	t.Helper()
	db, err := persistence.NewSQLite(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func newTicketService(t *testing.T, policy MergePolicy, dispatcher events.Dispatcher) *TicketService {
	t.Helper()
	return NewTicketService(TicketDependencies{
		TicketRepo:  repository.NewSQLiteTicketRepository(newTestDB(t).DB),
		Dispatcher:  dispatcher,
		MergePolicy: policy,
		Clock:       func() time.Time { return fixedNow },
	})
}

func ptr[T any](v T) *T { return &v }

func TestTicketService_CreateDefaults(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, TicketCreateInput{Title: "X"})
	require.NoError(t, err)

	assert.NotZero(t, ticket.ID)
	assert.Equal(t, "X", ticket.Title)
	assert.Equal(t, "", ticket.Description)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "", ticket.Agent)
	assert.Equal(t, fixedNow, ticket.CreatedAt)
}

func TestTicketService_CreateAssignsUniqueIDs(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		ticket, err := svc.Create(ctx, TicketCreateInput{Title: "t"})
		require.NoError(t, err)
		require.False(t, seen[ticket.ID], "duplicate id %d", ticket.ID)
		seen[ticket.ID] = true
	}
}

func TestTicketService_CreateKeepsSuppliedFields(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	created := time.Date(2024, 12, 24, 18, 0, 0, 0, time.FixedZone("CET", 3600))

	ticket, err := svc.Create(context.Background(), TicketCreateInput{
		Title:       "VPN",
		Description: "cannot connect",
		Priority:    domain.TicketPriorityHigh,
		Status:      domain.TicketStatusInProgress,
		Agent:       "alice",
		CreatedAt:   &created,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.True(t, created.Equal(ticket.CreatedAt))
}

func TestTicketService_CreateValidation(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TicketCreateInput
		msg   string
	}{
		{"empty title", TicketCreateInput{Title: ""}, "Title is required"},
		{"blank title", TicketCreateInput{Title: "   "}, "Title is required"},
		{"bad priority", TicketCreateInput{Title: "x", Priority: "Urgent"}, "Priority must be one of Low, Medium, High"},
		{"bad status", TicketCreateInput{Title: "x", Status: "Done"}, "Status must be one of Open, In Progress, Closed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tc.msg, apperrors.ToDomainError(err).Message)
		})
	}
}

func TestTicketService_UpdateStatusKeepsOtherFields(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	original, err := svc.Create(ctx, TicketCreateInput{Title: "Mail", Description: "bounce", Agent: "bob"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, original.ID, domain.TicketPatch{Status: ptr(domain.TicketStatusClosed)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, original.ID)
	require.NoError(t, err)

	want := *original
	want.Status = domain.TicketStatusClosed
	assert.Equal(t, want, *got)
}

func TestTicketService_UpdateEmptyAgent(t *testing.T) {
	tests := []struct {
		policy MergePolicy
		want   string
	}{
		{MergeTruthy, "bob"},
		{MergePresence, ""},
	}
	for _, tc := range tests {
		t.Run(string(tc.policy), func(t *testing.T) {
			svc := newTicketService(t, tc.policy, nil)
			ctx := context.Background()

			ticket, err := svc.Create(ctx, TicketCreateInput{Title: "Disk", Agent: "bob", Description: "full"})
			require.NoError(t, err)

			_, err = svc.Update(ctx, ticket.ID, domain.TicketPatch{Agent: ptr("")})
			require.NoError(t, err)

			got, err := svc.Get(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Agent)
			assert.Equal(t, "full", got.Description)
		})
	}
}

func TestTicketService_UpdateEmptyTitle(t *testing.T) {
	ctx := context.Background()

	presence := newTicketService(t, MergePresence, nil)
	ticket, err := presence.Create(ctx, TicketCreateInput{Title: "Keep"})
	require.NoError(t, err)
	_, err = presence.Update(ctx, ticket.ID, domain.TicketPatch{Title: ptr("")})
	assert.True(t, apperrors.IsValidation(err))

	truthy := newTicketService(t, MergeTruthy, nil)
	ticket, err = truthy.Create(ctx, TicketCreateInput{Title: "Keep"})
	require.NoError(t, err)
	updated, err := truthy.Update(ctx, ticket.ID, domain.TicketPatch{Title: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Keep", updated.Title)
}

func TestTicketService_UpdateRejectsUnknownEnum(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, TicketCreateInput{Title: "x"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ticket.ID, domain.TicketPatch{Status: ptr(domain.TicketStatus("Done"))})
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.Update(ctx, ticket.ID, domain.TicketPatch{Priority: ptr(domain.TicketPriority("Urgent"))})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTicketService_UpdateMissing(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)

	_, err := svc.Update(context.Background(), 999, domain.TicketPatch{Status: ptr(domain.TicketStatusClosed)})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Ticket not found", apperrors.ToDomainError(err).Message)
}

func TestTicketService_DeleteTwice(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, TicketCreateInput{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ticket.ID))

	_, err = svc.Get(ctx, ticket.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.Delete(ctx, ticket.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTicketService_ListDelegatesFilter(t *testing.T) {
	svc := newTicketService(t, MergePresence, nil)
	ctx := context.Background()

	for _, in := range []TicketCreateInput{
		{Title: "a", Agent: "alice"},
		{Title: "b", Agent: "alice", Status: domain.TicketStatusClosed},
		{Title: "c", Agent: "bob"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	tickets, err := svc.List(ctx, TicketListFilter{Agent: "alice", Status: "Open"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "a", tickets[0].Title)

	tickets, err = svc.List(ctx, TicketListFilter{Agent: "all"})
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestTicketService_PublishesEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	record := func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketUpdated, record)
	dispatcher.Subscribe(events.EventTicketDeleted, record)

	svc := newTicketService(t, MergePresence, dispatcher)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, TicketCreateInput{Title: "ev"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, ticket.ID, domain.TicketPatch{Status: ptr(domain.TicketStatusInProgress), Agent: ptr("")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, ticket.ID))

	require.Len(t, got, 3)
	assert.Equal(t, events.EventTicketCreated, got[0].Type)
	assert.NotEmpty(t, got[0].ID)
	updated, ok := got[1].Payload.(events.TicketUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"status"}, updated.Changed)
	assert.Equal(t, domain.TicketStatusOpen, updated.OldStatus)
	assert.Equal(t, events.EventTicketDeleted, got[2].Type)
}

func TestParseMergePolicy(t *testing.T) {
	p, err := ParseMergePolicy("")
	require.NoError(t, err)
	assert.Equal(t, MergeTruthy, p)

	p, err = ParseMergePolicy(" Presence ")
	require.NoError(t, err)
	assert.Equal(t, MergePresence, p)

	_, err = ParseMergePolicy("last-wins")
	require.Error(t, err)
}
