package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// newTestPostgres connects to POSTGRES_TEST_DSN and truncates the tables.
func newTestPostgres(t *testing.T) *persistence.Postgres {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, RunMigrations: true}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	_, err = pg.Pool.Exec(ctx, `TRUNCATE tickets, users RESTART IDENTITY`)
	require.NoError(t, err)
	return pg
}

func TestPostgresTicketRepository(t *testing.T) {
	pg := newTestPostgres(t)
	repo := NewPostgresTicketRepository(pg.Pool)
	ctx := context.Background()

	ticket := newTicket("Postgres", "alice", domain.TicketStatusOpen)
	require.NoError(t, repo.Create(ctx, ticket))

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Title, got.Title)
	assert.True(t, ticket.CreatedAt.Equal(got.CreatedAt))

	list, err := repo.List(ctx, TicketFilter{Agent: "alice", Status: "all"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got.Status = domain.TicketStatusInProgress
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.Delete(ctx, got.ID))
	require.ErrorIs(t, repo.Delete(ctx, got.ID), ErrNotFound)
}

func TestPostgresUserRepository(t *testing.T) {
	pg := newTestPostgres(t)
	repo := NewPostgresUserRepository(pg.Pool)
	ctx := context.Background()

	email := fmt.Sprintf("u%d@example.com", time.Now().UnixNano())
	require.NoError(t, repo.Create(ctx, &domain.User{Name: "U", Email: email, PasswordHash: "h", Role: "user"}))
	require.ErrorIs(t, repo.Create(ctx, &domain.User{Name: "U", Email: email, PasswordHash: "h", Role: "user"}), ErrDuplicate)

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}
