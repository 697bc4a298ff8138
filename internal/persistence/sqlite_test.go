package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSQLite_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, table := range []string{"users", "tickets"} {
		var count int
		err := db.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count, "table %s not found", table)
	}
	require.NoError(t, db.Ping(ctx))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	exec := func(ctx context.Context, script string) error {
		_, err := db.DB.ExecContext(ctx, script)
		return err
	}
	require.NoError(t, RunMigrations(ctx, "sqlite", exec, zap.NewNop()))
}

func TestRunMigrations_UnknownDialect(t *testing.T) {
	exec := func(context.Context, string) error { return nil }
	require.Error(t, RunMigrations(context.Background(), "oracle", exec, zap.NewNop()))
}

func TestRedisDisabledWithoutAddr(t *testing.T) {
	var r *Redis
	require.Error(t, r.Ping(context.Background()))
}
