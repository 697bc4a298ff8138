package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("TICKET_MERGE_POLICY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:10000", cfg.App.Addr())
	assert.Equal(t, "truthy", cfg.Ticket.MergePolicy)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 200, cfg.Client.ActivityLimit)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidStateBackend(t *testing.T) {
	t.Setenv("CLIENT_STATE_BACKEND", "s3")

	_, err := Load()
	require.ErrorContains(t, err, "CLIENT_STATE_BACKEND")
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("HELPDESK_TEST_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("HELPDESK_TEST_INT", 7))
	t.Setenv("HELPDESK_TEST_INT", "12")
	assert.Equal(t, 12, getEnvAsInt("HELPDESK_TEST_INT", 7))
	assert.Equal(t, time.Duration(0), seconds(0))
}
