package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
}

func TestNew_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "any", cfg.Orders.PendingResetPolicy)
	assert.Equal(t, "orders.events", cfg.Messaging.Kafka.Topic)
	assert.Equal(t, "skilllink", cfg.Observability.ServiceName)
	// Reader falls back to the writer DSN when unset.
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestNew_MissingJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestNew_PendingResetPolicy(t *testing.T) {
	setRequiredEnv(t)

	t.Run("normalised", func(t *testing.T) {
		t.Setenv("ORDERS_PENDING_RESET_POLICY", " Seller ")
		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, "seller", cfg.Orders.PendingResetPolicy)
	})

	t.Run("rejected", func(t *testing.T) {
		t.Setenv("ORDERS_PENDING_RESET_POLICY", "admin")
		_, err := New()
		require.Error(t, err)
	})
}

func TestNew_InvalidBcryptCost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_BCRYPT_COST", "99")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_BCRYPT_COST")
}

func TestNew_UnsupportedStorageDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "s3")

	_, err := New()
	require.Error(t, err)
}

func TestNew_DisabledSubsystemsForceNoopDrivers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
}
