package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilllink/skilllink/internal/config"
)

func managerConfig(secret string, ttl time.Duration) config.Config {
	return config.Config{Auth: config.Auth{JWTSecret: secret, TokenTTL: ttl}}
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(managerConfig("", time.Hour))
	require.Error(t, err)
}

func TestNewManager_DefaultsTTL(t *testing.T) {
	m, err := NewManager(managerConfig("secret", 0))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, m.ttl)
}

func TestManager_IssueAndParse(t *testing.T) {
	m, err := NewManager(managerConfig("secret", time.Hour))
	require.NoError(t, err)

	signed, err := m.Issue(42, "seller")
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "seller", claims.Role)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	issuer, err := NewManager(managerConfig("secret-a", time.Hour))
	require.NoError(t, err)
	verifier, err := NewManager(managerConfig("secret-b", time.Hour))
	require.NoError(t, err)

	signed, err := issuer.Issue(1, "buyer")
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_Expired(t *testing.T) {
	m := &Manager{secret: []byte("secret"), ttl: -time.Minute}

	signed, err := m.Issue(1, "buyer")
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_Parse_Garbage(t *testing.T) {
	m, err := NewManager(managerConfig("secret", time.Hour))
	require.NoError(t, err)

	_, err = m.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
