package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skilllink/skilllink/internal/auth"
	"github.com/skilllink/skilllink/internal/auth/token"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/transport/http/middleware"
)

func newGate(t *testing.T) (*middleware.AuthGate, *token.Manager) {
	t.Helper()
	tokens, err := token.NewManager(config.Config{
		Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
	})
	require.NoError(t, err)
	return middleware.NewAuthGate(tokens), tokens
}

func performRequest(gate *middleware.AuthGate, authHeader string, roles ...entity.Role) (*httptest.ResponseRecorder, *auth.Actor) {
	e := echo.New()

	var seen *auth.Actor
	handler := func(c echo.Context) error {
		if actor, ok := middleware.ActorFrom(c); ok {
			seen = &actor
		}
		return c.NoContent(http.StatusOK)
	}
	e.GET("/protected", handler, gate.Require(roles...))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthGate_Require(t *testing.T) {
	gate, tokens := newGate(t)

	sellerToken, err := tokens.Issue(7, "seller")
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		roles      []entity.Role
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
		{name: "valid token no role constraint", header: "Bearer " + sellerToken, wantStatus: http.StatusOK},
		{name: "valid token matching role", header: "Bearer " + sellerToken, roles: []entity.Role{entity.RoleSeller}, wantStatus: http.StatusOK},
		{name: "valid token wrong role", header: "Bearer " + sellerToken, roles: []entity.Role{entity.RoleBuyer}, wantStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, actor := performRequest(gate, tc.header, tc.roles...)
			assert.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, actor)
				assert.Equal(t, int64(7), actor.ID)
				assert.Equal(t, entity.RoleSeller, actor.Role)
			} else {
				assert.Nil(t, actor)
			}
		})
	}
}

func TestAuthGate_ExpiredToken(t *testing.T) {
	gate, _ := newGate(t)

	expiredIssuer, err := token.NewManager(config.Config{
		Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Nanosecond},
	})
	require.NoError(t, err)
	signed, err := expiredIssuer.Issue(7, "buyer")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	rec, _ := performRequest(gate, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
