package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/skilllink/skilllink/internal/auth"
	"github.com/skilllink/skilllink/internal/auth/token"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/presentation/http/response"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

const actorContextKey = "skilllink.actor"

// AuthGate verifies bearer credentials and enforces role requirements.
type AuthGate struct {
	tokens *token.Manager
}

// Module provides the auth gate to Fx.
var Module = fx.Provide(NewAuthGate)

// NewAuthGate constructs an AuthGate backed by the token manager.
func NewAuthGate(tokens *token.Manager) *AuthGate {
	return &AuthGate{tokens: tokens}
}

// Require authenticates the request and, when roles are given, rejects actors
// holding none of them. The resolved actor is stored on the echo context.
func (g *AuthGate) Require(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := response.New(c)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}

			claims, err := g.tokens.Parse(raw)
			if err != nil {
				return b.WithError(errorbank.Unauthorized("invalid or expired token", errorbank.WithCause(err))).Build()
			}
			id, err := claims.UserID()
			if err != nil {
				return b.WithError(errorbank.Unauthorized("invalid or expired token", errorbank.WithCause(err))).Build()
			}

			actor := auth.Actor{ID: id, Role: entity.Role(claims.Role)}
			if len(roles) > 0 && !holdsAny(actor.Role, roles) {
				return b.WithError(errorbank.Forbidden("insufficient role")).Build()
			}

			SetActor(c, actor)
			return next(c)
		}
	}
}

func holdsAny(role entity.Role, allowed []entity.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// SetActor stores the authenticated actor on the request context.
func SetActor(c echo.Context, actor auth.Actor) {
	c.Set(actorContextKey, actor)
}

// ActorFrom extracts the authenticated actor placed by Require.
func ActorFrom(c echo.Context) (auth.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(auth.Actor)
	return actor, ok
}
