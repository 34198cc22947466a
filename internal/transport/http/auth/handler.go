package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/skilllink/skilllink/internal/dto"
	"github.com/skilllink/skilllink/internal/presentation/http/response"
	service "github.com/skilllink/skilllink/internal/service/auth"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/skilllink/skilllink/transport/http/auth")

// Handler exposes registration and login over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload dto.RegisterRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.register")
	defer span.End()

	user, signed, err := h.svc.Register(ctx, service.RegisterInput{
		Name:        payload.Name,
		Email:       payload.Email,
		Password:    payload.Password,
		Role:        payload.Role,
		Description: payload.Description,
		Skills:      payload.Skills,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.AuthResponse{
		User:  dto.UserFromEntity(user),
		Token: signed,
	}).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	user, signed, err := h.svc.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.AuthResponse{
		User:  dto.UserFromEntity(user),
		Token: signed,
	}).Build()
}
