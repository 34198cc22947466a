package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skilllink/skilllink/internal/dto"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/presentation/http/response"
	service "github.com/skilllink/skilllink/internal/service/order"
	"github.com/skilllink/skilllink/internal/transport/http/middleware"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/skilllink/skilllink/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, gate *middleware.AuthGate) {
	g := e.Group("/orders")
	g.POST("", h.place, gate.Require(entity.RoleBuyer))
	g.GET("", h.listMine, gate.Require())
	g.PATCH("/:id/status", h.updateStatus, gate.Require())
	g.POST("/:id/deliver", h.uploadDelivery, gate.Require(entity.RoleSeller))
}

func (h *Handler) place(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	var payload dto.PlaceOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.place", trace.WithAttributes(attribute.Int64("gig.id", payload.GigID)))
	defer span.End()

	order, err := h.svc.Place(ctx, actor, service.PlaceOrderInput{
		GigID:        payload.GigID,
		Requirements: payload.Requirements,
		DeliveryTime: payload.DeliveryTime,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.OrderFromEntity(order)).Build()
}

func (h *Handler) listMine(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listMine")
	defer span.End()

	orders, err := h.svc.ListMine(ctx, actor)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrdersFromEntities(orders)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload dto.UpdateOrderStatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.target_status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.UpdateStatus(ctx, actor, id, entity.Status(payload.Status), payload.Note)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrderFromEntity(order)).Build()
}

func (h *Handler) uploadDelivery(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload dto.DeliveryRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	file, err := c.FormFile("file")
	if err != nil {
		return b.WithError(errorbank.BadRequest("file is required", errorbank.WithCause(err))).Build()
	}
	src, err := file.Open()
	if err != nil {
		return b.WithError(errorbank.BadRequest("unreadable file", errorbank.WithCause(err))).Build()
	}
	defer src.Close()

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.uploadDelivery", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.UploadDelivery(ctx, actor, id, src, file.Header.Get("Content-Type"), payload.Message)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.OrderFromEntity(order)).Build()
}
