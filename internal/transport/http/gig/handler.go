package gig

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skilllink/skilllink/internal/dto"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/presentation/http/response"
	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	service "github.com/skilllink/skilllink/internal/service/gig"
	"github.com/skilllink/skilllink/internal/transport/http/middleware"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/skilllink/skilllink/transport/http/gig")

// maxGigImages caps image attachments per gig.
const maxGigImages = 3

// Handler exposes gig endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a gig Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Reads are public; writes
// are seller only.
func Register(e *echo.Echo, h *Handler, gate *middleware.AuthGate) {
	g := e.Group("/gigs")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create, gate.Require(entity.RoleSeller))
	g.PUT("/:id", h.update, gate.Require(entity.RoleSeller))
	g.DELETE("/:id", h.delete, gate.Require(entity.RoleSeller))
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	var query dto.GigQuery
	if err := c.Bind(&query); err != nil {
		return b.WithError(errorbank.BadRequest("invalid query", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&query); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "gigs.list")
	defer span.End()

	gigs, err := h.svc.List(ctx, gigrepo.Filter{
		Category: query.Category,
		Tag:      query.Tag,
		Search:   query.Search,
		Sort:     query.Sort,
		Page:     query.Page,
		Limit:    query.Limit,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.GigsFromEntities(gigs)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "gigs.getByID", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	gig, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.GigFromEntity(gig)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	var payload dto.CreateGigRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	images, err := imageUploads(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	defer closeUploads(images)

	ctx, span := httpTracer.Start(c.Request().Context(), "gigs.create", trace.WithAttributes(attribute.Int64("seller.id", actor.ID)))
	defer span.End()

	gig, err := h.svc.Create(ctx, actor, service.CreateInput{
		Title:        payload.Title,
		Description:  payload.Description,
		Price:        payload.Price,
		Category:     payload.Category,
		DeliveryTime: payload.DeliveryTime,
		Tags:         payload.Tags,
	}, uploadsFor(images))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.GigFromEntity(gig)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload dto.UpdateGigRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "gigs.update", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	gig, err := h.svc.Update(ctx, actor, id, service.UpdateInput{
		Title:        payload.Title,
		Description:  payload.Description,
		Price:        payload.Price,
		Category:     payload.Category,
		DeliveryTime: payload.DeliveryTime,
		Tags:         payload.Tags,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.GigFromEntity(gig)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return b.WithError(errorbank.Unauthorized("missing bearer token")).Build()
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "gigs.delete", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(map[string]string{"message": "gig deleted"}).Build()
}

type openedUpload struct {
	src         io.ReadCloser
	contentType string
}

func imageUploads(c echo.Context) ([]openedUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// JSON bodies have no multipart form; gigs without images are fine.
		return nil, nil
	}
	files := form.File["images"]
	if len(files) > maxGigImages {
		return nil, errorbank.BadRequest("too many images", errorbank.WithDetail("max", maxGigImages))
	}

	uploads := make([]openedUpload, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			closeUploads(uploads)
			return nil, errorbank.BadRequest("unreadable image", errorbank.WithCause(err))
		}
		uploads = append(uploads, openedUpload{src: src, contentType: file.Header.Get("Content-Type")})
	}
	return uploads, nil
}

func uploadsFor(opened []openedUpload) []service.ImageUpload {
	uploads := make([]service.ImageUpload, 0, len(opened))
	for _, o := range opened {
		uploads = append(uploads, service.ImageUpload{Content: o.src, ContentType: o.contentType})
	}
	return uploads
}

func closeUploads(opened []openedUpload) {
	for _, o := range opened {
		_ = o.src.Close()
	}
}
