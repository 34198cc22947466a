package gig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth"
	"github.com/skilllink/skilllink/internal/cache"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/entity"
	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	"github.com/skilllink/skilllink/internal/storage"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/skilllink/skilllink/service/gig")

// Store is the listing persistence contract consumed by the service.
type Store interface {
	Create(ctx context.Context, gig *entity.Gig) error
	GetByID(ctx context.Context, id int64) (*entity.Gig, error)
	List(ctx context.Context, filter gigrepo.Filter) ([]*entity.Gig, error)
	Update(ctx context.Context, gig *entity.Gig) error
	Delete(ctx context.Context, id int64) error
}

// Service encapsulates business logic around gigs.
type Service struct {
	gigs      Store
	cache     cache.Store
	cacheTTL  time.Duration
	artifacts storage.Store
	logger    *zap.Logger
}

// CreateInput carries the validated fields for publishing a gig.
type CreateInput struct {
	Title        string
	Description  string
	Price        float64
	Category     string
	DeliveryTime int
	Tags         []string
}

// UpdateInput carries partial gig updates; nil fields are left untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	Price        *float64
	Category     *string
	DeliveryTime *int
	Tags         []string
}

// ImageUpload is one image payload attached to a gig at creation.
type ImageUpload struct {
	Content     io.Reader
	ContentType string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Gigs      Store
	Cache     cache.Store
	Artifacts storage.Store
	Config    config.Config
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		gigs:      p.Gigs,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		artifacts: p.Artifacts,
		logger:    p.Logger,
	}
}

// Create publishes a gig owned by the acting seller. Images are stored
// through the artifact sink before the gig row is written.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput, images []ImageUpload) (*entity.Gig, error) {
	ctx, span := serviceTracer.Start(ctx, "GigService.Create", trace.WithAttributes(attribute.Int64("seller.id", actor.ID)))
	defer span.End()

	imageRefs := make([]string, 0, len(images))
	for _, img := range images {
		ref, err := s.artifacts.Save(ctx, img.Content, img.ContentType)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "image upload failed")
			return nil, errorbank.Upstream("image upload failed", errorbank.WithCause(err))
		}
		imageRefs = append(imageRefs, ref)
	}

	now := time.Now().UTC()
	gig := &entity.Gig{
		SellerID:     actor.ID,
		Title:        in.Title,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		DeliveryTime: in.DeliveryTime,
		Tags:         in.Tags,
		Images:       imageRefs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.gigs.Create(ctx, gig); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create gig", errorbank.WithCause(err))
	}

	return gig, nil
}

// List returns gigs matching the filter.
func (s *Service) List(ctx context.Context, filter gigrepo.Filter) ([]*entity.Gig, error) {
	ctx, span := serviceTracer.Start(ctx, "GigService.List")
	defer span.End()

	gigs, err := s.gigs.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list gigs", errorbank.WithCause(err))
	}
	return gigs, nil
}

// Get retrieves a gig by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Gig, error) {
	ctx, span := serviceTracer.Start(ctx, "GigService.Get", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	if gig, err := s.getFromCache(ctx, id); err == nil {
		return gig, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("gigs cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	gig, err := s.gigs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gigrepo.ErrNotFound) {
			return nil, errorbank.NotFound("gig not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load gig", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, gig); err != nil {
		if s.logger != nil {
			s.logger.Warn("gigs cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return gig, nil
}

// Update applies a partial update to a gig owned by the actor.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, in UpdateInput) (*entity.Gig, error) {
	ctx, span := serviceTracer.Start(ctx, "GigService.Update", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	gig, err := s.gigs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gigrepo.ErrNotFound) {
			return nil, errorbank.NotFound("gig not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load gig", errorbank.WithCause(err))
	}

	if gig.SellerID != actor.ID {
		return nil, errorbank.Forbidden("only the owner can update this gig")
	}

	if in.Title != nil {
		gig.Title = *in.Title
	}
	if in.Description != nil {
		gig.Description = *in.Description
	}
	if in.Price != nil {
		gig.Price = *in.Price
	}
	if in.Category != nil {
		gig.Category = *in.Category
	}
	if in.DeliveryTime != nil {
		gig.DeliveryTime = *in.DeliveryTime
	}
	if in.Tags != nil {
		gig.Tags = in.Tags
	}
	gig.UpdatedAt = time.Now().UTC()

	if err := s.gigs.Update(ctx, gig); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update gig", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	return gig, nil
}

// Delete removes a gig owned by the actor.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "GigService.Delete", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	gig, err := s.gigs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gigrepo.ErrNotFound) {
			return errorbank.NotFound("gig not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to load gig", errorbank.WithCause(err))
	}

	if gig.SellerID != actor.ID {
		return errorbank.Forbidden("only the owner can delete this gig")
	}

	if err := s.gigs.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete gig", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("gigs:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Gig, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var gig entity.Gig
	if err := json.Unmarshal(bytes, &gig); err != nil {
		return nil, err
	}
	return &gig, nil
}

func (s *Service) storeInCache(ctx context.Context, gig *entity.Gig) error {
	if s.cache == nil || gig == nil {
		return nil
	}
	bytes, err := json.Marshal(gig)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(gig.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		if s.logger != nil {
			s.logger.Warn("gigs cache invalidate failed", zap.Int64("id", id), zap.Error(err))
		}
	}
}
