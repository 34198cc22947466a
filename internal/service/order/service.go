package order

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/messaging"
	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	orderrepo "github.com/skilllink/skilllink/internal/repository/order"
	"github.com/skilllink/skilllink/internal/storage"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/skilllink/skilllink/service/order")

// defaultDeliveryDays applies when neither the order nor the gig sets a
// delivery time.
const defaultDeliveryDays = 7

// Store is the order persistence contract consumed by the service.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	ListByParticipant(ctx context.Context, userID int64) ([]*entity.Order, error)
}

// GigReader is the narrow listing-store view the service needs: seller, price
// and delivery time of an existing gig.
type GigReader interface {
	GetByID(ctx context.Context, id int64) (*entity.Gig, error)
}

// Service owns the order state machine and its authorization rules.
//
// Read-then-write sequences here are not wrapped in transactions or guarded
// by versioning: two concurrent status updates on one order race and the
// later write wins. Known gap, surfaced in DESIGN.md rather than masked.
type Service struct {
	orders             Store
	gigs               GigReader
	artifacts          storage.Store
	logger             *zap.Logger
	publisher          messaging.Client
	messagingEnabled   bool
	pendingResetPolicy string
}

// PlaceOrderInput carries the validated fields for order creation.
type PlaceOrderInput struct {
	GigID        int64
	Requirements string
	DeliveryTime int
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    Store
	Gigs      GigReader
	Artifacts storage.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:             p.Orders,
		gigs:               p.Gigs,
		artifacts:          p.Artifacts,
		logger:             p.Logger,
		publisher:          p.Publisher,
		messagingEnabled:   p.Config.Messaging.Enabled,
		pendingResetPolicy: p.Config.Orders.PendingResetPolicy,
	}
}

// Place creates a pending order against an existing gig. Seller and price are
// copied from the gig at this instant; later gig updates do not touch the
// order. Nothing prevents the same buyer ordering the same gig twice.
func (s *Service) Place(ctx context.Context, actor auth.Actor, in PlaceOrderInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Place", trace.WithAttributes(
		attribute.Int64("gig.id", in.GigID),
		attribute.Int64("buyer.id", actor.ID),
	))
	defer span.End()

	gig, err := s.gigs.GetByID(ctx, in.GigID)
	if err != nil {
		if errors.Is(err, gigrepo.ErrNotFound) {
			return nil, errorbank.NotFound("gig not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "gig lookup failed")
		return nil, errorbank.Internal("failed to load gig", errorbank.WithCause(err))
	}

	deliveryTime := in.DeliveryTime
	if deliveryTime <= 0 {
		deliveryTime = gig.DeliveryTime
	}
	if deliveryTime <= 0 {
		deliveryTime = defaultDeliveryDays
	}

	now := time.Now().UTC()
	order := &entity.Order{
		BuyerID:      actor.ID,
		SellerID:     gig.SellerID,
		GigID:        gig.ID,
		Status:       entity.StatusPending,
		Requirements: in.Requirements,
		DeliveryTime: deliveryTime,
		Price:        gig.Price,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	s.publishEvent(ctx, EventOrderPlaced, order)
	return order, nil
}

// ListMine returns all orders in which the actor participates as buyer or
// seller, in insertion order.
func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListMine", trace.WithAttributes(attribute.Int64("user.id", actor.ID)))
	defer span.End()

	orders, err := s.orders.ListByParticipant(ctx, actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// UpdateStatus applies a role-gated status transition:
//
//	in-progress  seller only
//	completed    buyer only
//	cancelled    seller only
//	pending      per the configured pending-reset policy
//
// The target is not checked against the current status; re-completing a
// completed order succeeds trivially.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID int64, target entity.Status, note string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.target_status", string(target)),
	))
	defer span.End()

	if !target.Valid() {
		return nil, errorbank.BadRequest("status must be pending, in-progress, completed, or cancelled")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.authorizeTransition(order, actor, target); err != nil {
		return nil, err
	}

	order.Status = target
	if note != "" {
		order.Note = note
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	if target == entity.StatusCompleted {
		s.publishEvent(ctx, EventOrderCompleted, order)
	}
	return order, nil
}

// UploadDelivery stores the payload in artifact storage, then marks the order
// completed with the returned reference. The storage write happens before the
// order mutation; a storage failure leaves the order untouched, and a crash
// between the two steps can orphan the artifact.
func (s *Service) UploadDelivery(ctx context.Context, actor auth.Actor, orderID int64, payload io.Reader, contentType, message string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UploadDelivery", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if !order.IsSeller(actor.ID) {
		return nil, errorbank.Forbidden("only the seller can upload delivery")
	}

	ref, err := s.artifacts.Save(ctx, payload, contentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact storage failed")
		return nil, errorbank.Upstream("delivery upload failed", errorbank.WithCause(err))
	}

	order.DeliveryFile = ref
	order.Status = entity.StatusCompleted
	if message != "" {
		order.Note = message
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.publishEvent(ctx, EventOrderCompleted, order)
	return order, nil
}

func (s *Service) authorizeTransition(order *entity.Order, actor auth.Actor, target entity.Status) error {
	isBuyer := order.IsBuyer(actor.ID)
	isSeller := order.IsSeller(actor.ID)

	if !isBuyer && !isSeller {
		return errorbank.Forbidden("not a party to this order")
	}

	switch target {
	case entity.StatusInProgress, entity.StatusCancelled:
		if !isSeller {
			return errorbank.Forbidden("only the seller can update to this status")
		}
	case entity.StatusCompleted:
		if !isBuyer {
			return errorbank.Forbidden("only the buyer can complete the order")
		}
	case entity.StatusPending:
		switch s.pendingResetPolicy {
		case "buyer":
			if !isBuyer {
				return errorbank.Forbidden("only the buyer can reset the order to pending")
			}
		case "seller":
			if !isSeller {
				return errorbank.Forbidden("only the seller can reset the order to pending")
			}
		}
	}
	return nil
}
