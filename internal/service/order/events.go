package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/entity"
)

// Event types emitted on the orders topic.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderCompleted = "order.completed"
)

// OrderEvent is published when an order is placed or completed. Publication
// is best effort; delivery failures are logged and never fail the request.
type OrderEvent struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	BuyerID      int64     `json:"buyer_id"`
	SellerID     int64     `json:"seller_id"`
	GigID        int64     `json:"gig_id"`
	Status       string    `json:"status"`
	Price        float64   `json:"price"`
	DeliveryFile string    `json:"delivery_file,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messagingEnabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:         eventType,
		ID:           order.ID,
		BuyerID:      order.BuyerID,
		SellerID:     order.SellerID,
		GigID:        order.GigID,
		Status:       string(order.Status),
		Price:        order.Price,
		DeliveryFile: order.DeliveryFile,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.String("type", eventType), zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
		}
	}
}
