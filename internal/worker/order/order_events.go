package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/messaging"
	ordersvc "github.com/skilllink/skilllink/internal/service/order"
	"github.com/skilllink/skilllink/internal/worker"
)

var workerTracer = otel.Tracer("github.com/skilllink/skilllink/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventHandler sets up a worker handler for order lifecycle events.
// Today it only logs; notification fan-out would hang off this handler.
func NewOrderEventHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		switch event.Type {
		case ordersvc.EventOrderPlaced:
			logger.Info("order placed",
				zap.Int64("id", event.ID),
				zap.Int64("buyer_id", event.BuyerID),
				zap.Int64("seller_id", event.SellerID),
				zap.Float64("price", event.Price),
			)
		case ordersvc.EventOrderCompleted:
			logger.Info("order completed",
				zap.Int64("id", event.ID),
				zap.String("delivery_file", event.DeliveryFile),
			)
		default:
			logger.Warn("unknown order event type", zap.String("type", event.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
