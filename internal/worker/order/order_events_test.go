package order_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/messaging"
	ordersvc "github.com/skilllink/skilllink/internal/service/order"
	workerorder "github.com/skilllink/skilllink/internal/worker/order"
)

func newHandler(t *testing.T) (*observer.ObservedLogs, func(context.Context, messaging.Message) error) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	reg := workerorder.NewOrderEventHandler(zap.New(core), config.Config{
		Messaging: config.Messaging{Kafka: config.Kafka{Topic: "orders.events"}},
	})
	assert.Equal(t, "orders.events", reg.Topic)
	return logs, reg.Handler
}

func eventMessage(t *testing.T, event ordersvc.OrderEvent) messaging.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return messaging.Message{Topic: "orders.events", Value: value, Time: time.Now()}
}

func TestOrderEventHandler(t *testing.T) {
	t.Run("placed", func(t *testing.T) {
		logs, handler := newHandler(t)

		err := handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
			Type: ordersvc.EventOrderPlaced, ID: 1, BuyerID: 10, SellerID: 20, Price: 100,
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("order placed").Len())
	})

	t.Run("completed", func(t *testing.T) {
		logs, handler := newHandler(t)

		err := handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{
			Type: ordersvc.EventOrderCompleted, ID: 1, DeliveryFile: "mem://abc",
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("order completed").Len())
	})

	t.Run("unknown type", func(t *testing.T) {
		logs, handler := newHandler(t)

		err := handler(context.Background(), eventMessage(t, ordersvc.OrderEvent{Type: "order.refunded"}))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("unknown order event type").Len())
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, handler := newHandler(t)

		err := handler(context.Background(), messaging.Message{Topic: "orders.events", Value: []byte("{not json")})
		assert.Error(t, err)
	})
}
