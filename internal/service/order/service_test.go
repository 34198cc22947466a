package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilllink/skilllink/internal/auth"
	"github.com/skilllink/skilllink/internal/config"
	"github.com/skilllink/skilllink/internal/entity"
	"github.com/skilllink/skilllink/internal/messaging"
	gigrepo "github.com/skilllink/skilllink/internal/repository/gig"
	orderrepo "github.com/skilllink/skilllink/internal/repository/order"
	service "github.com/skilllink/skilllink/internal/service/order"
	"github.com/skilllink/skilllink/internal/storage"
	"github.com/skilllink/skilllink/pkg/errorbank"
)

type fakeOrderStore struct {
	orders map[int64]entity.Order
	nextID int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int64]entity.Order), nextID: 1}
}

func (s *fakeOrderStore) Create(_ context.Context, order *entity.Order) error {
	order.ID = s.nextID
	s.nextID++
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, orderrepo.ErrNotFound
	}
	return &order, nil
}

func (s *fakeOrderStore) Update(_ context.Context, order *entity.Order) error {
	if _, ok := s.orders[order.ID]; !ok {
		return orderrepo.ErrNotFound
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) ListByParticipant(_ context.Context, userID int64) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0)
	for id := int64(1); id < s.nextID; id++ {
		order, ok := s.orders[id]
		if !ok {
			continue
		}
		if order.BuyerID == userID || order.SellerID == userID {
			o := order
			out = append(out, &o)
		}
	}
	return out, nil
}

type fakeGigReader struct {
	gigs map[int64]entity.Gig
}

func (r *fakeGigReader) GetByID(_ context.Context, id int64) (*entity.Gig, error) {
	gig, ok := r.gigs[id]
	if !ok {
		return nil, gigrepo.ErrNotFound
	}
	return &gig, nil
}

type brokenStorage struct{}

func (brokenStorage) Save(context.Context, io.Reader, string) (string, error) {
	return "", errors.New("sink unavailable")
}

type fakePublisher struct {
	published [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	p.published = append(p.published, value)
	return nil
}

func (p *fakePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *fakePublisher) Topic() string { return "orders.events" }

func newTestService(t *testing.T, orders *fakeOrderStore, gigs *fakeGigReader, artifacts storage.Store, policy string) *service.Service {
	t.Helper()
	if artifacts == nil {
		artifacts = storage.NewMemoryStore()
	}
	return service.NewService(service.Params{
		Orders:    orders,
		Gigs:      gigs,
		Artifacts: artifacts,
		Config: config.Config{
			Orders: config.Orders{PendingResetPolicy: policy},
		},
		Logger: zap.NewNop(),
	})
}

func kindOf(err error) errorbank.Kind {
	return errorbank.From(err).Kind()
}

var (
	buyer    = auth.Actor{ID: 10, Role: entity.RoleBuyer}
	seller   = auth.Actor{ID: 20, Role: entity.RoleSeller}
	stranger = auth.Actor{ID: 99, Role: entity.RoleBuyer}
)

func gigFixture() *fakeGigReader {
	return &fakeGigReader{gigs: map[int64]entity.Gig{
		1: {ID: 1, SellerID: seller.ID, Price: 100, DeliveryTime: 14},
		2: {ID: 2, SellerID: seller.ID, Price: 50},
	}}
}

func TestService_Place(t *testing.T) {
	testCases := []struct {
		name             string
		input            service.PlaceOrderInput
		wantErrKind      errorbank.Kind
		wantPrice        float64
		wantDeliveryTime int
	}{
		{
			name:             "delivery time from override",
			input:            service.PlaceOrderInput{GigID: 1, DeliveryTime: 3},
			wantPrice:        100,
			wantDeliveryTime: 3,
		},
		{
			name:             "delivery time from gig default",
			input:            service.PlaceOrderInput{GigID: 1},
			wantPrice:        100,
			wantDeliveryTime: 14,
		},
		{
			name:             "delivery time from system default",
			input:            service.PlaceOrderInput{GigID: 2},
			wantPrice:        50,
			wantDeliveryTime: 7,
		},
		{
			name:        "gig not found",
			input:       service.PlaceOrderInput{GigID: 404},
			wantErrKind: errorbank.KindNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orders := newFakeOrderStore()
			svc := newTestService(t, orders, gigFixture(), nil, "any")

			order, err := svc.Place(context.Background(), buyer, tc.input)

			if tc.wantErrKind != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErrKind, kindOf(err))
				assert.Empty(t, orders.orders)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, entity.StatusPending, order.Status)
			assert.Equal(t, buyer.ID, order.BuyerID)
			assert.Equal(t, seller.ID, order.SellerID)
			assert.Equal(t, tc.wantPrice, order.Price)
			assert.Equal(t, tc.wantDeliveryTime, order.DeliveryTime)

			stored, err := orders.GetByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, order.BuyerID, stored.BuyerID)
			assert.Equal(t, order.SellerID, stored.SellerID)
			assert.Equal(t, order.GigID, stored.GigID)
			assert.Equal(t, order.Price, stored.Price)
			assert.Equal(t, order.DeliveryTime, stored.DeliveryTime)
		})
	}
}

func TestService_Place_PriceFixedAtCreation(t *testing.T) {
	orders := newFakeOrderStore()
	gigs := gigFixture()
	svc := newTestService(t, orders, gigs, nil, "any")

	order, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
	require.NoError(t, err)
	require.Equal(t, float64(100), order.Price)

	// A later gig price change must not touch the order.
	gig := gigs.gigs[1]
	gig.Price = 500
	gigs.gigs[1] = gig

	stored, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), stored.Price)
}

func TestService_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name        string
		actor       auth.Actor
		target      entity.Status
		policy      string
		wantErrKind errorbank.Kind
	}{
		{name: "seller starts progress", actor: seller, target: entity.StatusInProgress},
		{name: "buyer cannot start progress", actor: buyer, target: entity.StatusInProgress, wantErrKind: errorbank.KindForbidden},
		{name: "buyer completes", actor: buyer, target: entity.StatusCompleted},
		{name: "seller cannot complete", actor: seller, target: entity.StatusCompleted, wantErrKind: errorbank.KindForbidden},
		{name: "seller cancels", actor: seller, target: entity.StatusCancelled},
		{name: "buyer cannot cancel", actor: buyer, target: entity.StatusCancelled, wantErrKind: errorbank.KindForbidden},
		{name: "stranger is rejected", actor: stranger, target: entity.StatusCompleted, wantErrKind: errorbank.KindForbidden},
		{name: "pending open to buyer by default", actor: buyer, target: entity.StatusPending},
		{name: "pending open to seller by default", actor: seller, target: entity.StatusPending},
		{name: "pending restricted to seller by policy", actor: buyer, target: entity.StatusPending, policy: "seller", wantErrKind: errorbank.KindForbidden},
		{name: "pending restricted to buyer by policy", actor: seller, target: entity.StatusPending, policy: "buyer", wantErrKind: errorbank.KindForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := tc.policy
			if policy == "" {
				policy = "any"
			}
			orders := newFakeOrderStore()
			svc := newTestService(t, orders, gigFixture(), nil, policy)

			placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
			require.NoError(t, err)

			updated, err := svc.UpdateStatus(context.Background(), tc.actor, placed.ID, tc.target, "")

			stored, getErr := orders.GetByID(context.Background(), placed.ID)
			require.NoError(t, getErr)

			if tc.wantErrKind != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErrKind, kindOf(err))
				assert.Equal(t, entity.StatusPending, stored.Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.target, updated.Status)
			assert.Equal(t, tc.target, stored.Status)
		})
	}
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	svc := newTestService(t, newFakeOrderStore(), gigFixture(), nil, "any")

	_, err := svc.UpdateStatus(context.Background(), seller, 404, entity.StatusInProgress, "")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, kindOf(err))
}

func TestService_UpdateStatus_Note(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestService(t, orders, gigFixture(), nil, "any")

	placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), seller, placed.ID, entity.StatusInProgress, "starting now")
	require.NoError(t, err)
	assert.Equal(t, "starting now", updated.Note)

	// An empty note leaves the previous one in place.
	updated, err = svc.UpdateStatus(context.Background(), buyer, placed.ID, entity.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, "starting now", updated.Note)
}

func TestService_UploadDelivery(t *testing.T) {
	t.Run("seller upload completes the order", func(t *testing.T) {
		orders := newFakeOrderStore()
		artifacts := storage.NewMemoryStore()
		svc := newTestService(t, orders, gigFixture(), artifacts, "any")

		placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
		require.NoError(t, err)

		updated, err := svc.UploadDelivery(context.Background(), seller, placed.ID, bytes.NewReader([]byte("final.zip")), "application/zip", "here you go")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusCompleted, updated.Status)
		assert.True(t, strings.HasPrefix(updated.DeliveryFile, "mem://"))
		assert.Equal(t, "here you go", updated.Note)

		content, ok := artifacts.Get(updated.DeliveryFile)
		require.True(t, ok)
		assert.Equal(t, []byte("final.zip"), content)
	})

	t.Run("non-seller is rejected", func(t *testing.T) {
		orders := newFakeOrderStore()
		svc := newTestService(t, orders, gigFixture(), nil, "any")

		placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
		require.NoError(t, err)

		_, err = svc.UploadDelivery(context.Background(), buyer, placed.ID, bytes.NewReader([]byte("x")), "", "")
		require.Error(t, err)
		assert.Equal(t, errorbank.KindForbidden, kindOf(err))

		stored, getErr := orders.GetByID(context.Background(), placed.ID)
		require.NoError(t, getErr)
		assert.Equal(t, entity.StatusPending, stored.Status)
		assert.Empty(t, stored.DeliveryFile)
	})

	t.Run("storage failure leaves the order untouched", func(t *testing.T) {
		orders := newFakeOrderStore()
		svc := newTestService(t, orders, gigFixture(), brokenStorage{}, "any")

		placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
		require.NoError(t, err)

		_, err = svc.UploadDelivery(context.Background(), seller, placed.ID, bytes.NewReader([]byte("x")), "", "")
		require.Error(t, err)
		assert.Equal(t, errorbank.KindUpstream, kindOf(err))

		stored, getErr := orders.GetByID(context.Background(), placed.ID)
		require.NoError(t, getErr)
		assert.Equal(t, entity.StatusPending, stored.Status)
		assert.Empty(t, stored.DeliveryFile)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newTestService(t, newFakeOrderStore(), gigFixture(), nil, "any")

		_, err := svc.UploadDelivery(context.Background(), seller, 404, bytes.NewReader(nil), "", "")
		require.Error(t, err)
		assert.Equal(t, errorbank.KindNotFound, kindOf(err))
	})
}

func TestService_ListMine(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestService(t, orders, gigFixture(), nil, "any")

	first, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
	require.NoError(t, err)
	second, err := svc.Place(context.Background(), stranger, service.PlaceOrderInput{GigID: 2})
	require.NoError(t, err)

	buyerOrders, err := svc.ListMine(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, buyerOrders, 1)
	assert.Equal(t, first.ID, buyerOrders[0].ID)

	// The seller participates in both orders.
	sellerOrders, err := svc.ListMine(context.Background(), seller)
	require.NoError(t, err)
	require.Len(t, sellerOrders, 2)
	assert.Equal(t, first.ID, sellerOrders[0].ID)
	assert.Equal(t, second.ID, sellerOrders[1].ID)
}

// Full lifecycle walk: place, start, complete via delivery, trivially
// re-complete. No reachability check guards the final step.
func TestService_Lifecycle(t *testing.T) {
	orders := newFakeOrderStore()
	svc := newTestService(t, orders, gigFixture(), storage.NewMemoryStore(), "any")

	placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 2})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, placed.Status)
	assert.Equal(t, float64(50), placed.Price)
	assert.Equal(t, 7, placed.DeliveryTime)

	inProgress, err := svc.UpdateStatus(context.Background(), seller, placed.ID, entity.StatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, inProgress.Status)

	_, err = svc.UpdateStatus(context.Background(), buyer, placed.ID, entity.StatusInProgress, "")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindForbidden, kindOf(err))

	delivered, err := svc.UploadDelivery(context.Background(), seller, placed.ID, bytes.NewReader([]byte("work")), "application/zip", "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, delivered.Status)
	assert.NotEmpty(t, delivered.DeliveryFile)

	recompleted, err := svc.UpdateStatus(context.Background(), buyer, placed.ID, entity.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, recompleted.Status)
}

func TestService_PublishesEvents(t *testing.T) {
	orders := newFakeOrderStore()
	publisher := &fakePublisher{}
	svc := service.NewService(service.Params{
		Orders:    orders,
		Gigs:      gigFixture(),
		Artifacts: storage.NewMemoryStore(),
		Config: config.Config{
			Orders:    config.Orders{PendingResetPolicy: "any"},
			Messaging: config.Messaging{Enabled: true},
		},
		Logger:    zap.NewNop(),
		Publisher: publisher,
	})

	placed, err := svc.Place(context.Background(), buyer, service.PlaceOrderInput{GigID: 1})
	require.NoError(t, err)

	_, err = svc.UploadDelivery(context.Background(), seller, placed.ID, bytes.NewReader([]byte("work")), "application/zip", "")
	require.NoError(t, err)

	require.Len(t, publisher.published, 2)

	var first, second service.OrderEvent
	require.NoError(t, json.Unmarshal(publisher.published[0], &first))
	require.NoError(t, json.Unmarshal(publisher.published[1], &second))

	assert.Equal(t, service.EventOrderPlaced, first.Type)
	assert.Equal(t, placed.ID, first.ID)
	assert.Equal(t, string(entity.StatusPending), first.Status)

	assert.Equal(t, service.EventOrderCompleted, second.Type)
	assert.Equal(t, string(entity.StatusCompleted), second.Status)
	assert.NotEmpty(t, second.DeliveryFile)
}
