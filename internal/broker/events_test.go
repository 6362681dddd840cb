package broker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"food-delivery-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key   string
	event interface{}
}

type recordingSink struct {
	mu     sync.Mutex
	events []published
	err    error
	closed bool
}

func (s *recordingSink) PublishEvent(_ context.Context, key string, event interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, published{key: key, event: event})
	return s.err
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func TestPublishLogin(t *testing.T) {
	sink := &recordingSink{}
	ep := NewEventPublisher(sink)

	ep.PublishLogin(context.Background(), &models.User{Username: "ann", Roles: []models.Role{models.RoleCustomer}})

	require.Len(t, sink.events, 1)
	assert.Equal(t, "user-ann", sink.events[0].key)
	event := sink.events[0].event.(*models.SessionEvent)
	assert.Equal(t, models.EventTypeSessionLogin, event.EventType)
	assert.Equal(t, "ann", event.Username)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, []models.Role{models.RoleCustomer}, event.Roles)
}

func TestPublishCartReplacedEventType(t *testing.T) {
	sink := &recordingSink{}
	ep := NewEventPublisher(sink)

	ep.PublishCartReplaced(context.Background(), "ann", 7, true)
	ep.PublishCartReplaced(context.Background(), "ann", 7, false)

	require.Len(t, sink.events, 2)
	assert.Equal(t, models.EventTypeCartReplaced, sink.events[0].event.(*models.CartReplacedEvent).EventType)
	assert.Equal(t, models.EventTypeCartReplaceDeclined, sink.events[1].event.(*models.CartReplacedEvent).EventType)
}

func TestOrderEventsAreKeyedByOrder(t *testing.T) {
	sink := &recordingSink{}
	ep := NewEventPublisher(sink)
	ctx := context.Background()

	ep.PublishCheckoutTransition(ctx, "ann", 12, 3, "AWAITING_ADDRESS", "AWAITING_PAYMENT_INTENT")
	ep.PublishPaymentOutcome(ctx, "ann", &models.Payment{ID: 3, OrderID: 12}, false, true)
	ep.PublishOrderStatusChanged(ctx, "ann", 12, models.OrderStatusConfirmed, models.OrderStatusDelivered)

	require.Len(t, sink.events, 3)
	for _, p := range sink.events {
		assert.Equal(t, "order-12", p.key)
	}
	payment := sink.events[1].event.(*models.PaymentOutcomeEvent)
	assert.Equal(t, models.EventTypePaymentFailed, payment.EventType)
	assert.True(t, payment.Simulated)
}

func TestSinkErrorsAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	ep := NewEventPublisher(sink)

	assert.NotPanics(t, func() {
		ep.PublishLogout(context.Background(), "ann")
	})
	assert.Len(t, sink.events, 1)
}

func TestNilPublisherIsSafe(t *testing.T) {
	var ep *EventPublisher

	assert.NotPanics(t, func() {
		ep.PublishLogout(context.Background(), "ann")
		ep.PublishOrderStatusChanged(context.Background(), "ann", 1, "", "")
	})
	assert.NoError(t, ep.Close())
}

func TestDefaultSinkLogs(t *testing.T) {
	ep := NewEventPublisher(nil)

	_, ok := ep.sink.(*LogSink)
	assert.True(t, ok)
	assert.NoError(t, ep.sink.PublishEvent(context.Background(), "k", map[string]string{"a": "b"}))
	assert.NoError(t, ep.Close())
}

func TestCloseClosesSink(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, NewEventPublisher(sink).Close())
	assert.True(t, sink.closed)
}
