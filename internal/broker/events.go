package broker

import (
	"context"
	"fmt"
	"time"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher turns client activity into domain events. Publishing is
// best effort: failures are logged and never surface to the caller.
type EventPublisher struct {
	sink   Sink
	logger *zap.Logger
}

// NewEventPublisher creates a new event publisher; a nil sink logs events.
func NewEventPublisher(sink Sink) *EventPublisher {
	if sink == nil {
		sink = NewLogSink()
	}
	return &EventPublisher{sink: sink, logger: util.GetLogger()}
}

func newBase(eventType, username string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Username:  username,
		Timestamp: time.Now().UTC(),
	}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event interface{}) {
	if ep == nil {
		return
	}
	if err := ep.sink.PublishEvent(ctx, key, event); err != nil {
		ep.logger.Error("Failed to publish event", zap.String("key", key), zap.Error(err))
	}
}

// PublishLogin publishes a SESSION_LOGIN event
func (ep *EventPublisher) PublishLogin(ctx context.Context, user *models.User) {
	event := &models.SessionEvent{
		BaseEvent: newBase(models.EventTypeSessionLogin, user.Username),
		Roles:     user.Roles,
	}
	ep.publish(ctx, "user-"+user.Username, event)
}

// PublishLogout publishes a SESSION_LOGOUT event
func (ep *EventPublisher) PublishLogout(ctx context.Context, username string) {
	event := &models.SessionEvent{BaseEvent: newBase(models.EventTypeSessionLogout, username)}
	ep.publish(ctx, "user-"+username, event)
}

// PublishCartReplaced publishes CART_REPLACED or CART_REPLACE_DECLINED
func (ep *EventPublisher) PublishCartReplaced(ctx context.Context, username string, productID int64, replaced bool) {
	eventType := models.EventTypeCartReplaced
	if !replaced {
		eventType = models.EventTypeCartReplaceDeclined
	}
	event := &models.CartReplacedEvent{
		BaseEvent: newBase(eventType, username),
		ProductID: productID,
	}
	ep.publish(ctx, "user-"+username, event)
}

// PublishCheckoutTransition publishes CHECKOUT_TRANSITION
func (ep *EventPublisher) PublishCheckoutTransition(ctx context.Context, username string, orderID, paymentID int64, from, to string) {
	event := &models.CheckoutTransitionEvent{
		BaseEvent: newBase(models.EventTypeCheckoutTransition, username),
		OrderID:   orderID,
		PaymentID: paymentID,
		From:      from,
		To:        to,
	}
	ep.publish(ctx, fmt.Sprintf("order-%d", orderID), event)
}

// PublishPaymentOutcome publishes PAYMENT_SUCCEEDED or PAYMENT_FAILED
func (ep *EventPublisher) PublishPaymentOutcome(ctx context.Context, username string, payment *models.Payment, succeeded, simulated bool) {
	eventType := models.EventTypePaymentSucceeded
	if !succeeded {
		eventType = models.EventTypePaymentFailed
	}
	event := &models.PaymentOutcomeEvent{
		BaseEvent: newBase(eventType, username),
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
		Provider:  payment.Provider,
		Simulated: simulated,
	}
	ep.publish(ctx, fmt.Sprintf("order-%d", payment.OrderID), event)
}

// PublishOrderStatusChanged publishes ORDER_STATUS_CHANGED
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, username string, orderID int64, from, to models.OrderStatus) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBase(models.EventTypeOrderStatusChanged, username),
		OrderID:   orderID,
		From:      from,
		To:        to,
	}
	ep.publish(ctx, fmt.Sprintf("order-%d", orderID), event)
}

// Close closes the underlying sink
func (ep *EventPublisher) Close() error {
	if ep == nil {
		return nil
	}
	return ep.sink.Close()
}
