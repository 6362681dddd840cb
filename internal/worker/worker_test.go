package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/progress"
	"food-delivery-client/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedOrders struct {
	mu     sync.Mutex
	orders []models.Order
	calls  int
}

func (s *scriptedOrders) set(orders ...models.Order) {
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
}

func (s *scriptedOrders) MyOrders(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return append([]models.Order(nil), s.orders...), nil
}

type fixedSessions struct {
	mu   sync.Mutex
	snap session.Snapshot
}

func (f *fixedSessions) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

type change struct {
	orderID  int64
	from, to models.OrderStatus
}

type recordingEvents struct {
	changes []change
}

func (r *recordingEvents) PublishOrderStatusChanged(_ context.Context, _ string, orderID int64, from, to models.OrderStatus) {
	r.changes = append(r.changes, change{orderID, from, to})
}

func customer() session.Snapshot {
	return session.Snapshot{User: &models.User{Username: "ann", Roles: []models.Role{models.RoleCustomer}}, IsLoggedIn: true}
}

func TestPollDetectsStatusChanges(t *testing.T) {
	ctx := context.Background()
	orders := &scriptedOrders{}
	events := &recordingEvents{}
	store := progress.NewMemoryStore()
	w := NewTrackingWorker(orders, &fixedSessions{snap: customer()}, progress.NewStepper(store, time.Hour), events, time.Minute)

	orders.set(models.Order{ID: 1, Status: models.OrderStatusConfirmed})
	w.Poll(ctx)
	assert.Empty(t, events.changes)

	orders.set(models.Order{ID: 1, Status: models.OrderStatusPickedUp})
	w.Poll(ctx)
	require.Len(t, events.changes, 1)
	assert.Equal(t, change{1, models.OrderStatusConfirmed, models.OrderStatusPickedUp}, events.changes[0])

	marker, found, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, progress.StepOutForDelivery, marker.Step)
}

func TestPollSkipsNonCustomers(t *testing.T) {
	orders := &scriptedOrders{}
	sessions := &fixedSessions{snap: session.Snapshot{User: &models.User{Username: "bob", Roles: []models.Role{models.RoleCourier}}}}
	w := NewTrackingWorker(orders, sessions, nil, nil, time.Minute)

	w.Poll(context.Background())
	w.Poll(context.Background())
	assert.Zero(t, orders.calls)
}

func TestPollForgetsOnUserChange(t *testing.T) {
	ctx := context.Background()
	orders := &scriptedOrders{}
	events := &recordingEvents{}
	sessions := &fixedSessions{snap: customer()}
	w := NewTrackingWorker(orders, sessions, nil, events, time.Minute)

	orders.set(models.Order{ID: 1, Status: models.OrderStatusConfirmed})
	w.Poll(ctx)

	sessions.mu.Lock()
	sessions.snap = session.Snapshot{}
	sessions.mu.Unlock()
	w.Poll(ctx)

	sessions.mu.Lock()
	sessions.snap = customer()
	sessions.mu.Unlock()
	orders.set(models.Order{ID: 1, Status: models.OrderStatusDelivered})
	w.Poll(ctx)

	assert.Empty(t, events.changes)
}

func TestStartStop(t *testing.T) {
	orders := &scriptedOrders{}
	w := NewTrackingWorker(orders, &fixedSessions{snap: customer()}, nil, nil, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		orders.mu.Lock()
		defer orders.mu.Unlock()
		return orders.calls >= 2
	}, time.Second, time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
