package worker

import (
	"context"
	"sync"
	"time"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/progress"
	"food-delivery-client/internal/session"
	"food-delivery-client/internal/util"

	"go.uber.org/zap"
)

// OrderSource lists the session user's orders.
type OrderSource interface {
	MyOrders(ctx context.Context) ([]models.Order, error)
}

type Sessions interface {
	Snapshot() session.Snapshot
}

type Events interface {
	PublishOrderStatusChanged(ctx context.Context, username string, orderID int64, from, to models.OrderStatus)
}

// TrackingWorker polls the customer's orders, notices status changes and
// keeps the delivery progress markers moving.
type TrackingWorker struct {
	orders   OrderSource
	sessions Sessions
	stepper  *progress.Stepper
	events   Events
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	owner    string
	statuses map[int64]models.OrderStatus

	stop     chan struct{}
	stopOnce sync.Once
}

// NewTrackingWorker creates a new tracking worker
func NewTrackingWorker(orders OrderSource, sessions Sessions, stepper *progress.Stepper, events Events, interval time.Duration) *TrackingWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &TrackingWorker{
		orders:   orders,
		sessions: sessions,
		stepper:  stepper,
		events:   events,
		interval: interval,
		logger:   util.GetLogger(),
		statuses: make(map[int64]models.OrderStatus),
		stop:     make(chan struct{}),
	}
}

// Start polls until ctx is done or Stop is called
func (w *TrackingWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting tracking worker", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop stops the worker
func (w *TrackingWorker) Stop() error {
	w.logger.Info("Stopping tracking worker")
	w.stopOnce.Do(func() { close(w.stop) })
	return nil
}

// Poll runs one round. Only customers have orders to track; anything else
// forgets what was seen.
func (w *TrackingWorker) Poll(ctx context.Context) {
	snap := w.sessions.Snapshot()
	if snap.User == nil || !snap.User.HasRole(models.RoleCustomer) {
		w.forget("")
		return
	}
	username := snap.User.Username
	w.forget(username)

	orders, err := w.orders.MyOrders(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("Failed to poll orders", zap.String("username", username), zap.Error(err))
		}
		return
	}

	now := time.Now()
	for i := range orders {
		order := &orders[i]
		if from, changed := w.record(order); changed {
			util.OrderStatusChangesTotal.WithLabelValues(string(order.Status)).Inc()
			w.logger.Info("Order status changed",
				zap.Int64("order_id", order.ID),
				zap.String("from", string(from)),
				zap.String("to", string(order.Status)))
			if w.events != nil {
				w.events.PublishOrderStatusChanged(ctx, username, order.ID, from, order.Status)
			}
		}
		if w.stepper != nil && (order.Status.Active() || order.Status == models.OrderStatusDelivered) {
			w.stepper.Advance(ctx, order, now)
		}
	}
}

// record stores the order's status. The first sighting of an order is not
// a change.
func (w *TrackingWorker) record(order *models.Order) (models.OrderStatus, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	previous, seen := w.statuses[order.ID]
	w.statuses[order.ID] = order.Status
	return previous, seen && previous != order.Status
}

// forget drops known statuses when the session changed hands.
func (w *TrackingWorker) forget(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.owner != owner {
		w.owner = owner
		w.statuses = make(map[int64]models.OrderStatus)
	}
}
