// Package progress keeps the cosmetic delivery stepper shown on the order
// tracking screen. Markers are not authoritative; the order status is.
package progress

import (
	"context"
	"sync"
	"time"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.uber.org/zap"
)

// Steps are the stepper labels, in order.
var Steps = []string{
	"Order Confirmed",
	"Restaurant Accepted",
	"Preparing Food",
	"Ready for Pickup",
	"Out for Delivery",
	"Delivered",
}

const (
	StepOutForDelivery = 4
	StepDelivered      = 5
	// lastSimulatedStep is as far as time alone moves the stepper.
	lastSimulatedStep = 3
)

// Marker is the persisted step of one order.
type Marker struct {
	Step      int       `json:"step"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarkerStore persists markers keyed by order id.
type MarkerStore interface {
	Get(ctx context.Context, orderID int64) (Marker, bool, error)
	Set(ctx context.Context, orderID int64, m Marker) error
}

// MemoryStore is a process-local MarkerStore.
type MemoryStore struct {
	mu      sync.Mutex
	markers map[int64]Marker
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{markers: make(map[int64]Marker)}
}

func (s *MemoryStore) Get(_ context.Context, orderID int64) (Marker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[orderID]
	return m, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, orderID int64, m Marker) error {
	s.mu.Lock()
	s.markers[orderID] = m
	s.mu.Unlock()
	return nil
}

// Stepper moves markers forward one step per interval until the courier
// status takes over.
type Stepper struct {
	store    MarkerStore
	interval time.Duration
	logger   *zap.Logger
}

func NewStepper(store MarkerStore, interval time.Duration) *Stepper {
	if store == nil {
		store = NewMemoryStore()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Stepper{store: store, interval: interval, logger: util.GetLogger()}
}

// Advance returns the step to show for order at now and persists it.
// The step never moves backwards. Store failures are logged, the computed
// step is still returned.
func (s *Stepper) Advance(ctx context.Context, order *models.Order, now time.Time) int {
	if order == nil {
		return 0
	}

	marker, found, err := s.store.Get(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Failed to read progress marker", zap.Int64("order_id", order.ID), zap.Error(err))
		found = false
	}

	next := marker
	switch {
	case order.Status == models.OrderStatusDelivered:
		if marker.Step != StepDelivered {
			next = Marker{Step: StepDelivered, UpdatedAt: now}
		}
	case order.Status.OutForDelivery():
		if marker.Step < StepOutForDelivery {
			next = Marker{Step: StepOutForDelivery, UpdatedAt: now}
		}
	case order.Status == models.OrderStatusCanceled:
		// frozen where it was
	case !found:
		next = Marker{Step: 0, UpdatedAt: now}
	case marker.Step < lastSimulatedStep:
		elapsed := now.Sub(marker.UpdatedAt)
		if steps := int(elapsed / s.interval); steps > 0 {
			next.Step = min(marker.Step+steps, lastSimulatedStep)
			next.UpdatedAt = marker.UpdatedAt.Add(time.Duration(next.Step-marker.Step) * s.interval)
		}
	}

	if !found || next != marker {
		if err := s.store.Set(ctx, order.ID, next); err != nil {
			s.logger.Warn("Failed to store progress marker", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	return next.Step
}
