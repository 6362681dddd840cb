package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-delivery-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceSimulatesUpToReadyForPickup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := NewStepper(store, 10*time.Second)
	order := &models.Order{ID: 7, Status: models.OrderStatusConfirmed}
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, s.Advance(ctx, order, start))
	assert.Equal(t, 0, s.Advance(ctx, order, start.Add(9*time.Second)))
	assert.Equal(t, 1, s.Advance(ctx, order, start.Add(10*time.Second)))
	assert.Equal(t, 2, s.Advance(ctx, order, start.Add(25*time.Second)))
	assert.Equal(t, 3, s.Advance(ctx, order, start.Add(30*time.Second)))
	assert.Equal(t, 3, s.Advance(ctx, order, start.Add(time.Hour)))

	marker, found, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, marker.Step)
}

func TestAdvanceFollowsCourierStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStepper(nil, 10*time.Second)
	now := time.Now()

	order := &models.Order{ID: 1, Status: models.OrderStatusConfirmed}
	assert.Equal(t, 0, s.Advance(ctx, order, now))

	order.Status = models.OrderStatusPickedUp
	assert.Equal(t, StepOutForDelivery, s.Advance(ctx, order, now))

	order.Status = models.OrderStatusEnRoute
	assert.Equal(t, StepOutForDelivery, s.Advance(ctx, order, now.Add(time.Minute)))

	order.Status = models.OrderStatusDelivered
	assert.Equal(t, StepDelivered, s.Advance(ctx, order, now.Add(2*time.Minute)))
}

func TestAdvanceNeverGoesBackwards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, 3, Marker{Step: 2, UpdatedAt: time.Now()}))
	s := NewStepper(store, 10*time.Second)

	order := &models.Order{ID: 3, Status: models.OrderStatusCanceled}
	assert.Equal(t, 2, s.Advance(ctx, order, time.Now().Add(time.Hour)))
}

type failingStore struct{}

func (failingStore) Get(context.Context, int64) (Marker, bool, error) {
	return Marker{}, false, errors.New("down")
}

func (failingStore) Set(context.Context, int64, Marker) error { return errors.New("down") }

func TestAdvanceSurvivesStoreFailure(t *testing.T) {
	s := NewStepper(failingStore{}, time.Second)
	order := &models.Order{ID: 1, Status: models.OrderStatusDelivered}
	assert.Equal(t, StepDelivered, s.Advance(context.Background(), order, time.Now()))
}
