package screens

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, routes map[string]string) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL)
}

func TestRestaurantScreen(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /restaurants/2": `{"id":2,"name":"Pasta Place"}`,
		"GET /products":      `[{"id":1,"name":"Carbonara","price":9,"restaurantId":2},{"id":5,"name":"Sushi","price":12,"restaurantId":3}]`,
		"GET /reviews/2":     `[{"id":1,"restaurantId":2,"userUsername":"ann","rating":5}]`,
	})
	s := New(api, nil)

	state, err := s.Restaurant.Load(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, state.Err)

	assert.Equal(t, "Pasta Place", state.Data.Restaurant.Name)
	require.Len(t, state.Data.Products, 1)
	assert.Equal(t, "Carbonara", state.Data.Products[0].Name)
	require.Len(t, state.Data.Reviews, 1)
	assert.Equal(t, "ann", state.Data.Reviews[0].Username)
}

func TestRestaurantScreenFailsWhenAnyCallFails(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /restaurants/2": `{"id":2,"name":"Pasta Place"}`,
		"GET /products":      `[]`,
	})
	s := New(api, nil)

	state, err := s.Restaurant.Load(context.Background(), 2)
	require.NoError(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, state.Err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Nil(t, state.Data.Restaurant)
}

func TestHomeToleratesMissingRecommendations(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /restaurants": `[{"id":1,"name":"A"}]`,
		"GET /products":    `[{"id":1,"name":"Soup","price":4,"restaurantId":1}]`,
	})
	s := New(api, nil)

	state, err := s.Home.Load(context.Background(), None{})
	require.NoError(t, err)
	require.NoError(t, state.Err)
	assert.Len(t, state.Data.Restaurants, 1)
	assert.Len(t, state.Data.Products, 1)
	assert.Empty(t, state.Data.Recommendations)
}

func TestTrackScreenAdvancesStepper(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /orders/track/9": `{"id":9,"status":"PICKED_UP"}`,
	})
	s := New(api, progress.NewStepper(progress.NewMemoryStore(), 10*time.Second))

	state, err := s.Track.Load(context.Background(), 9)
	require.NoError(t, err)
	require.NoError(t, state.Err)
	assert.Equal(t, models.OrderStatusPickedUp, state.Data.Order.Status)
	assert.Equal(t, progress.StepOutForDelivery, state.Data.Step)
	assert.Len(t, state.Data.Steps, 6)
}

func TestCourierAndAdminScreens(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /orders/confirmed":             `[{"id":1,"status":"CONFIRMED"},{"id":2,"status":"CONFIRMED"}]`,
		"GET /couriers/my-orders":           `[{"id":3,"status":"PICKED_UP"}]`,
		"GET /couriers/my-delivered-orders": `[]`,
		"GET /admin/users":                  `[{"username":"a"},{"username":"b"}]`,
		"GET /admin/restaurants":            `[{"id":1}]`,
		"GET /admin/products":               `[{"id":1},{"id":2},{"id":3}]`,
		"GET /admin/restaurants/1/products": `[{"id":1}]`,
	})
	s := New(api, nil)
	ctx := context.Background()

	courier, err := s.Courier.Load(ctx, None{})
	require.NoError(t, err)
	require.NoError(t, courier.Err)
	assert.Len(t, courier.Data.Available, 2)
	assert.Len(t, courier.Data.Active, 1)
	assert.Empty(t, courier.Data.Delivered)

	admin, err := s.Admin.Load(ctx, None{})
	require.NoError(t, err)
	assert.Equal(t, AdminView{Users: 2, Restaurants: 1, Products: 3}, admin.Data)

	products, err := s.AdminProducts.Load(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, products.Data, 1)
}

func TestResetClearsScreens(t *testing.T) {
	api := newBackend(t, map[string]string{
		"GET /orders/cart": `{"id":1,"items":[{"productId":1,"quantity":1,"unitPrice":3}]}`,
	})
	s := New(api, nil)

	state, err := s.Cart.Load(context.Background(), None{})
	require.NoError(t, err)
	require.NotNil(t, state.Data)

	s.Reset()
	assert.Nil(t, s.Cart.Snapshot().Data)
	assert.True(t, s.Cart.Snapshot().Loading)
}
