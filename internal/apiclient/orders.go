package apiclient

import (
	"context"
	"net/http"

	"food-delivery-client/internal/models"
)

// OrderService wraps /orders. Every payload is normalized through
// models.DecodeOrder before it leaves this package.
type OrderService struct {
	c *Client
}

func (s *OrderService) one(ctx context.Context, method, path string, body interface{}) (*models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "orders", method: method, path: path, body: body})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrder(raw)
}

func (s *OrderService) list(ctx context.Context, path string) ([]models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "orders", method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrders(raw)
}

// Pending returns the user's cart; nil when there is none.
func (s *OrderService) Pending(ctx context.Context) (*models.Order, error) {
	return s.one(ctx, http.MethodGet, "/orders/cart", nil)
}

func (s *OrderService) ConfirmPending(ctx context.Context) (*models.Order, error) {
	return s.one(ctx, http.MethodPut, "/orders/pending/confirm", nil)
}

func (s *OrderService) CancelPending(ctx context.Context) (*models.Order, error) {
	return s.one(ctx, http.MethodPut, "/orders/pending/cancel", nil)
}

// SetPendingAddress stores the delivery address on the pending order.
func (s *OrderService) SetPendingAddress(ctx context.Context, addr models.Address) (*models.Order, error) {
	return s.one(ctx, http.MethodPut, "/orders/pending/address", addr)
}

func (s *OrderService) Confirmed(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, "/orders/confirmed")
}

func (s *OrderService) Track(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.one(ctx, http.MethodGet, idPath("/orders/track/%d", orderID), nil)
}

func (s *OrderService) MyOrders(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, "/orders/my-orders")
}
