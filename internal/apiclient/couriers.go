package apiclient

import (
	"context"
	"net/http"

	"food-delivery-client/internal/models"
)

type CourierService struct {
	c *Client
}

func (s *CourierService) Assign(ctx context.Context, orderID int64) (*models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "couriers", method: http.MethodPost, path: idPath("/couriers/assign/%d", orderID)})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrder(raw)
}

func (s *CourierService) Complete(ctx context.Context, orderID int64) (*models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "couriers", method: http.MethodPost, path: idPath("/couriers/complete/%d", orderID)})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrder(raw)
}

func (s *CourierService) MyOrders(ctx context.Context) ([]models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "couriers", method: http.MethodGet, path: "/couriers/my-orders"})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrders(raw)
}

func (s *CourierService) MyDeliveredOrders(ctx context.Context) ([]models.Order, error) {
	raw, err := s.c.raw(ctx, call{resource: "couriers", method: http.MethodGet, path: "/couriers/my-delivered-orders"})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrders(raw)
}
