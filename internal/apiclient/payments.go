package apiclient

import (
	"context"
	"net/http"

	"food-delivery-client/internal/models"
)

type PaymentService struct {
	c *Client
}

func (s *PaymentService) send(ctx context.Context, method, path string) (*models.Payment, error) {
	var out models.Payment
	if err := s.c.do(ctx, call{resource: "payments", method: method, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateIntent creates (or refreshes) the payment intent of an order.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID int64) (*models.Payment, error) {
	return s.send(ctx, http.MethodPost, idPath("/payments/%d/intent", orderID))
}

func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return s.send(ctx, http.MethodGet, idPath("/payments/%d", paymentID))
}

func (s *PaymentService) SimulateSuccess(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return s.send(ctx, http.MethodPost, idPath("/payments/%d/simulate-success", paymentID))
}

func (s *PaymentService) SimulateFailure(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return s.send(ctx, http.MethodPost, idPath("/payments/%d/simulate-failure", paymentID))
}
