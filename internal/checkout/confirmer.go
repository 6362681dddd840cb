package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.uber.org/zap"
)

var ErrConfirmTimeout = errors.New("payment was not completed in time")

// PaymentLookup reads a payment's current state.
type PaymentLookup interface {
	Get(ctx context.Context, paymentID int64) (*models.Payment, error)
}

// PollingConfirmer waits for the provider to finish a payment the browser
// completed with the client secret.
type PollingConfirmer struct {
	payments PaymentLookup
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewPollingConfirmer(payments PaymentLookup, interval, timeout time.Duration) *PollingConfirmer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &PollingConfirmer{
		payments: payments,
		interval: interval,
		timeout:  timeout,
		logger:   util.GetLogger(),
	}
}

// Confirm asks the backend at least once, even when the given payment
// already looks terminal: a retried payment may have moved since.
func (c *PollingConfirmer) Confirm(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		current, err := c.payments.Get(ctx, payment.ID)
		if err != nil && ctx.Err() == nil {
			c.logger.Debug("Payment poll failed", zap.Int64("payment_id", payment.ID), zap.Error(err))
		}
		if err == nil && current.Status.Terminal() {
			return current, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: payment %d", ErrConfirmTimeout, payment.ID)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
