package cart

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	ErrUnknownLine     = errors.New("product is not in the cart")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Editor changes line quantities optimistically. The backend only knows
// add-one and remove-one, so a change of n issues n calls.
type Editor struct {
	backend Backend
	observe func(*models.Order)
	logger  *zap.Logger
}

// NewEditor creates an editor. observe, if not nil, sees the optimistic
// cart, then the reconciled or rolled back one.
func NewEditor(backend Backend, observe func(*models.Order)) *Editor {
	return &Editor{backend: backend, observe: observe, logger: util.GetLogger()}
}

// SetQuantity moves productID in order to target units, zero removing the
// line. On success it returns the server's cart; on failure it returns a
// copy of the original cart together with the error.
func (e *Editor) SetQuantity(ctx context.Context, order *models.Order, productID int64, target int) (result *models.Order, err error) {
	ctx, span := util.StartSpan(ctx, "cart.set_quantity",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", target))
	defer func() { util.EndSpan(span, err) }()

	if target < 0 {
		return order.Clone(), ErrInvalidQuantity
	}
	if order == nil {
		return nil, ErrUnknownLine
	}

	original := order.Clone()
	current := original.QuantityOf(productID)
	if current == 0 {
		return original, ErrUnknownLine
	}
	if current == target {
		return original, nil
	}

	optimistic := original.Clone()
	optimistic.SetQuantity(productID, target)
	e.notify(optimistic)

	step := e.backend.AddToOrder
	delta := target - current
	if delta < 0 {
		step = e.backend.RemoveFromOrder
		delta = -delta
	}

	var latest *models.Order
	for i := 0; i < delta; i++ {
		latest, err = step(ctx, productID)
		if err != nil {
			return e.rollback(original, productID, err)
		}
	}

	if latest == nil {
		latest, err = e.backend.Pending(ctx)
		if err != nil {
			return e.rollback(original, productID, err)
		}
	}
	if latest == nil {
		latest = optimistic
	}

	util.CartQuantityEditsTotal.WithLabelValues("ok").Inc()
	e.notify(latest)
	return latest, nil
}

// rollback restores the original copy. Calls that already went through are
// not undone; the next cart load shows the server's view.
func (e *Editor) rollback(original *models.Order, productID int64, cause error) (*models.Order, error) {
	util.CartQuantityEditsTotal.WithLabelValues("rolled_back").Inc()
	e.logger.Warn("Quantity edit failed, restoring cart",
		zap.Int64("order_id", original.ID),
		zap.Int64("product_id", productID),
		zap.Error(cause))
	e.notify(original)
	return original.Clone(), fmt.Errorf("set quantity: %w", cause)
}

func (e *Editor) notify(order *models.Order) {
	if e.observe != nil {
		e.observe(order.Clone())
	}
}
