package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// ConflictText is what the backend says when a cart would span two
	// restaurants.
	ConflictText = "Cart can contain Products from only one restaurant"
	// ReplacePrompt is shown before clearing a cart from another restaurant.
	ReplacePrompt = "Your cart has items from another restaurant. Clear cart and add this item?"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// DeclineConfirm answers no without asking.
func DeclineConfirm(context.Context, string) bool { return false }

// AcceptConfirm answers yes without asking.
func AcceptConfirm(context.Context, string) bool { return true }

// Result of an add that may have hit the single-restaurant rule.
type Result struct {
	OK        bool          `json:"ok"`
	Replaced  bool          `json:"replaced"`
	Cancelled bool          `json:"cancelled,omitempty"`
	Prompt    string        `json:"prompt,omitempty"`
	Order     *models.Order `json:"order,omitempty"`
}

// Backend is the slice of the API the cart needs.
type Backend interface {
	AddToOrder(ctx context.Context, productID int64) (*models.Order, error)
	RemoveFromOrder(ctx context.Context, productID int64) (*models.Order, error)
	CancelPending(ctx context.Context) (*models.Order, error)
	Pending(ctx context.Context) (*models.Order, error)
}

type apiBackend struct {
	*apiclient.ProductService
	orders *apiclient.OrderService
}

func (b apiBackend) CancelPending(ctx context.Context) (*models.Order, error) {
	return b.orders.CancelPending(ctx)
}

func (b apiBackend) Pending(ctx context.Context) (*models.Order, error) {
	return b.orders.Pending(ctx)
}

// NewAPIBackend adapts the API client to Backend.
func NewAPIBackend(c *apiclient.Client) Backend {
	return apiBackend{ProductService: c.Products, orders: c.Orders}
}

// Identity names the user for published events.
type Identity interface {
	User() (*models.User, error)
}

// Events receives cart replacement outcomes.
type Events interface {
	PublishCartReplaced(ctx context.Context, username string, productID int64, replaced bool)
}

// IsSingleRestaurantConflict reports whether err is the backend refusing a
// product from a second restaurant. The backend has signalled it both by
// status 409 and by message text only.
func IsSingleRestaurantConflict(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict ||
			strings.Contains(apiErr.Message, ConflictText) ||
			strings.Contains(apiErr.Body, ConflictText)
	}
	return strings.Contains(err.Error(), ConflictText)
}

// Helper adds products while respecting the single-restaurant rule.
type Helper struct {
	backend  Backend
	confirm  ConfirmFunc
	events   Events
	identity Identity
	logger   *zap.Logger
}

type Option func(*Helper)

// WithDefaultConfirm sets the ConfirmFunc used when a call passes nil.
func WithDefaultConfirm(fn ConfirmFunc) Option {
	return func(h *Helper) {
		h.confirm = fn
	}
}

func WithEvents(ev Events, who Identity) Option {
	return func(h *Helper) {
		h.events = ev
		h.identity = who
	}
}

func NewHelper(backend Backend, opts ...Option) *Helper {
	h := &Helper{
		backend: backend,
		confirm: DeclineConfirm,
		logger:  util.GetLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddRespectingSingleRestaurant adds one unit of productID. On a
// single-restaurant conflict it asks confirm; a yes clears the pending order
// and retries, a no leaves the cart untouched. Other errors are returned
// unchanged.
func (h *Helper) AddRespectingSingleRestaurant(ctx context.Context, productID int64, confirm ConfirmFunc) (res Result, err error) {
	ctx, span := util.StartSpan(ctx, "cart.add", attribute.Int64("product_id", productID))
	defer func() { util.EndSpan(span, err) }()

	if confirm == nil {
		confirm = h.confirm
	}

	order, err := h.backend.AddToOrder(ctx, productID)
	if err == nil {
		return Result{OK: true, Order: order}, nil
	}
	if !IsSingleRestaurantConflict(err) {
		return Result{}, err
	}

	h.logger.Info("Cart holds another restaurant's products", zap.Int64("product_id", productID))
	if !confirm(ctx, ReplacePrompt) {
		util.CartConflictsTotal.WithLabelValues("declined").Inc()
		h.publish(ctx, productID, false)
		return Result{Cancelled: true, Prompt: ReplacePrompt}, nil
	}

	if _, err := h.backend.CancelPending(ctx); err != nil {
		return Result{}, fmt.Errorf("clear cart before replacing: %w", err)
	}
	order, err = h.backend.AddToOrder(ctx, productID)
	if err != nil {
		return Result{}, fmt.Errorf("add after clearing cart: %w", err)
	}

	util.CartConflictsTotal.WithLabelValues("replaced").Inc()
	h.publish(ctx, productID, true)
	return Result{OK: true, Replaced: true, Order: order}, nil
}

func (h *Helper) publish(ctx context.Context, productID int64, replaced bool) {
	if h.events == nil {
		return
	}
	username := ""
	if h.identity != nil {
		if user, err := h.identity.User(); err == nil {
			username = user.Username
		}
	}
	h.events.PublishCartReplaced(ctx, username, productID, replaced)
}
