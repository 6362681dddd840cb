package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// State of one checkout entry.
type State string

const (
	StateNoPendingOrder        State = "NO_PENDING_ORDER"
	StateAwaitingAddress       State = "AWAITING_ADDRESS"
	StateAwaitingPaymentIntent State = "AWAITING_PAYMENT_INTENT"
	StateAwaitingPaymentResult State = "AWAITING_PAYMENT_RESULT"
	StateFailed                State = "FAILED"
	StateConfirmed             State = "CONFIRMED"
)

const (
	msgNothingToPay  = "No pending order to pay."
	msgPaymentFailed = "Payment failed. Try again."
	msgConfirmed     = "Payment succeeded! Order confirmed."
)

var (
	ErrNoPendingOrder  = errors.New("no pending order to pay")
	ErrInvalidState    = errors.New("action not allowed in current checkout state")
	ErrAddressRequired = errors.New("delivery address required")
	ErrNoClientSecret  = errors.New("payment has no client secret")
	ErrIntentWithoutID = errors.New("payment intent returned without id")
)

// Backend is the slice of the API checkout needs.
type Backend interface {
	Pending(ctx context.Context) (*models.Order, error)
	SetPendingAddress(ctx context.Context, addr models.Address) (*models.Order, error)
	ConfirmPending(ctx context.Context) (*models.Order, error)
	CreateIntent(ctx context.Context, orderID int64) (*models.Payment, error)
	SimulateSuccess(ctx context.Context, paymentID int64) (*models.Payment, error)
	SimulateFailure(ctx context.Context, paymentID int64) (*models.Payment, error)
}

type apiBackend struct {
	*apiclient.OrderService
	payments *apiclient.PaymentService
}

func (b apiBackend) CreateIntent(ctx context.Context, orderID int64) (*models.Payment, error) {
	return b.payments.CreateIntent(ctx, orderID)
}

func (b apiBackend) SimulateSuccess(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return b.payments.SimulateSuccess(ctx, paymentID)
}

func (b apiBackend) SimulateFailure(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return b.payments.SimulateFailure(ctx, paymentID)
}

// NewAPIBackend adapts the API client to Backend.
func NewAPIBackend(c *apiclient.Client) Backend {
	return apiBackend{OrderService: c.Orders, payments: c.Payments}
}

// PaymentConfirmer completes a payment that needs the provider, returning
// the payment once it is SUCCEEDED or FAILED.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

type Identity interface {
	User() (*models.User, error)
}

type Events interface {
	PublishCheckoutTransition(ctx context.Context, username string, orderID, paymentID int64, from, to string)
	PublishPaymentOutcome(ctx context.Context, username string, payment *models.Payment, succeeded, simulated bool)
}

// View is what the checkout screen renders.
type View struct {
	State              State           `json:"state"`
	Order              *models.Order   `json:"order,omitempty"`
	Payment            *models.Payment `json:"payment,omitempty"`
	Message            string          `json:"message,omitempty"`
	Error              string          `json:"error,omitempty"`
	CanSimulate        bool            `json:"canSimulate"`
	CanConfirmExternal bool            `json:"canConfirmExternal"`
}

// Flow drives one checkout: address, payment intent, payment result, order
// confirmation. Methods are serialized.
type Flow struct {
	mu sync.Mutex

	backend   Backend
	confirmer PaymentConfirmer
	events    Events
	identity  Identity
	logger    *zap.Logger

	state   State
	order   *models.Order
	payment *models.Payment
	paid    bool
	message string
	lastErr error
}

type Option func(*Flow)

func WithConfirmer(c PaymentConfirmer) Option {
	return func(f *Flow) {
		f.confirmer = c
	}
}

func WithEvents(ev Events, who Identity) Option {
	return func(f *Flow) {
		f.events = ev
		f.identity = who
	}
}

func NewFlow(backend Backend, opts ...Option) *Flow {
	f := &Flow{
		backend: backend,
		state:   StateNoPendingOrder,
		logger:  util.GetLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enter starts a checkout from scratch. It requests a payment intent at most
// once, and only when the pending order already has an address.
func (f *Flow) Enter(ctx context.Context) (view View, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "checkout.enter")
	defer func() { util.EndSpan(span, err) }()

	f.order, f.payment, f.paid = nil, nil, false
	f.message, f.lastErr = "", nil
	f.state = StateNoPendingOrder

	order, err := f.backend.Pending(ctx)
	if err != nil {
		return f.fail(fmt.Errorf("load pending order: %w", err))
	}
	if order.IsEmpty() {
		f.message = msgNothingToPay
		return f.viewLocked(), ErrNoPendingOrder
	}
	f.order = order

	if order.DeliveryAddress.IsZero() {
		f.transition(ctx, StateAwaitingAddress)
		return f.viewLocked(), nil
	}
	return f.requestIntent(ctx)
}

// SubmitAddress stores the address on the pending order and moves on to
// the payment intent.
func (f *Flow) SubmitAddress(ctx context.Context, addr models.Address) (view View, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "checkout.address",
		attribute.Int64("order_id", f.orderID()),
		attribute.Int64("payment_id", f.paymentID()))
	defer func() { util.EndSpan(span, err) }()

	if f.state != StateAwaitingAddress {
		return f.viewLocked(), ErrInvalidState
	}
	if err := addr.Validate(); err != nil {
		return f.fail(fmt.Errorf("%w: %v", ErrAddressRequired, err))
	}

	updated, err := f.backend.SetPendingAddress(ctx, addr)
	if err != nil {
		return f.fail(fmt.Errorf("save address: %w", err))
	}
	if updated != nil && !updated.IsEmpty() {
		f.order = updated
	}
	if f.order.DeliveryAddress.IsZero() {
		stored := addr
		f.order.DeliveryAddress = &stored
	}
	return f.requestIntent(ctx)
}

func (f *Flow) requestIntent(ctx context.Context) (View, error) {
	f.transition(ctx, StateAwaitingPaymentIntent)

	payment, err := f.backend.CreateIntent(ctx, f.order.ID)
	if err != nil {
		return f.fail(fmt.Errorf("create payment intent: %w", err))
	}
	if payment == nil || payment.ID == 0 {
		return f.fail(ErrIntentWithoutID)
	}
	f.payment = payment
	f.lastErr = nil
	f.transition(ctx, StateAwaitingPaymentResult)
	return f.viewLocked(), nil
}

// SimulateSuccess marks the payment paid through the test endpoint, then
// confirms the order.
func (f *Flow) SimulateSuccess(ctx context.Context) (view View, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "checkout.simulate_success",
		attribute.Int64("order_id", f.orderID()),
		attribute.Int64("payment_id", f.paymentID()))
	defer func() { util.EndSpan(span, err) }()

	if !f.awaitingPayment() {
		return f.viewLocked(), ErrInvalidState
	}
	if !f.paid {
		payment, err := f.backend.SimulateSuccess(ctx, f.payment.ID)
		if err != nil {
			return f.fail(fmt.Errorf("simulate success: %w", err))
		}
		f.setPayment(payment)
		f.paymentOutcome(ctx, true, true)
	}
	return f.confirmOrder(ctx)
}

// SimulateFailure marks the payment failed; the flow can be retried.
func (f *Flow) SimulateFailure(ctx context.Context) (view View, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "checkout.simulate_failure",
		attribute.Int64("order_id", f.orderID()),
		attribute.Int64("payment_id", f.paymentID()))
	defer func() { util.EndSpan(span, err) }()

	if !f.awaitingPayment() || f.paid {
		return f.viewLocked(), ErrInvalidState
	}
	payment, err := f.backend.SimulateFailure(ctx, f.payment.ID)
	if err != nil {
		return f.fail(fmt.Errorf("simulate failure: %w", err))
	}
	f.setPayment(payment)
	f.paymentOutcome(ctx, false, true)
	f.message = msgPaymentFailed
	f.transition(ctx, StateFailed)
	return f.viewLocked(), nil
}

// ConfirmExternal hands a payment with a client secret to the confirmer.
func (f *Flow) ConfirmExternal(ctx context.Context) (view View, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "checkout.confirm_external",
		attribute.Int64("order_id", f.orderID()),
		attribute.Int64("payment_id", f.paymentID()))
	defer func() { util.EndSpan(span, err) }()

	if !f.awaitingPayment() {
		return f.viewLocked(), ErrInvalidState
	}
	if f.payment.ClientSecret == "" || f.confirmer == nil {
		return f.viewLocked(), ErrNoClientSecret
	}

	if !f.paid {
		payment, err := f.confirmer.Confirm(ctx, f.payment)
		if err != nil {
			return f.fail(fmt.Errorf("confirm payment: %w", err))
		}
		f.setPayment(payment)
		if f.payment.Status != models.PaymentStatusSucceeded {
			f.paymentOutcome(ctx, false, false)
			f.message = msgPaymentFailed
			f.transition(ctx, StateFailed)
			return f.viewLocked(), nil
		}
		f.paymentOutcome(ctx, true, false)
	}
	return f.confirmOrder(ctx)
}

// confirmOrder turns the pending order into a confirmed one. A failure here
// keeps the payment marked paid so a retry only repeats this call.
func (f *Flow) confirmOrder(ctx context.Context) (View, error) {
	f.paid = true
	confirmed, err := f.backend.ConfirmPending(ctx)
	if err != nil {
		return f.fail(fmt.Errorf("confirm order: %w", err))
	}
	if confirmed != nil {
		f.order = confirmed
	}
	f.lastErr = nil
	f.message = msgConfirmed
	f.transition(ctx, StateConfirmed)
	return f.viewLocked(), nil
}

func (f *Flow) awaitingPayment() bool {
	return f.payment != nil &&
		(f.state == StateAwaitingPaymentResult || f.state == StateFailed)
}

func (f *Flow) setPayment(p *models.Payment) {
	if p == nil {
		return
	}
	if p.ID == 0 {
		p.ID = f.payment.ID
	}
	if p.ClientSecret == "" {
		p.ClientSecret = f.payment.ClientSecret
	}
	f.payment = p
}

func (f *Flow) fail(err error) (View, error) {
	f.lastErr = err
	f.logger.Warn("Checkout step failed",
		zap.String("state", string(f.state)),
		zap.Int64("order_id", f.orderID()),
		zap.Error(err))
	return f.viewLocked(), err
}

func (f *Flow) transition(ctx context.Context, to State) {
	from := f.state
	f.state = to
	util.CheckoutTransitionsTotal.WithLabelValues(string(to)).Inc()
	f.logger.Info("Checkout transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int64("order_id", f.orderID()))
	if f.events != nil {
		f.events.PublishCheckoutTransition(ctx, f.username(), f.orderID(), f.paymentID(), string(from), string(to))
	}
}

func (f *Flow) paymentOutcome(ctx context.Context, succeeded, simulated bool) {
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	util.PaymentAttemptsTotal.WithLabelValues(outcome).Inc()
	if f.events != nil {
		f.events.PublishPaymentOutcome(ctx, f.username(), f.payment, succeeded, simulated)
	}
}

func (f *Flow) orderID() int64 {
	if f.order == nil {
		return 0
	}
	return f.order.ID
}

func (f *Flow) paymentID() int64 {
	if f.payment == nil {
		return 0
	}
	return f.payment.ID
}

func (f *Flow) username() string {
	if f.identity == nil {
		return ""
	}
	user, err := f.identity.User()
	if err != nil {
		return ""
	}
	return user.Username
}

// Reset forgets the current entry, e.g. when the session changes hands.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.order, f.payment, f.paid = nil, nil, false
	f.message, f.lastErr = "", nil
	f.state = StateNoPendingOrder
}

// View returns the current screen state.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Flow) viewLocked() View {
	v := View{
		State:   f.state,
		Order:   f.order.Clone(),
		Message: f.message,
	}
	if f.payment != nil {
		p := *f.payment
		v.Payment = &p
	}
	if f.lastErr != nil {
		v.Error = f.lastErr.Error()
	}
	if f.awaitingPayment() {
		v.CanSimulate = !f.paid
		v.CanConfirmExternal = f.payment.ClientSecret != "" && f.confirmer != nil
	}
	return v
}
