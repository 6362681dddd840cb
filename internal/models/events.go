package models

import "time"

// Event types
const (
	EventTypeSessionLogin        = "SESSION_LOGIN"
	EventTypeSessionLogout       = "SESSION_LOGOUT"
	EventTypeCartReplaced        = "CART_REPLACED"
	EventTypeCartReplaceDeclined = "CART_REPLACE_DECLINED"
	EventTypeCheckoutTransition  = "CHECKOUT_TRANSITION"
	EventTypePaymentSucceeded    = "PAYMENT_SUCCEEDED"
	EventTypePaymentFailed       = "PAYMENT_FAILED"
	EventTypeOrderStatusChanged  = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionEvent published on login and logout
type SessionEvent struct {
	BaseEvent
	Roles []Role `json:"roles,omitempty"`
}

// CartReplacedEvent published when a conflicting cart is cleared for a new product,
// or when the user declines to do so
type CartReplacedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
}

// CheckoutTransitionEvent published on every checkout state change
type CheckoutTransitionEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	PaymentID int64  `json:"payment_id,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// PaymentOutcomeEvent published when a payment succeeds or fails
type PaymentOutcomeEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	PaymentID int64  `json:"payment_id"`
	Provider  string `json:"provider,omitempty"`
	Simulated bool   `json:"simulated"`
}

// OrderStatusChangedEvent published by the tracking poller
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64       `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}
