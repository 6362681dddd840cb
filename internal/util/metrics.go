package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of calls made to the food-delivery API",
	}, []string{"resource", "method", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Latency of calls made to the food-delivery API",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	SessionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_events_total",
		Help: "Session lifecycle events (login, logout, restore, invalid_token)",
	}, []string{"event"})

	StaleFetchDiscardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stale_fetch_discarded_total",
		Help: "Fetch results dropped because a newer request superseded them",
	}, []string{"resource"})

	CartConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_conflicts_total",
		Help: "Single-restaurant cart conflicts by resolution",
	}, []string{"outcome"})

	CartQuantityEditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_quantity_edits_total",
		Help: "Optimistic cart quantity edits by result",
	}, []string{"result"})

	CheckoutTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout flow state transitions by target state",
	}, []string{"state"})

	PaymentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Payment attempts by outcome",
	}, []string{"outcome"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status changes observed by the tracking poller",
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
