package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/cart"
	"food-delivery-client/internal/checkout"
	"food-delivery-client/internal/fetch"
	"food-delivery-client/internal/guard"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/screens"
	"food-delivery-client/internal/session"
	"food-delivery-client/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Probe is a dependency the readiness check pings.
type Probe func(ctx context.Context) error

// Handler serves the client screens as JSON view models
type Handler struct {
	api      *apiclient.Client
	sessions *session.Store
	auth     *session.Authenticator
	screens  *screens.Screens
	cart     *cart.Helper
	editor   *cart.Editor
	checkout *checkout.Flow
	probes   map[string]Probe
	logger   *zap.Logger
}

// Deps are the collaborators of the handler
type Deps struct {
	API      *apiclient.Client
	Sessions *session.Store
	Auth     *session.Authenticator
	Screens  *screens.Screens
	Cart     *cart.Helper
	Editor   *cart.Editor
	Checkout *checkout.Flow
	Probes   map[string]Probe
}

// NewHandler creates a new HTTP handler
func NewHandler(d Deps) *Handler {
	return &Handler{
		api:      d.API,
		sessions: d.Sessions,
		auth:     d.Auth,
		screens:  d.Screens,
		cart:     d.Cart,
		editor:   d.Editor,
		checkout: d.Checkout,
		probes:   d.Probes,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", h.home)
	router.GET("/restaurants/:id", h.restaurant)
	router.GET("/products/:id", h.product)
	router.GET("/recommendations", h.recommendations)
	router.GET("/login", h.loginScreen)
	router.POST("/login", h.login)
	router.GET("/register", h.registerScreen)
	router.POST("/register", h.register)
	router.POST("/logout", h.logout)

	user := router.Group("/user", guard.RequireRole(h.sessions, ""))
	{
		user.GET("/me", h.me)
		user.PUT("/me/password", h.changePassword)
	}

	customer := router.Group("/", guard.RequireRole(h.sessions, models.RoleCustomer))
	{
		customer.GET("/cart", h.getCart)
		customer.POST("/cart/items/:productId", h.addToCart)
		customer.PUT("/cart/items/:productId", h.setCartQuantity)
		customer.DELETE("/cart/items/:productId", h.removeFromCart)
		customer.POST("/cart/cancel", h.cancelCart)

		customer.GET("/checkout", h.enterCheckout)
		customer.POST("/checkout/address", h.submitAddress)
		customer.POST("/checkout/simulate-success", h.simulateSuccess)
		customer.POST("/checkout/simulate-failure", h.simulateFailure)
		customer.POST("/checkout/confirm", h.confirmExternal)

		customer.GET("/orders/my-orders", h.myOrders)
		customer.GET("/orders/track/:orderId", h.trackOrder)
		customer.POST("/restaurants/:id/reviews", h.addReview)
	}

	courier := router.Group("/courier", guard.RequireRole(h.sessions, models.RoleCourier))
	{
		courier.GET("", h.courierDashboard)
		courier.POST("/assign/:orderId", h.assignOrder)
		courier.POST("/complete/:orderId", h.completeOrder)
	}

	owner := router.Group("/owner", guard.RequireRole(h.sessions, models.RoleOwner))
	{
		owner.GET("/products", h.listProducts)
		owner.POST("/products", h.createProduct)
		owner.PUT("/products/:id", h.updateProduct)
		owner.DELETE("/products/:id", h.deleteProduct)
		owner.GET("/restaurants", h.listRestaurants)
		owner.POST("/restaurants", h.createRestaurant)
		owner.PUT("/restaurants/:id", h.updateRestaurant)
		owner.DELETE("/restaurants/:id", h.deleteRestaurant)
	}

	admin := router.Group("/admin", guard.RequireRole(h.sessions, models.RoleAdmin))
	{
		admin.GET("", h.adminDashboard)
		admin.GET("/users", h.adminUsers)
		admin.PUT("/users/:username/role", h.updateUserRole)
		admin.DELETE("/users/:username", h.deleteUser)
		admin.GET("/restaurants", h.adminRestaurants)
		admin.GET("/products", h.adminProducts)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the session is restored and every
// probe answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.sessions.Snapshot().IsLoading {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "restoring session"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// render writes a screen's committed state, or the error that kept it
// from committing
func render[P comparable, T any](h *Handler, c *gin.Context, what string, state fetch.State[P, T], err error) {
	switch {
	case errors.Is(err, fetch.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "Request superseded by a newer one"})
	case errors.Is(err, fetch.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Screen closed"})
	case state.Err != nil:
		h.writeError(c, "Failed to load "+what, state.Err)
	default:
		c.JSON(http.StatusOK, state.Data)
	}
}

// writeError maps an error to a response. Backend answers keep their
// status, transport failures become 502.
func (h *Handler) writeError(c *gin.Context, msg string, err error) {
	status := http.StatusBadGateway
	details := err.Error()

	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
		if apiErr.Message != "" {
			details = apiErr.Message
		}
	case errors.Is(err, context.Canceled):
		status = 499
	case errors.Is(err, checkout.ErrNoPendingOrder):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, models.ErrIncompleteAddress):
		status = http.StatusBadRequest
	case errors.Is(err, checkout.ErrInvalidState),
		errors.Is(err, checkout.ErrNoClientSecret),
		errors.Is(err, cart.ErrUnknownLine):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoSession):
		status = http.StatusUnauthorized
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn(msg, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": details,
	})
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
