package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/guard"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/screens"
	"food-delivery-client/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handler) home(c *gin.Context) {
	state, err := h.screens.Home.Load(c.Request.Context(), screens.None{})
	render(h, c, "home", state, err)
}

func (h *Handler) restaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.screens.Restaurant.Load(c.Request.Context(), id)
	render(h, c, "restaurant", state, err)
}

func (h *Handler) product(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.screens.Product.Load(c.Request.Context(), id)
	render(h, c, "product", state, err)
}

// recommendations takes an optional ?hour=0..23
func (h *Handler) recommendations(c *gin.Context) {
	hour := -1
	if raw := c.Query("hour"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 23 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hour"})
			return
		}
		hour = parsed
	}
	state, err := h.screens.Recommendations.Load(c.Request.Context(), hour)
	render(h, c, "recommendations", state, err)
}

func (h *Handler) loginScreen(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"session": h.sessions.Snapshot(),
		"from":    c.Query("from"),
	})
}

func (h *Handler) login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	h.resetScreens()
	snap, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		if errors.Is(err, session.ErrLoginRejected) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed", "details": err.Error()})
			return
		}
		h.writeError(c, "Login failed", err)
		return
	}

	redirect := c.Query("from")
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") || redirect == guard.LoginPath {
		redirect = "/"
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  snap,
		"redirect": redirect,
	})
}

func (h *Handler) registerScreen(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles": []models.Role{models.RoleCustomer, models.RoleCourier, models.RoleOwner},
	})
}

func (h *Handler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		var apiErr *apiclient.APIError
		if !errors.As(err, &apiErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Registration failed", "details": err.Error()})
			return
		}
		h.writeError(c, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account":  account,
		"redirect": guard.LoginPath,
	})
}

func (h *Handler) logout(c *gin.Context) {
	snap := h.sessions.Logout(c.Request.Context())
	h.resetScreens()
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

func (h *Handler) me(c *gin.Context) {
	state, err := h.screens.Me.Load(c.Request.Context(), screens.None{})
	render(h, c, "profile", state, err)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user := guard.CurrentUser(c)
	if err := h.api.Users.ChangePassword(c.Request.Context(), user.Username, req.Password); err != nil {
		h.writeError(c, "Failed to change password", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) myOrders(c *gin.Context) {
	state, err := h.screens.MyOrders.Load(c.Request.Context(), screens.None{})
	render(h, c, "orders", state, err)
}

func (h *Handler) trackOrder(c *gin.Context) {
	id, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	state, err := h.screens.Track.Load(c.Request.Context(), id)
	render(h, c, "order", state, err)
}

func (h *Handler) addReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	review, err := h.api.Reviews.Add(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, "Failed to add review", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// resetScreens drops everything the previous session loaded, including a
// checkout in progress.
func (h *Handler) resetScreens() {
	h.screens.Reset()
	h.checkout.Reset()
}
