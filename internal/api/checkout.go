package api

import (
	"errors"
	"net/http"

	"food-delivery-client/internal/checkout"
	"food-delivery-client/internal/models"

	"github.com/gin-gonic/gin"
)

// enterCheckout starts a fresh checkout each time the screen is opened
func (h *Handler) enterCheckout(c *gin.Context) {
	view, err := h.checkout.Enter(c.Request.Context())
	h.writeCheckout(c, view, err)
}

func (h *Handler) submitAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid address",
			"details": err.Error(),
		})
		return
	}
	view, err := h.checkout.SubmitAddress(c.Request.Context(), addr)
	h.writeCheckout(c, view, err)
}

func (h *Handler) simulateSuccess(c *gin.Context) {
	view, err := h.checkout.SimulateSuccess(c.Request.Context())
	h.writeCheckout(c, view, err)
}

func (h *Handler) simulateFailure(c *gin.Context) {
	view, err := h.checkout.SimulateFailure(c.Request.Context())
	h.writeCheckout(c, view, err)
}

func (h *Handler) confirmExternal(c *gin.Context) {
	view, err := h.checkout.ConfirmExternal(c.Request.Context())
	h.writeCheckout(c, view, err)
}

// writeCheckout always returns the view so the screen can render the
// state next to the error
func (h *Handler) writeCheckout(c *gin.Context, view checkout.View, err error) {
	if err == nil {
		if view.State == checkout.StateConfirmed {
			c.JSON(http.StatusOK, gin.H{"checkout": view, "redirect": "/"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"checkout": view})
		return
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, checkout.ErrNoPendingOrder):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrAddressRequired):
		status = http.StatusBadRequest
	case errors.Is(err, checkout.ErrInvalidState), errors.Is(err, checkout.ErrNoClientSecret):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"checkout": view,
		"error":    err.Error(),
	})
}
