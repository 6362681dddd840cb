package api

import (
	"net/http"

	"food-delivery-client/internal/cart"
	"food-delivery-client/internal/models"
	"food-delivery-client/internal/screens"

	"github.com/gin-gonic/gin"
)

type cartView struct {
	Order     *models.Order `json:"order"`
	Empty     bool          `json:"empty"`
	ItemCount int           `json:"itemCount"`
}

func newCartView(order *models.Order) cartView {
	return cartView{Order: order, Empty: order.IsEmpty(), ItemCount: order.ItemCount()}
}

func (h *Handler) getCart(c *gin.Context) {
	state, err := h.screens.Cart.Load(c.Request.Context(), screens.None{})
	if err != nil || state.Err != nil {
		render(h, c, "cart", state, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(state.Data))
}

// addToCart adds one unit. A cart from another restaurant is only replaced
// when the caller already confirmed with ?replace=true; otherwise the
// answer is 409 carrying the prompt to show.
func (h *Handler) addToCart(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	confirm := cart.DeclineConfirm
	if c.Query("replace") == "true" {
		confirm = cart.AcceptConfirm
	}

	res, err := h.cart.AddRespectingSingleRestaurant(c.Request.Context(), productID, confirm)
	if err != nil {
		h.writeError(c, "Failed to add to cart", err)
		return
	}
	if res.Cancelled {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) setCartQuantity(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	current, err := h.api.Orders.Pending(ctx)
	if err != nil {
		h.writeError(c, "Failed to load cart", err)
		return
	}

	order, err := h.editor.SetQuantity(ctx, current, productID, *req.Quantity)
	if err != nil {
		h.writeError(c, "Failed to change quantity", err)
		return
	}
	c.JSON(http.StatusOK, newCartView(order))
}

func (h *Handler) removeFromCart(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	order, err := h.api.Products.RemoveFromOrder(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, "Failed to remove from cart", err)
		return
	}
	c.JSON(http.StatusOK, newCartView(order))
}

func (h *Handler) cancelCart(c *gin.Context) {
	if _, err := h.api.Orders.CancelPending(c.Request.Context()); err != nil {
		h.writeError(c, "Failed to clear cart", err)
		return
	}
	c.JSON(http.StatusOK, newCartView(nil))
}
