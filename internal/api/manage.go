package api

import (
	"net/http"
	"strconv"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/screens"

	"github.com/gin-gonic/gin"
)

func (h *Handler) courierDashboard(c *gin.Context) {
	state, err := h.screens.Courier.Load(c.Request.Context(), screens.None{})
	render(h, c, "courier dashboard", state, err)
}

func (h *Handler) assignOrder(c *gin.Context) {
	id, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	order, err := h.api.Couriers.Assign(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to assign order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) completeOrder(c *gin.Context) {
	id, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	order, err := h.api.Couriers.Complete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to complete order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.api.Products.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	var in models.ProductInput
	if !bindProduct(c, &in) {
		return
	}
	product, err := h.api.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.ProductInput
	if !bindProduct(c, &in) {
		return
	}
	product, err := h.api.Products.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.api.Products.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "Failed to delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindProduct validates the form; a price is required and must not be
// negative, which binding tags cannot express for decimals
func bindProduct(c *gin.Context, in *models.ProductInput) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	if in.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return false
	}
	return true
}

func (h *Handler) listRestaurants(c *gin.Context) {
	restaurants, err := h.api.Restaurants.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to load restaurants", err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) createRestaurant(c *gin.Context) {
	var in models.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	restaurant, err := h.api.Restaurants.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "Failed to create restaurant", err)
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

func (h *Handler) updateRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.RestaurantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	restaurant, err := h.api.Restaurants.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, "Failed to update restaurant", err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

func (h *Handler) deleteRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.api.Restaurants.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "Failed to delete restaurant", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminDashboard(c *gin.Context) {
	state, err := h.screens.Admin.Load(c.Request.Context(), screens.None{})
	render(h, c, "admin dashboard", state, err)
}

func (h *Handler) adminUsers(c *gin.Context) {
	state, err := h.screens.AdminUsers.Load(c.Request.Context(), screens.None{})
	render(h, c, "users", state, err)
}

func (h *Handler) updateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role", "details": err.Error()})
		return
	}

	if err := h.api.Admin.UpdateUserRole(c.Request.Context(), c.Param("username"), role); err != nil {
		h.writeError(c, "Failed to update role", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.api.Admin.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		h.writeError(c, "Failed to delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminRestaurants(c *gin.Context) {
	state, err := h.screens.AdminRestaurants.Load(c.Request.Context(), screens.None{})
	render(h, c, "restaurants", state, err)
}

// adminProducts takes an optional ?restaurantId=
func (h *Handler) adminProducts(c *gin.Context) {
	var restaurantID int64
	if raw := c.Query("restaurantId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurantId"})
			return
		}
		restaurantID = id
	}
	state, err := h.screens.AdminProducts.Load(c.Request.Context(), restaurantID)
	render(h, c, "products", state, err)
}
