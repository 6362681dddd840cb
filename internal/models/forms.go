package models

import "github.com/shopspring/decimal"

// ProductInput is the owner/admin product form.
type ProductInput struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" binding:"gte=0"`
	RestaurantID int64           `json:"restaurantId" binding:"required"`
	Category     string          `json:"category"`
	ImageURL     string          `json:"imageUrl"`
}

// RestaurantInput is the owner/admin restaurant form.
type RestaurantInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ReviewInput is the restaurant review form.
type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
}

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthorityName is the backend spelling of a role, e.g. "ROLE_ADMIN".
func (r Role) AuthorityName() string {
	return rolePrefix + string(r)
}
