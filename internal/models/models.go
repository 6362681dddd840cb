package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Role is a coarse authorization tag carried in the session token.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleCourier  Role = "COURIER"
	RoleAdmin    Role = "ADMIN"
)

// rolePrefix is the authority prefix the backend puts on every role claim.
const rolePrefix = "ROLE_"

var knownRoles = map[Role]bool{
	RoleCustomer: true,
	RoleOwner:    true,
	RoleCourier:  true,
	RoleAdmin:    true,
}

// ParseRole normalizes a raw claim value ("ROLE_ADMIN", "admin") into a Role.
func ParseRole(raw string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, rolePrefix)
	role := Role(name)
	if !knownRoles[role] {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// User is the identity derived from a session token.
type User struct {
	Username string `json:"username"`
	Roles    []Role `json:"roles"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is the profile returned by /user/me and the admin user list.
type Account struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Address is a delivery address attached to an order.
type Address struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

var ErrIncompleteAddress = errors.New("address is incomplete")

// IsZero reports whether no address field is set.
func (a *Address) IsZero() bool {
	return a == nil || *a == Address{}
}

// Validate checks the fields the backend requires.
func (a *Address) Validate() error {
	if a == nil {
		return ErrIncompleteAddress
	}
	var missing []string
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	return nil
}

// Product is a catalog entry.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	RestaurantID int64           `json:"restaurantId" binding:"required"`
	Category     string          `json:"category,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
}

// ProductDetails is the product page payload.
type ProductDetails struct {
	Product
	RestaurantName string `json:"restaurantName,omitempty"`
	IsAvailable    bool   `json:"isAvailable"`
}

// Restaurant is a catalog entry.
type Restaurant struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description,omitempty"`
	Address              *Address        `json:"address,omitempty"`
	OpenHours            string          `json:"openHours,omitempty"`
	AverageRating        decimal.Decimal `json:"averageRating"`
	DeliveryTimeEstimate int             `json:"deliveryTimeEstimate,omitempty"`
	IsOpen               bool            `json:"isOpen"`
	ImageURL             string          `json:"imageUrl,omitempty"`
	Category             string          `json:"category,omitempty"`
}

// Review is a customer rating of a restaurant.
type Review struct {
	ID           int64      `json:"id"`
	RestaurantID int64      `json:"restaurantId"`
	Username     string     `json:"userUsername"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment,omitempty"`
	CreatedAt    *Timestamp `json:"createdAt,omitempty"`
}

// Courier is the delivery person assigned to an order.
type Courier struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

// Recommendation is a product suggested for the current time of day.
type Recommendation struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	RestaurantID int64           `json:"restaurantId,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Score        float64         `json:"score,omitempty"`
}

// PaymentStatus values as reported by the payment endpoints.
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "CREATED"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSucceeded  PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// Terminal reports whether the provider has finished with the payment.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed
}

// Payment is a payment intent for one order.
type Payment struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"orderId"`
	Provider         string          `json:"provider"`
	Status           PaymentStatus   `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency,omitempty"`
	ProviderIntentID string          `json:"providerIntentId,omitempty"`
	ClientSecret     string          `json:"clientSecret,omitempty"`
	CreatedAt        *Timestamp      `json:"createdAt,omitempty"`
	UpdatedAt        *Timestamp      `json:"updatedAt,omitempty"`
}
