package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"food-delivery-client/internal/models"
)

type AdminService struct {
	c *Client
}

func (s *AdminService) Users(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	err := s.c.do(ctx, call{resource: "admin", method: http.MethodGet, path: "/admin/users"}, &out)
	return out, err
}

// UpdateUserRole sends the backend authority name, e.g. ROLE_COURIER.
func (s *AdminService) UpdateUserRole(ctx context.Context, username string, role models.Role) error {
	body := map[string]string{"role": role.AuthorityName()}
	return s.c.do(ctx, call{resource: "admin", method: http.MethodPut, path: "/admin/users/" + url.PathEscape(username) + "/role", body: body}, nil)
}

func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	return s.c.do(ctx, call{resource: "admin", method: http.MethodDelete, path: "/admin/users/" + url.PathEscape(username)}, nil)
}

func (s *AdminService) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := s.c.do(ctx, call{resource: "admin", method: http.MethodGet, path: "/admin/restaurants"}, &out)
	return out, err
}

func (s *AdminService) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := s.c.do(ctx, call{resource: "admin", method: http.MethodGet, path: "/admin/products"}, &out)
	return out, err
}

func (s *AdminService) RestaurantProducts(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	var out []models.Product
	err := s.c.do(ctx, call{resource: "admin", method: http.MethodGet, path: idPath("/admin/restaurants/%d/products", restaurantID)}, &out)
	return out, err
}
