package apiclient

import (
	"context"
	"net/http"

	"food-delivery-client/internal/models"
)

type ProductService struct {
	c *Client
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := s.c.do(ctx, call{resource: "products", method: http.MethodGet, path: "/products"}, &out)
	return out, err
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := s.c.do(ctx, call{resource: "products", method: http.MethodGet, path: idPath("/products/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProductService) Details(ctx context.Context, id int64) (*models.ProductDetails, error) {
	var out models.ProductDetails
	if err := s.c.do(ctx, call{resource: "products", method: http.MethodGet, path: idPath("/products/details/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := s.c.do(ctx, call{resource: "products", method: http.MethodPost, path: "/products/add", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	var out models.Product
	if err := s.c.do(ctx, call{resource: "products", method: http.MethodPut, path: idPath("/products/edit/%d", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{resource: "products", method: http.MethodDelete, path: idPath("/products/delete/%d", id)}, nil)
}

// AddToOrder adds one unit of the product to the pending order, creating the
// order on first use. The returned order is nil when the backend sends no body.
func (s *ProductService) AddToOrder(ctx context.Context, id int64) (*models.Order, error) {
	body, err := s.c.raw(ctx, call{resource: "cart", method: http.MethodPost, path: idPath("/products/add-to-order/%d", id)})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrder(body)
}

// RemoveFromOrder removes one unit of the product from the pending order.
func (s *ProductService) RemoveFromOrder(ctx context.Context, id int64) (*models.Order, error) {
	body, err := s.c.raw(ctx, call{resource: "cart", method: http.MethodPost, path: idPath("/products/remove-from-order/%d", id)})
	if err != nil {
		return nil, err
	}
	return models.DecodeOrder(body)
}
