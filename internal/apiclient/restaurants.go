package apiclient

import (
	"context"
	"net/http"

	"food-delivery-client/internal/models"
)

type RestaurantService struct {
	c *Client
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := s.c.do(ctx, call{resource: "restaurants", method: http.MethodGet, path: "/restaurants"}, &out)
	return out, err
}

func (s *RestaurantService) Get(ctx context.Context, id int64) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := s.c.do(ctx, call{resource: "restaurants", method: http.MethodGet, path: idPath("/restaurants/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RestaurantService) Create(ctx context.Context, in models.RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := s.c.do(ctx, call{resource: "restaurants", method: http.MethodPost, path: "/restaurants/add", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RestaurantService) Update(ctx context.Context, id int64, in models.RestaurantInput) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := s.c.do(ctx, call{resource: "restaurants", method: http.MethodPut, path: idPath("/restaurants/%d/edit", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, call{resource: "restaurants", method: http.MethodDelete, path: idPath("/restaurants/%d/delete", id)}, nil)
}
