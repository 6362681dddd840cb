package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"food-delivery-client/internal/models"
)

type ReviewService struct {
	c *Client
}

func (s *ReviewService) List(ctx context.Context, restaurantID int64) ([]models.Review, error) {
	var out []models.Review
	err := s.c.do(ctx, call{resource: "reviews", method: http.MethodGet, path: idPath("/reviews/%d", restaurantID)}, &out)
	return out, err
}

// Add posts a review; rating and comment travel as query parameters.
func (s *ReviewService) Add(ctx context.Context, restaurantID int64, in models.ReviewInput) (*models.Review, error) {
	q := url.Values{}
	q.Set("rating", strconv.Itoa(in.Rating))
	if in.Comment != "" {
		q.Set("comment", in.Comment)
	}
	var out models.Review
	if err := s.c.do(ctx, call{resource: "reviews", method: http.MethodPost, path: idPath("/reviews/%d", restaurantID), query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
