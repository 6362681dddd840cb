package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"food-delivery-client/internal/models"
)

type RecommendationService struct {
	c *Client
}

func (s *RecommendationService) TimeBased(ctx context.Context) ([]models.Recommendation, error) {
	var out []models.Recommendation
	err := s.c.do(ctx, call{resource: "recommendations", method: http.MethodGet, path: "/recommendations/time-based"}, &out)
	return out, err
}

func (s *RecommendationService) ForHour(ctx context.Context, hour int) ([]models.Recommendation, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("hour out of range: %d", hour)
	}
	var out []models.Recommendation
	err := s.c.do(ctx, call{resource: "recommendations", method: http.MethodGet, path: fmt.Sprintf("/recommendations/time-based/%d", hour)}, &out)
	return out, err
}
