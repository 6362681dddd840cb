package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"food-delivery-client/internal/models"
)

var ErrNoToken = errors.New("login response carried no token")

type UserService struct {
	c *Client
}

func (s *UserService) Register(ctx context.Context, in models.RegisterRequest) (*models.Account, error) {
	var out models.Account
	if err := s.c.do(ctx, call{resource: "user", method: http.MethodPost, path: "/user/register", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a bearer token.
func (s *UserService) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := s.c.do(ctx, call{resource: "user", method: http.MethodPost, path: "/user/login", body: creds}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

func (s *UserService) Me(ctx context.Context) (*models.Account, error) {
	var out models.Account
	if err := s.c.do(ctx, call{resource: "user", method: http.MethodGet, path: "/user/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) ChangePassword(ctx context.Context, username, password string) error {
	body := map[string]string{"password": password}
	return s.c.do(ctx, call{resource: "user", method: http.MethodPut, path: "/user/" + url.PathEscape(username) + "/password", body: body}, nil)
}
