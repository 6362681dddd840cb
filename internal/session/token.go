package session

import (
	"errors"
	"fmt"
	"strings"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMalformedToken = errors.New("malformed session token")
	ErrNoSubject      = errors.New("session token has no subject")
)

// Decode derives the user from a bearer token. The signature is not checked:
// the backend verifies it on every call, the client only reads the claims.
//
// Roles come from the "roles" claim, or "authorities" when roles is absent.
// Unknown role names are dropped.
func Decode(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if subject == "" {
		return nil, ErrNoSubject
	}

	raw, ok := claims["roles"]
	if !ok || raw == nil {
		raw = claims["authorities"]
	}

	user := &models.User{Username: subject, Roles: []models.Role{}}
	seen := make(map[models.Role]bool)
	for _, name := range roleNames(raw) {
		role, err := models.ParseRole(name)
		if err != nil {
			util.GetLogger().Warn("Dropping unknown role claim",
				zap.String("username", subject),
				zap.String("role", name))
			continue
		}
		if !seen[role] {
			seen[role] = true
			user.Roles = append(user.Roles, role)
		}
	}
	return user, nil
}

// roleNames accepts a list of names, a list of {"authority": name} objects
// or a single comma separated string.
func roleNames(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				out = append(out, entry)
			case map[string]interface{}:
				if name, ok := entry["authority"].(string); ok {
					out = append(out, name)
				}
			}
		}
		return out
	}
	return nil
}
