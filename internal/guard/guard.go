// Package guard decides whether a screen may be shown to the current
// session.
package guard

import (
	"net/http"
	"net/url"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/session"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/login"

type Outcome string

const (
	// Pending means the session is still being restored; render nothing.
	Pending       Outcome = "PENDING"
	Allow         Outcome = "ALLOW"
	RedirectLogin Outcome = "REDIRECT_LOGIN"
)

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "UNAUTHENTICATED"
	ReasonInsufficientRole Reason = "INSUFFICIENT_ROLE"
)

// Decision is the guard's verdict. From holds the requested path for the
// post-login return.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
	From    string  `json:"from,omitempty"`
}

// Redirect is the login location carrying From.
func (d Decision) Redirect() string {
	if d.From == "" {
		return LoginPath
	}
	return LoginPath + "?from=" + url.QueryEscape(d.From)
}

// Decide checks snap against required. An empty required role only asks
// for a logged-in user. Users lacking the role go to login too, with
// ReasonInsufficientRole so the login screen can say why.
func Decide(required models.Role, snap session.Snapshot, requested string) Decision {
	if snap.IsLoading {
		return Decision{Outcome: Pending}
	}
	if snap.User == nil {
		return Decision{Outcome: RedirectLogin, Reason: ReasonUnauthenticated, From: requested}
	}
	if required != "" && !snap.User.HasRole(required) {
		return Decision{Outcome: RedirectLogin, Reason: ReasonInsufficientRole, From: requested}
	}
	return Decision{Outcome: Allow}
}

// Sessions is what the middleware reads.
type Sessions interface {
	Snapshot() session.Snapshot
}

// RequireRole guards the routes behind it. While the session loads it
// answers 204; a redirect answers 302 to the login screen with a JSON body.
func RequireRole(sessions Sessions, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := sessions.Snapshot()
		d := Decide(role, snap, c.Request.URL.RequestURI())

		switch d.Outcome {
		case Pending:
			c.AbortWithStatus(http.StatusNoContent)
		case RedirectLogin:
			c.Header("Location", d.Redirect())
			c.AbortWithStatusJSON(http.StatusFound, gin.H{
				"redirect": LoginPath,
				"from":     d.From,
				"reason":   d.Reason,
			})
		default:
			c.Set("user", snap.User)
			c.Next()
		}
	}
}

// CurrentUser returns the user RequireRole stored on the context.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
