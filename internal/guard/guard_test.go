package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loggedIn(roles ...models.Role) session.Snapshot {
	return session.Snapshot{User: &models.User{Username: "ann", Roles: roles}, IsLoggedIn: true}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		required models.Role
		snap     session.Snapshot
		want     Decision
	}{
		{
			name:     "loading",
			required: models.RoleAdmin,
			snap:     session.Snapshot{IsLoading: true},
			want:     Decision{Outcome: Pending},
		},
		{
			name:     "no session",
			required: models.RoleCustomer,
			snap:     session.Snapshot{},
			want:     Decision{Outcome: RedirectLogin, Reason: ReasonUnauthenticated, From: "/admin/users"},
		},
		{
			name:     "customer asking for admin",
			required: models.RoleAdmin,
			snap:     loggedIn(models.RoleCustomer),
			want:     Decision{Outcome: RedirectLogin, Reason: ReasonInsufficientRole, From: "/admin/users"},
		},
		{
			name:     "admin",
			required: models.RoleAdmin,
			snap:     loggedIn(models.RoleCustomer, models.RoleAdmin),
			want:     Decision{Outcome: Allow},
		},
		{
			name:     "any logged in user",
			required: "",
			snap:     loggedIn(),
			want:     Decision{Outcome: Allow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.required, tt.snap, "/admin/users"))
		})
	}
}

func TestRedirectKeepsQuery(t *testing.T) {
	d := Decision{Outcome: RedirectLogin, From: "/orders/track/5?tab=map"}
	assert.Equal(t, "/login?from=%2Forders%2Ftrack%2F5%3Ftab%3Dmap", d.Redirect())
	assert.Equal(t, "/login", Decision{}.Redirect())
}

type fixedSessions session.Snapshot

func (f fixedSessions) Snapshot() session.Snapshot { return session.Snapshot(f) }

func serve(snap session.Snapshot, role models.Role, path string) *httptest.ResponseRecorder {
	router := gin.New()
	group := router.Group("/", RequireRole(fixedSessions(snap), role))
	group.GET("/admin/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c).Username})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRoleMiddleware(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		w := serve(session.Snapshot{IsLoading: true}, models.RoleAdmin, "/admin/users")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		w := serve(loggedIn(models.RoleCustomer), models.RoleAdmin, "/admin/users?page=2")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?from=%2Fadmin%2Fusers%3Fpage%3D2", w.Header().Get("Location"))
		assert.JSONEq(t, `{"redirect":"/login","from":"/admin/users?page=2","reason":"INSUFFICIENT_ROLE"}`, w.Body.String())
	})

	t.Run("no session", func(t *testing.T) {
		w := serve(session.Snapshot{}, models.RoleAdmin, "/admin/users")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	})

	t.Run("allowed", func(t *testing.T) {
		w := serve(loggedIn(models.RoleAdmin), models.RoleAdmin, "/admin/users")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"ann"}`, w.Body.String())
	})
}
