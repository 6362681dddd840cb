package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"food-delivery-client/internal/apiclient"
	"food-delivery-client/internal/cart"
	"food-delivery-client/internal/checkout"
	"food-delivery-client/internal/screens"
	"food-delivery-client/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	status int
	body   string
}

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

type callLog struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *callLog) add(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
}

func (l *callLog) count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key]
}

func (l *callLog) keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.counts))
	for key := range l.counts {
		out = append(out, key)
	}
	return out
}

type testServer struct {
	router   *gin.Engine
	sessions *session.Store
	calls    *callLog
}

// newTestServer wires the handler against a fake backend answering from
// routes, keyed by "METHOD /path".
func newTestServer(t *testing.T, token string, routes map[string]reply) *testServer {
	t.Helper()
	calls := &callLog{counts: make(map[string]int)}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		calls.add(key)
		rep, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		if rep.status == 0 {
			rep.status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = io.WriteString(w, rep.body)
	}))
	t.Cleanup(backend.Close)

	sessions := session.NewStore(session.NewMemoryTokenStore(token))
	client := apiclient.New(backend.URL, apiclient.WithTokenSource(sessions))
	cartBackend := cart.NewAPIBackend(client)

	h := NewHandler(Deps{
		API:      client,
		Sessions: sessions,
		Auth:     session.NewAuthenticator(client.Users, sessions),
		Screens:  screens.New(client, nil),
		Cart:     cart.NewHelper(cartBackend),
		Editor:   cart.NewEditor(cartBackend, nil),
		Checkout: checkout.NewFlow(checkout.NewAPIBackend(client)),
	})
	router := gin.New()
	h.SetupRoutes(router)

	return &testServer{router: router, sessions: sessions, calls: calls}
}

func (s *testServer) restore(t *testing.T) {
	t.Helper()
	s.sessions.Restore(context.Background())
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, "", nil)

	w := s.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestReadinessWaitsForSessionRestore(t *testing.T) {
	s := newTestServer(t, "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/ready", "").Code)

	s.restore(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", "").Code)
}

func TestGuardedRouteRendersNothingWhileRestoring(t *testing.T) {
	s := newTestServer(t, "", nil)

	w := s.do(http.MethodGet, "/cart", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, s.calls.count("GET /orders/cart"))
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	s := newTestServer(t, "", nil)
	s.restore(t)

	w := s.do(http.MethodGet, "/cart", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?from=%2Fcart", w.Header().Get("Location"))
	assert.Equal(t, "UNAUTHENTICATED", decodeBody(t, w)["reason"])
}

func TestGuardRejectsWrongRole(t *testing.T) {
	s := newTestServer(t, signToken(t, "carl", "ROLE_COURIER"), nil)
	s.restore(t)

	w := s.do(http.MethodGet, "/cart", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", decodeBody(t, w)["reason"])
}

func TestLoginThenCart(t *testing.T) {
	token := signToken(t, "ann", "ROLE_CUSTOMER")
	s := newTestServer(t, "", map[string]reply{
		"POST /user/login": {body: `{"token":"` + token + `"}`},
		"GET /orders/cart": {body: `{"id":3,"status":"PENDING","orderItems":[{"productId":1,"productName":"Soup","quantity":2,"unitPriceSnapshot":4}]}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/login?from=/cart", `{"username":"ann","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "/cart", body["redirect"])
	assert.Equal(t, token, s.sessions.Token())

	w = s.do(http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(2), body["itemCount"])
	assert.Equal(t, false, body["empty"])
}

func TestLoginIgnoresOffsiteRedirect(t *testing.T) {
	token := signToken(t, "ann", "ROLE_CUSTOMER")
	s := newTestServer(t, "", map[string]reply{
		"POST /user/login": {body: `{"token":"` + token + `"}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/login?from=https://evil.example", `{"username":"ann","password":"secret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", decodeBody(t, w)["redirect"])
}

func TestLoginWithUnusableToken(t *testing.T) {
	s := newTestServer(t, "", map[string]reply{
		"POST /user/login": {body: `{"token":"not-a-jwt"}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/login", `{"username":"ann","password":"secret"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, s.sessions.Snapshot().IsLoggedIn)
	assert.Empty(t, s.sessions.Token())
}

func TestLoginPassesBackendRejection(t *testing.T) {
	s := newTestServer(t, "", map[string]reply{
		"POST /user/login": {status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/login", `{"username":"ann","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bad credentials", decodeBody(t, w)["details"])
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), nil)
	s.restore(t)
	require.True(t, s.sessions.Snapshot().IsLoggedIn)

	w := s.do(http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, s.sessions.Snapshot().IsLoggedIn)
	assert.Equal(t, http.StatusFound, s.do(http.MethodGet, "/cart", "").Code)
}

func TestAddToCartConflictAsksForConfirmation(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), map[string]reply{
		"POST /products/add-to-order/7": {status: http.StatusBadRequest, body: `{"message":"` + cart.ConflictText + `"}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/cart/items/7", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["cancelled"])
	assert.Equal(t, cart.ReplacePrompt, body["prompt"])
	assert.Zero(t, s.calls.count("PUT /orders/pending/cancel"))
}

func TestAddToCartPassesOtherErrors(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), map[string]reply{
		"POST /products/add-to-order/7": {status: http.StatusBadRequest, body: `{"message":"Product is out of stock"}`},
	})
	s.restore(t)

	w := s.do(http.MethodPost, "/cart/items/7", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product is out of stock", decodeBody(t, w)["details"])
}

func TestSetCartQuantityRejectsMissingQuantity(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), nil)
	s.restore(t)

	w := s.do(http.MethodPut, "/cart/items/1", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutWithoutPendingOrder(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), map[string]reply{
		"GET /orders/cart": {body: ``},
	})
	s.restore(t)

	w := s.do(http.MethodGet, "/checkout", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	view := decodeBody(t, w)["checkout"].(map[string]interface{})
	assert.Equal(t, "NO_PENDING_ORDER", view["state"])
	assert.Equal(t, "No pending order to pay.", view["message"])
}

func TestCheckoutAsksForAddressFirst(t *testing.T) {
	s := newTestServer(t, signToken(t, "ann", "ROLE_CUSTOMER"), map[string]reply{
		"GET /orders/cart": {body: `{"id":3,"status":"PENDING","orderItems":[{"productId":1,"quantity":1,"unitPriceSnapshot":4}]}`},
	})
	s.restore(t)

	w := s.do(http.MethodGet, "/checkout", "")

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody(t, w)["checkout"].(map[string]interface{})
	assert.Equal(t, "AWAITING_ADDRESS", view["state"])
	for _, key := range s.calls.keys() {
		assert.NotContains(t, key, "/payments", "no intent before an address")
	}
}

func TestRestaurantNotFoundKeepsBackendStatus(t *testing.T) {
	s := newTestServer(t, "", nil)
	s.restore(t)

	w := s.do(http.MethodGet, "/restaurants/9", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Failed to load restaurant", decodeBody(t, w)["error"])
}

func TestInvalidParams(t *testing.T) {
	s := newTestServer(t, "", nil)
	s.restore(t)

	tests := []struct {
		name   string
		target string
	}{
		{"non numeric id", "/restaurants/abc"},
		{"zero id", "/products/0"},
		{"hour out of range", "/recommendations?hour=24"},
		{"hour not a number", "/recommendations?hour=noon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAdminUpdateRoleValidatesRole(t *testing.T) {
	s := newTestServer(t, signToken(t, "root", "ROLE_ADMIN"), map[string]reply{
		"PUT /admin/users/bob/role": {status: http.StatusOK},
	})
	s.restore(t)

	w := s.do(http.MethodPut, "/admin/users/bob/role", `{"role":"emperor"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.calls.count("PUT /admin/users/bob/role"))

	w = s.do(http.MethodPut, "/admin/users/bob/role", `{"role":"courier"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, s.calls.count("PUT /admin/users/bob/role"))
}

func TestOwnerProductRejectsNegativePrice(t *testing.T) {
	s := newTestServer(t, signToken(t, "olga", "ROLE_OWNER"), nil)
	s.restore(t)

	w := s.do(http.MethodPost, "/owner/products", `{"name":"Soup","price":"-1","restaurantId":2}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.calls.count("POST /products/add"))
}

func TestCheckoutDoesNotOutliveSession(t *testing.T) {
	bob := signToken(t, "bob", "ROLE_CUSTOMER")
	s := newTestServer(t, signToken(t, "alice", "ROLE_CUSTOMER"), map[string]reply{
		"GET /orders/cart":                  {body: `{"id":42,"status":"PENDING","orderItems":[{"productId":1,"quantity":1,"unitPriceSnapshot":4}],"deliveryAddress":{"line1":"1 Main St","city":"Skopje","postalCode":"1000","country":"MK"}}`},
		"POST /payments/42/intent":          {body: `{"id":7,"orderId":42,"status":"CREATED"}`},
		"POST /payments/7/simulate-success": {body: `{"id":7,"orderId":42,"status":"SUCCEEDED"}`},
		"PUT /orders/pending/confirm":       {body: `{"id":42,"status":"CONFIRMED"}`},
		"POST /user/login":                  {body: `{"token":"` + bob + `"}`},
	})
	s.restore(t)

	w := s.do(http.MethodGet, "/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody(t, w)["checkout"].(map[string]interface{})
	require.Equal(t, "AWAITING_PAYMENT_RESULT", view["state"])

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/logout", "").Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/login", `{"username":"bob","password":"secret"}`).Code)

	w = s.do(http.MethodPost, "/checkout/simulate-success", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	view = decodeBody(t, w)["checkout"].(map[string]interface{})
	assert.Equal(t, "NO_PENDING_ORDER", view["state"])
	assert.Nil(t, view["payment"])
	assert.Zero(t, s.calls.count("POST /payments/7/simulate-success"))
	assert.Zero(t, s.calls.count("PUT /orders/pending/confirm"))
}
