package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"food-delivery-client/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenSource yields the bearer token for the current session, or "".
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client is the shared HTTP client every resource wrapper goes through.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *zap.Logger

	Products        *ProductService
	Restaurants     *RestaurantService
	Orders          *OrderService
	Payments        *PaymentService
	Reviews         *ReviewService
	Couriers        *CourierService
	Admin           *AdminService
	Users           *UserService
	Recommendations *RecommendationService
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithTokenSource attaches the session's bearer token to every call.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithRateLimit caps outgoing calls per second; zero or less disables it.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// New creates a client for the API rooted at baseURL (e.g. http://host/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  util.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Products = &ProductService{c: c}
	c.Restaurants = &RestaurantService{c: c}
	c.Orders = &OrderService{c: c}
	c.Payments = &PaymentService{c: c}
	c.Reviews = &ReviewService{c: c}
	c.Couriers = &CourierService{c: c}
	c.Admin = &AdminService{c: c}
	c.Users = &UserService{c: c}
	c.Recommendations = &RecommendationService{c: c}
	return c
}

// call describes one backend operation.
type call struct {
	resource string
	method   string
	path     string
	query    url.Values
	body     interface{}
}

// raw performs the call and returns the response body of a 2xx answer.
func (c *Client) raw(ctx context.Context, rc call) (respBody []byte, err error) {
	ctx, span := util.StartSpan(ctx, "api."+rc.resource,
		attribute.String("http.method", rc.method),
		attribute.String("api.path", rc.path))
	defer func() { util.EndSpan(span, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	target := c.baseURL + rc.path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	var reqBody io.Reader
	if rc.body != nil {
		payload, err := json.Marshal(rc.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", rc.method, rc.path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", rc.method, rc.path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	util.APIRequestDuration.WithLabelValues(rc.resource).Observe(time.Since(start).Seconds())
	if err != nil {
		util.APIRequestsTotal.WithLabelValues(rc.resource, rc.method, "transport_error").Inc()
		c.logger.Warn("API call failed",
			zap.String("method", rc.method),
			zap.String("path", rc.path),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", rc.method, rc.path, err)
	}
	defer resp.Body.Close()

	util.APIRequestsTotal.WithLabelValues(rc.resource, rc.method, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", rc.method, rc.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     rc.method,
			Path:       rc.path,
			Body:       string(respBody),
			Message:    errorMessage(respBody),
		}
		c.logger.Debug("API call rejected",
			zap.String("method", rc.method),
			zap.String("path", rc.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	return respBody, nil
}

// do performs the call and decodes a JSON answer into out, when given.
func (c *Client) do(ctx context.Context, rc call, out interface{}) error {
	body, err := c.raw(ctx, rc)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", rc.method, rc.path, err)
	}
	return nil
}

// errorMessage pulls a readable message out of an error body: a JSON
// message/error/detail field, otherwise the trimmed text itself.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(trimmed, &fields); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
