package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"food-delivery-client/internal/progress"

	"github.com/go-redis/redis/v8"
)

const (
	tokenKey       = "food-delivery:token"
	progressPrefix = "orderStep:"
	progressTTL    = 24 * time.Hour
)

type Client struct {
	rdb *redis.Client
}

// NewClient connects and pings redis
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Ping checks the connection, used by the readiness probe
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// TokenStore keeps the session token under a fixed key.
type TokenStore struct {
	c *Client
}

func (c *Client) TokenStore() *TokenStore {
	return &TokenStore{c: c}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.c.rdb.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.c.rdb.Set(ctx, tokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.c.rdb.Del(ctx, tokenKey).Err()
}

// ProgressStore keeps tracking markers as orderStep:<id> with a TTL so
// finished orders expire on their own.
type ProgressStore struct {
	c   *Client
	ttl time.Duration
}

func (c *Client) ProgressStore() *ProgressStore {
	return &ProgressStore{c: c, ttl: progressTTL}
}

func progressKey(orderID int64) string {
	return progressPrefix + strconv.FormatInt(orderID, 10)
}

func (s *ProgressStore) Get(ctx context.Context, orderID int64) (progress.Marker, bool, error) {
	var m progress.Marker
	raw, err := s.c.rdb.Get(ctx, progressKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return m, false, nil
	}
	if err != nil {
		return m, false, fmt.Errorf("get progress marker: %w", err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, false, fmt.Errorf("decode progress marker: %w", err)
	}
	return m, true, nil
}

func (s *ProgressStore) Set(ctx context.Context, orderID int64, m progress.Marker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.c.rdb.Set(ctx, progressKey(orderID), raw, s.ttl).Err()
}
