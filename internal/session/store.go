package session

import (
	"context"
	"errors"
	"sync"

	"food-delivery-client/internal/models"
	"food-delivery-client/internal/util"

	"go.uber.org/zap"
)

var ErrNoSession = errors.New("no active session")

// Snapshot is the published session state.
type Snapshot struct {
	User       *models.User `json:"user"`
	IsLoggedIn bool         `json:"isLoggedIn"`
	IsLoading  bool         `json:"isLoading"`
}

// Events receives session lifecycle notifications.
type Events interface {
	PublishLogin(ctx context.Context, user *models.User)
	PublishLogout(ctx context.Context, username string)
}

// Store owns the single session of the process. It starts in the loading
// state until Restore runs.
type Store struct {
	mu      sync.RWMutex
	tokens  TokenStore
	token   string
	user    *models.User
	loading bool

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	events Events
	logger *zap.Logger
}

type StoreOption func(*Store)

// WithEvents publishes login and logout through ev.
func WithEvents(ev Events) StoreOption {
	return func(s *Store) {
		s.events = ev
	}
}

func NewStore(tokens TokenStore, opts ...StoreOption) *Store {
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}
	s := &Store{
		tokens:  tokens,
		loading: true,
		subs:    make(map[int]func(Snapshot)),
		logger:  util.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads a persisted token and decodes it the same way Login does.
// A missing, unreadable or malformed token leaves the session logged out.
func (s *Store) Restore(ctx context.Context) Snapshot {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load persisted token", zap.Error(err))
		token = ""
	}

	if token == "" {
		return s.set("", nil)
	}

	user, err := Decode(token)
	if err != nil {
		s.logger.Info("Discarding persisted token", zap.Error(err))
		util.SessionEventsTotal.WithLabelValues("invalid_token").Inc()
		if err := s.tokens.Clear(ctx); err != nil {
			s.logger.Warn("Failed to clear persisted token", zap.Error(err))
		}
		return s.set("", nil)
	}

	util.SessionEventsTotal.WithLabelValues("restore").Inc()
	s.logger.Info("Session restored", zap.String("username", user.Username))
	return s.set(token, user)
}

// Login installs token as the session. A token that does not decode ends
// any previous session, persisted token included.
func (s *Store) Login(ctx context.Context, token string) Snapshot {
	user, err := Decode(token)
	if err != nil {
		s.logger.Info("Rejected session token", zap.Error(err))
		util.SessionEventsTotal.WithLabelValues("invalid_token").Inc()
		return s.Logout(ctx)
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		s.logger.Warn("Failed to persist token, session kept in memory", zap.Error(err))
	}

	util.SessionEventsTotal.WithLabelValues("login").Inc()
	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.Any("roles", user.Roles))
	snap := s.set(token, user)
	if s.events != nil {
		s.events.PublishLogin(ctx, user)
	}
	return snap
}

// Logout clears the persisted token and the published state.
func (s *Store) Logout(ctx context.Context) Snapshot {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear persisted token", zap.Error(err))
	}

	s.mu.RLock()
	previous := s.user
	s.mu.RUnlock()

	snap := s.set("", nil)
	if previous != nil {
		util.SessionEventsTotal.WithLabelValues("logout").Inc()
		s.logger.Info("User logged out", zap.String("username", previous.Username))
		if s.events != nil {
			s.events.PublishLogout(ctx, previous.Username)
		}
	}
	return snap
}

func (s *Store) set(token string, user *models.User) Snapshot {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	var user *models.User
	if s.user != nil {
		copied := *s.user
		copied.Roles = append([]models.Role(nil), s.user.Roles...)
		user = &copied
	}
	return Snapshot{
		User:       user,
		IsLoggedIn: user != nil,
		IsLoading:  s.loading,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token returns the raw bearer token, or "" without a session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user or ErrNoSession.
func (s *Store) User() (*models.User, error) {
	snap := s.Snapshot()
	if snap.User == nil {
		return nil, ErrNoSession
	}
	return snap.User, nil
}

// Subscribe registers fn for every state change and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
