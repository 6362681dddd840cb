// Package fetch holds per-screen data containers. A Resource issues its
// fetch on every Load and commits only the result of the newest one.
package fetch

import (
	"context"
	"errors"
	"sync"

	"food-delivery-client/internal/util"

	"go.uber.org/zap"
)

var (
	// ErrSuperseded is returned to a Load whose result was discarded
	// because a newer Load started before it finished.
	ErrSuperseded = errors.New("fetch superseded by a newer request")
	// ErrClosed is returned once the resource has been closed.
	ErrClosed = errors.New("fetch resource closed")
)

// Fetcher performs the actual calls for one parameter set.
type Fetcher[P comparable, T any] func(ctx context.Context, params P) (T, error)

// State is what a screen renders.
type State[P comparable, T any] struct {
	Params  P     `json:"-"`
	Data    T     `json:"data"`
	Loading bool  `json:"loading"`
	Err     error `json:"-"`
	Loaded  bool  `json:"loaded"`
}

// Resource tracks one screen's data. Every Load gets a generation number;
// only the newest generation may commit.
type Resource[P comparable, T any] struct {
	name  string
	fetch Fetcher[P, T]

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	closed    bool
	hasParams bool
	state     State[P, T]

	logger *zap.Logger
}

func NewResource[P comparable, T any](name string, fetch Fetcher[P, T]) *Resource[P, T] {
	return &Resource[P, T]{
		name:   name,
		fetch:  fetch,
		state:  State[P, T]{Loading: true},
		logger: util.GetLogger(),
	}
}

// Load fetches for params. The fetch error, if any, is captured in the
// returned state; the returned error is only ErrSuperseded or ErrClosed.
// A parameter change clears the previous data, a reload of the same
// parameters keeps it visible while loading.
func (r *Resource[P, T]) Load(ctx context.Context, params P) (State[P, T], error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return State[P, T]{}, ErrClosed
	}
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if !r.hasParams || r.state.Params != params {
		var zero T
		r.state.Data = zero
		r.state.Loaded = false
		r.state.Err = nil
	}
	r.state.Params = params
	r.state.Loading = true
	r.hasParams = true
	r.mu.Unlock()

	data, err := r.fetch(ctx, params)

	r.mu.Lock()
	defer r.mu.Unlock()
	cancel()

	if r.closed {
		return State[P, T]{}, ErrClosed
	}
	if gen != r.gen {
		util.StaleFetchDiscardedTotal.WithLabelValues(r.name).Inc()
		r.logger.Debug("Discarded stale fetch result",
			zap.String("resource", r.name),
			zap.Uint64("generation", gen),
			zap.Uint64("current", r.gen))
		return r.state, ErrSuperseded
	}

	r.cancel = nil
	r.state.Loading = false
	if err != nil {
		var zero T
		r.state.Data = zero
		r.state.Err = err
		r.state.Loaded = false
		r.logger.Debug("Fetch failed", zap.String("resource", r.name), zap.Error(err))
		return r.state, nil
	}
	r.state.Data = data
	r.state.Err = nil
	r.state.Loaded = true
	return r.state, nil
}

// Refresh reloads with the current parameters.
func (r *Resource[P, T]) Refresh(ctx context.Context) (State[P, T], error) {
	r.mu.Lock()
	params := r.state.Params
	r.mu.Unlock()
	return r.Load(ctx, params)
}

// Snapshot returns the committed state.
func (r *Resource[P, T]) Snapshot() State[P, T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close stops any in-flight load from committing, like an unmount.
func (r *Resource[P, T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Reset returns the resource to its initial state. A load in flight is
// treated as superseded.
func (r *Resource[P, T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.hasParams = false
	r.state = State[P, T]{Loading: true}
}
