package lifespan

import (
	"context"
	"net/http"
	"sync/atomic"
)

// State is the state bag of one run: provider name → published value.
//
// It is written only while the lifespan starts up and is read-only once
// Start returns, so concurrent readers need no locking. After the session
// shuts down the State is closed and every lookup misses.
type State struct {
	names  []string
	values map[string]any
	closed atomic.Bool
}

func newState() *State {
	return &State{values: make(map[string]any)}
}

// publish stores the value of a successfully entered provider.
func (s *State) publish(name string, v any) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

func (s *State) close() { s.closed.Store(true) }

// Lookup returns the value published under name.
func (s *State) Lookup(name string) (any, bool) {
	if s == nil || s.closed.Load() {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns the published names in setup order.
func (s *State) Names() []string {
	if s == nil || s.closed.Load() {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of published values.
func (s *State) Len() int {
	if s == nil || s.closed.Load() {
		return 0
	}
	return len(s.names)
}

// Closed reports whether the session owning this State has shut down.
func (s *State) Closed() bool {
	return s != nil && s.closed.Load()
}

// ── Connection-scoped storage ────────────────────────────────────────────────

type stateKeyType int

var stateKey stateKeyType = 1

// WithState returns a copy of ctx carrying s.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

// StateFromContext returns the State carried by ctx.
func StateFromContext(ctx context.Context) (*State, bool) {
	s, ok := ctx.Value(stateKey).(*State)
	return s, ok && s != nil
}

// Middleware attaches s to the context of every request passing through.
func (s *State) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), s)))
	})
}
