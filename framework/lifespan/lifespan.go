package lifespan

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// ── Lifespan ──────────────────────────────────────────────────────────────────

// Lifespan is an ordered registry of resource providers.
//
// Start enters every provider in registration order, publishing each value
// into a fresh State; Session.Shutdown tears them down in exactly the reverse
// order. Only one Session can be active at a time, but a Lifespan can be run
// any number of times in succession.
type Lifespan struct {
	mu sync.Mutex

	providers []*provider
	index     map[string]int
	phase     Phase
	runs      int

	logger          *zap.Logger
	startupTimeout  time.Duration
	shutdownTimeout time.Duration
}

// New creates an empty Lifespan ready for registration.
func New(opts ...Option) *Lifespan {
	l := &Lifespan{
		index:  make(map[string]int),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// add appends p to the registry.
func (l *Lifespan) add(p *provider) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase == PhaseRunning {
		return fmt.Errorf("%w: cannot register %q", ErrRunning, p.name)
	}
	if _, exists := l.index[p.name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, p.name)
	}

	l.index[p.name] = len(l.providers)
	l.providers = append(l.providers, p)
	return nil
}

// Providers returns the registered provider names in registration order.
func (l *Lifespan) Providers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.providers))
	for i, p := range l.providers {
		names[i] = p.name
	}
	return names
}

// Phase returns the current lifecycle phase.
func (l *Lifespan) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Validate checks, without entering anything, that every declared
// dependency names a provider registered before its dependent. All problems
// are reported, each as a *DependencyError.
func (l *Lifespan) Validate() error {
	providers, index := l.snapshot()

	var result *multierror.Error
	for i, p := range providers {
		for _, dep := range p.needs {
			name := dep.DependencyName()
			if pos, ok := index[name]; ok && pos < i {
				continue
			}
			result = multierror.Append(result, &DependencyError{
				Provider:   p.name,
				Dependency: name,
				Reason:     unresolvedReason(index, i, name),
				Err:        ErrUnresolvedDependency,
			})
		}
	}
	return result.ErrorOrNil()
}

func (l *Lifespan) snapshot() ([]*provider, map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := make(map[string]int, len(l.index))
	for k, v := range l.index {
		index[k] = v
	}
	return slices.Clone(l.providers), index
}

func unresolvedReason(index map[string]int, self int, name string) string {
	pos, ok := index[name]
	switch {
	case !ok:
		return "is not registered"
	case pos == self:
		return "is the provider itself"
	default:
		return "is registered after it"
	}
}

// ── Startup ───────────────────────────────────────────────────────────────────

// Start enters every provider in registration order and returns the active
// Session. If any provider fails, the context is done, or the startup timeout
// expires, the providers entered so far are torn down in reverse order before
// Start returns the error.
func (l *Lifespan) Start(ctx context.Context) (*Session, error) {
	l.mu.Lock()
	if l.phase == PhaseRunning {
		l.mu.Unlock()
		return nil, ErrRunning
	}
	l.phase = PhaseRunning
	l.runs++
	run := l.runs
	l.mu.Unlock()

	providers, index := l.snapshot()

	if l.startupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.startupTimeout)
		defer cancel()
	}

	s := &Session{
		lifespan: l,
		run:      run,
		state:    newState(),
		index:    index,
		logger:   l.logger.With(zap.Int("run", run)),
	}
	s.active.Store(true)

	started := time.Now()
	for i, p := range providers {
		if err := ctx.Err(); err != nil {
			return nil, s.abort(ctx, fmt.Errorf("lifespan: startup interrupted before provider %q: %w", p.name, err))
		}
		if err := s.enter(ctx, i, p); err != nil {
			return nil, s.abort(ctx, err)
		}
	}

	s.logger.Info("lifespan started",
		zap.Int("providers", len(providers)),
		zap.Duration("took", time.Since(started)))
	return s, nil
}

// Run is the enter/yield/exit boundary of one application run: it starts the
// lifespan, calls fn with the populated State, and shuts down once fn
// returns, whatever the outcome. fn's ctx carries the State.
//
//	err := ls.Run(ctx, func(ctx context.Context, state *lifespan.State) error {
//	    return serve(ctx, state.Middleware(router))
//	})
func (l *Lifespan) Run(ctx context.Context, fn func(ctx context.Context, state *State) error) (err error) {
	s, err := l.Start(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if serr := s.Shutdown(context.WithoutCancel(ctx)); serr != nil {
			err = appendErr(err, serr)
		}
	}()

	return fn(WithState(ctx, s.state), s.state)
}

func (l *Lifespan) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phase = PhaseStopped
}

// ── Session ───────────────────────────────────────────────────────────────────

// scope is one successfully entered provider.
type scope struct {
	name     string
	teardown Teardown
}

// Session is one active run of a Lifespan.
type Session struct {
	lifespan *Lifespan
	run      int
	state    *State
	index    map[string]int
	scopes   []scope
	active   atomic.Bool
	logger   *zap.Logger
}

// State returns the state bag populated during startup.
func (s *Session) State() *State { return s.state }

// Run returns the 1-based sequence number of this run.
func (s *Session) Run() int { return s.run }

// Shutdown tears down every entered provider in reverse entry order. Every
// teardown is attempted even if earlier ones fail; the failures are returned
// together as *TeardownError values inside a *multierror.Error. The State is
// closed afterwards. A second call returns ErrNotRunning.
func (s *Session) Shutdown(ctx context.Context) error {
	if !s.active.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	defer s.lifespan.release()

	started := time.Now()
	err := s.unwind(ctx)

	s.logger.Info("lifespan stopped", zap.Duration("took", time.Since(started)), zap.Error(err))
	return err
}

// enter resolves p's dependencies, runs its setup and publishes the value.
func (s *Session) enter(ctx context.Context, pos int, p *provider) error {
	deps, err := s.resolve(pos, p)
	if err != nil {
		return err
	}

	s.logger.Debug("entering provider", zap.String("provider", p.name))
	started := time.Now()

	v, teardown, err := callSetup(ctx, p, deps)
	if err != nil {
		return &SetupError{Provider: p.name, Err: err}
	}

	s.state.publish(p.name, v)
	s.scopes = append(s.scopes, scope{name: p.name, teardown: teardown})

	s.logger.Info("provider ready",
		zap.String("provider", p.name),
		zap.Duration("took", time.Since(started)))
	return nil
}

// resolve collects the published values of p's declared dependencies.
func (s *Session) resolve(pos int, p *provider) (Deps, error) {
	deps := Deps{provider: p.name, values: make(map[string]any, len(p.needs))}

	for _, dep := range p.needs {
		name := dep.DependencyName()

		v, ok := s.state.values[name]
		if !ok {
			return Deps{}, &DependencyError{
				Provider:   p.name,
				Dependency: name,
				Reason:     unresolvedReason(s.index, pos, name),
				Err:        ErrUnresolvedDependency,
			}
		}
		if err := dep.check(v); err != nil {
			return Deps{}, &DependencyError{Provider: p.name, Dependency: name, Err: err}
		}
		deps.values[name] = v
	}
	return deps, nil
}

// abort unwinds a failed startup and combines cause with any teardown
// failures.
func (s *Session) abort(ctx context.Context, cause error) error {
	s.logger.Error("lifespan startup failed", zap.Error(cause))

	s.active.Store(false)
	defer s.lifespan.release()

	if err := s.unwind(context.WithoutCancel(ctx)); err != nil {
		return appendErr(cause, err)
	}
	return cause
}

// unwind pops and invokes every teardown in reverse order.
func (s *Session) unwind(ctx context.Context) error {
	if timeout := s.lifespan.shutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var result *multierror.Error
	for i := len(s.scopes) - 1; i >= 0; i-- {
		sc := s.scopes[i]
		if sc.teardown == nil {
			continue
		}

		s.logger.Debug("tearing down provider", zap.String("provider", sc.name))
		if err := callTeardown(ctx, sc.teardown); err != nil {
			s.logger.Error("provider teardown failed", zap.String("provider", sc.name), zap.Error(err))
			result = multierror.Append(result, &TeardownError{Provider: sc.name, Err: err})
		}
	}

	s.scopes = nil
	s.state.close()
	return result.ErrorOrNil()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// callSetup runs a setup function, turning a panic into an error.
func callSetup(ctx context.Context, p *provider, deps Deps) (v any, teardown Teardown, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, teardown, err = nil, nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.setup(ctx, deps)
}

// callTeardown runs a teardown function, turning a panic into an error.
func callTeardown(ctx context.Context, teardown Teardown) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return teardown(ctx)
}

func appendErr(err, more error) error {
	if err == nil {
		return more
	}
	return multierror.Append(err, more)
}
