package lifespan

import (
	"context"
	"fmt"
	"reflect"
)

// ── Provider types ────────────────────────────────────────────────────────────

// Teardown releases whatever a SetupFunc acquired. A nil Teardown means
// there is nothing to release.
type Teardown func(ctx context.Context) error

// SetupFunc acquires one resource value and returns it together with the
// Teardown that releases it. deps carries the values of the dependencies
// declared with Needs, nothing else. ctx is only valid until setup returns.
//
//	func OpenDB(ctx context.Context, deps lifespan.Deps) (*sql.DB, lifespan.Teardown, error) {
//	    db, err := sql.Open("sqlite", ":memory:")
//	    if err != nil {
//	        return nil, nil, err
//	    }
//	    return db, func(context.Context) error { return db.Close() }, nil
//	}
type SetupFunc[T any] func(ctx context.Context, deps Deps) (T, Teardown, error)

// Dependency is a statically declared dependency on another provider's
// published value. Accessor[T] is a Dependency that also checks the value's
// type; Named declares a dependency by name only.
type Dependency interface {
	DependencyName() string
	check(v any) error
}

type namedDependency string

// Named declares a dependency on the provider registered under name without
// constraining the type of its value.
func Named(name string) Dependency { return namedDependency(name) }

func (n namedDependency) DependencyName() string { return string(n) }
func (n namedDependency) check(any) error        { return nil }

// Values is a read-only name → value lookup. Both *State and Deps implement
// it.
type Values interface {
	Lookup(name string) (any, bool)
}

// Deps holds the resolved dependency values of a single provider.
type Deps struct {
	provider string
	values   map[string]any
}

// Provider returns the name of the provider these dependencies belong to.
func (d Deps) Provider() string { return d.provider }

// Lookup returns the value of a declared dependency.
func (d Deps) Lookup(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Len returns the number of resolved dependencies.
func (d Deps) Len() int { return len(d.values) }

// ── Registration ─────────────────────────────────────────────────────────────

// provider is the type-erased form of a registered SetupFunc.
type provider struct {
	name  string
	needs []Dependency
	setup func(ctx context.Context, deps Deps) (any, Teardown, error)
}

// ProviderOption configures a provider at registration time.
type ProviderOption func(*provider)

// Needs declares the providers whose values must be published before this
// provider is entered. Only earlier-registered providers can satisfy a
// dependency.
func Needs(deps ...Dependency) ProviderOption {
	return func(p *provider) {
		p.needs = append(p.needs, deps...)
	}
}

// Register adds a provider under name and returns the Accessor that reads
// its value at request time. Providers are entered in registration order and
// torn down in reverse.
//
//	db, err := lifespan.Register(ls, "db", OpenDB)
//	repo, err := lifespan.Register(ls, "repo", NewRepo, lifespan.Needs(db))
func Register[T any](l *Lifespan, name string, setup SetupFunc[T], opts ...ProviderOption) (Accessor[T], error) {
	if name == "" {
		return Accessor[T]{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidProvider)
	}
	if setup == nil {
		return Accessor[T]{}, fmt.Errorf("%w: provider %q has a nil setup function", ErrInvalidProvider, name)
	}

	p := &provider{
		name: name,
		setup: func(ctx context.Context, deps Deps) (any, Teardown, error) {
			return setup(ctx, deps)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	for i, dep := range p.needs {
		if dep == nil || dep.DependencyName() == "" {
			return Accessor[T]{}, fmt.Errorf("%w: provider %q has an empty dependency at position %d", ErrInvalidProvider, name, i)
		}
	}

	if err := l.add(p); err != nil {
		return Accessor[T]{}, err
	}
	return Accessor[T]{name: name}, nil
}

// MustRegister is like Register but panics on error. It suits package-level
// declarations:
//
//	var DB = lifespan.MustRegister(app.Lifespan, "db", OpenDB)
func MustRegister[T any](l *Lifespan, name string, setup SetupFunc[T], opts ...ProviderOption) Accessor[T] {
	acc, err := Register(l, name, setup, opts...)
	if err != nil {
		panic(err)
	}
	return acc
}

// ── Type helpers ─────────────────────────────────────────────────────────────

// cast converts a published value to T. A nil value converts to the zero T.
func cast[T any](v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return typed, fmt.Errorf("%w: have %T, want %s", ErrTypeMismatch, v, typeName[T]())
	}
	return typed, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
