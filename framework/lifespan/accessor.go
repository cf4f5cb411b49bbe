package lifespan

import (
	"context"
	"fmt"
	"net/http"
)

// Accessor reads one provider's value out of a live State. Reading is a
// plain map lookup; no resolution work happens at request time.
//
// An Accessor is also a Dependency: pass it to Needs to declare that another
// provider requires this one's value.
type Accessor[T any] struct {
	name string
}

// Name returns the provider name the accessor reads.
func (a Accessor[T]) Name() string { return a.name }

// DependencyName implements Dependency.
func (a Accessor[T]) DependencyName() string { return a.name }

func (a Accessor[T]) check(v any) error {
	_, err := cast[T](v)
	return err
}

// From looks the value up in values, which is typically a *State or the Deps
// handed to a SetupFunc.
func (a Accessor[T]) From(values Values) (T, error) {
	var zero T

	if values == nil {
		return zero, fmt.Errorf("%w: no state to read %q from", ErrMissingState, a.name)
	}
	if s, ok := values.(*State); ok {
		if s == nil {
			return zero, fmt.Errorf("%w: no state to read %q from", ErrMissingState, a.name)
		}
		if s.Closed() {
			return zero, fmt.Errorf("%w: %q read after shutdown", ErrMissingState, a.name)
		}
	}

	v, ok := values.Lookup(a.name)
	if !ok {
		return zero, fmt.Errorf("%w: %q is not published", ErrMissingState, a.name)
	}

	typed, err := cast[T](v)
	if err != nil {
		return zero, fmt.Errorf("provider %q: %w", a.name, err)
	}
	return typed, nil
}

// FromContext reads the value from the State carried by ctx.
func (a Accessor[T]) FromContext(ctx context.Context) (T, error) {
	s, ok := StateFromContext(ctx)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: context carries no lifespan state (reading %q)", ErrMissingState, a.name)
	}
	return a.From(s)
}

// FromRequest reads the value from the request's context.
//
//	db, err := DB.FromRequest(r)
func (a Accessor[T]) FromRequest(r *http.Request) (T, error) {
	return a.FromContext(r.Context())
}

// MustFromRequest is like FromRequest but panics on error. Under the router's
// Recoverer middleware the panic becomes a 500 response.
func (a Accessor[T]) MustFromRequest(r *http.Request) T {
	v, err := a.FromRequest(r)
	if err != nil {
		panic(err)
	}
	return v
}
