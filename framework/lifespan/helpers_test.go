package lifespan_test

import (
	"context"
	"errors"
	"sync"

	"github.com/km-arc/go-lifespan/framework/lifespan"
)

var errBoom = errors.New("boom")

// recorder collects setup and teardown events in the order they happen.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// value returns a provider that publishes v and records its setup and
// teardown.
func value[T any](rec *recorder, name string, v T) lifespan.SetupFunc[T] {
	return func(context.Context, lifespan.Deps) (T, lifespan.Teardown, error) {
		rec.add("setup:" + name)
		return v, func(context.Context) error {
			rec.add("teardown:" + name)
			return nil
		}, nil
	}
}

// failingSetup returns a provider whose setup fails with err.
func failingSetup[T any](rec *recorder, name string, err error) lifespan.SetupFunc[T] {
	return func(context.Context, lifespan.Deps) (T, lifespan.Teardown, error) {
		rec.add("setup:" + name)
		var zero T
		return zero, func(context.Context) error {
			rec.add("teardown:" + name)
			return nil
		}, err
	}
}

// failingTeardown returns a provider whose teardown fails with err.
func failingTeardown[T any](rec *recorder, name string, v T, err error) lifespan.SetupFunc[T] {
	return func(context.Context, lifespan.Deps) (T, lifespan.Teardown, error) {
		rec.add("setup:" + name)
		return v, func(context.Context) error {
			rec.add("teardown:" + name)
			return err
		}, nil
	}
}
