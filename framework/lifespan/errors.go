package lifespan

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProvider is returned by Register for an empty name or a nil
	// setup function.
	ErrInvalidProvider = errors.New("lifespan: invalid provider")

	// ErrDuplicateName is returned by Register when a provider with the same
	// name is already registered.
	ErrDuplicateName = errors.New("lifespan: duplicate provider name")

	// ErrRunning is returned when Register or Start is called while a session
	// is active.
	ErrRunning = errors.New("lifespan: already running")

	// ErrNotRunning is returned by Session.Shutdown when the session has
	// already been shut down.
	ErrNotRunning = errors.New("lifespan: not running")

	// ErrUnresolvedDependency means a declared dependency has no published
	// value at the time its dependent is entered.
	ErrUnresolvedDependency = errors.New("lifespan: unresolved dependency")

	// ErrTypeMismatch means a published value does not have the type the
	// dependent or accessor expects.
	ErrTypeMismatch = errors.New("lifespan: type mismatch")

	// ErrMissingState is returned by accessors when no live state holds the
	// requested name: the lifespan has not started, has shut down, or the
	// name was never registered with it.
	ErrMissingState = errors.New("lifespan: missing state")
)

// DependencyError reports a dependency of Provider that could not be
// resolved during startup.
type DependencyError struct {
	Provider   string
	Dependency string
	Reason     string
	Err        error
}

func (e *DependencyError) Error() string {
	msg := fmt.Sprintf("provider %q: dependency %q", e.Provider, e.Dependency)
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	return msg + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

// SetupError wraps an error returned (or a panic raised) by a provider's
// setup function.
type SetupError struct {
	Provider string
	Err      error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("lifespan: setup of provider %q failed: %v", e.Provider, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// TeardownError wraps the failure of a single provider's teardown. Shutdown
// collects one TeardownError per failing provider.
type TeardownError struct {
	Provider string
	Err      error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("lifespan: teardown of provider %q failed: %v", e.Provider, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }
