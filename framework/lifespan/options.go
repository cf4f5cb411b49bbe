package lifespan

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Lifespan.
type Option func(*Lifespan)

// WithLogger sets the logger used for provider enter and teardown events.
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lifespan) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStartupTimeout bounds the whole startup sequence. Zero means no bound
// beyond the context passed to Start.
func WithStartupTimeout(d time.Duration) Option {
	return func(l *Lifespan) {
		l.startupTimeout = d
	}
}

// WithShutdownTimeout bounds the whole teardown sequence. Zero means no
// bound beyond the context passed to Shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(l *Lifespan) {
		l.shutdownTimeout = d
	}
}

// Phase is the lifecycle phase of a Lifespan.
type Phase int

const (
	// PhaseReady accepts registrations; no run has happened yet.
	PhaseReady Phase = iota
	// PhaseRunning means a Session is active.
	PhaseRunning
	// PhaseStopped means the last Session shut down. Another run may start.
	PhaseStopped
)

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
