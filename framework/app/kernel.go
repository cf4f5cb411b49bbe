package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/km-arc/go-lifespan/framework/config"
	gohttp "github.com/km-arc/go-lifespan/framework/http"
	"github.com/km-arc/go-lifespan/framework/lifespan"
	"github.com/km-arc/go-lifespan/framework/logging"
	"github.com/km-arc/go-lifespan/framework/routing"
	"go.uber.org/zap"
)

// Application is the top-level application kernel. Providers are registered
// on Lifespan, routes on Router; Run ties them together around one
// http.Server.
type Application struct {
	Config   *config.Config
	Logger   *zap.Logger
	Router   *routing.Router
	Lifespan *lifespan.Lifespan
}

// New loads the configuration and builds the application.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	return NewWithConfig(cfg, logger), nil
}

// NewWithConfig builds the application from an already loaded configuration.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	a := &Application{
		Config: cfg,
		Logger: logger,
		Router: routing.New(logger),
		Lifespan: lifespan.New(
			lifespan.WithLogger(logger.Named("lifespan")),
			lifespan.WithStartupTimeout(cfg.Lifespan.StartupTimeout),
			lifespan.WithShutdownTimeout(cfg.Lifespan.ShutdownTimeout),
		),
	}
	a.Router.Get("/healthz", a.health)
	return a
}

// Handler returns the router with state attached to every request.
func (a *Application) Handler(state *lifespan.State) http.Handler {
	return state.Middleware(a.Router)
}

// Run starts every provider, serves HTTP on the configured port until ctx is
// done, drains the server and tears the providers down in reverse order.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Addr())
	if err != nil {
		return fmt.Errorf("app: listen on %s: %w", a.Config.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve is like Run on an existing listener. The listener is closed when
// Serve returns.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	if err := a.Lifespan.Validate(); err != nil {
		return err
	}

	return a.Lifespan.Run(ctx, func(ctx context.Context, state *lifespan.State) error {
		srv := &http.Server{
			Handler:           a.Handler(state),
			ReadHeaderTimeout: a.Config.Server.ReadHeaderTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			a.Logger.Info("serving", zap.String("addr", ln.Addr().String()))
			errCh <- srv.Serve(ln)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.Logger.Info("shutting down")
		shutdownCtx := context.WithoutCancel(ctx)
		if timeout := a.Config.Server.ShutdownTimeout; timeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, timeout)
			defer cancel()
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app: server shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// health reports the providers live in this run.
func (a *Application) health(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	state, ok := lifespan.StateFromContext(r.Context())
	if !ok || state.Closed() {
		res.Error(http.StatusServiceUnavailable, "not started")
		return
	}
	res.Success(map[string]any{"status": "ok", "providers": state.Names()})
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
