package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/km-arc/go-lifespan/framework/app"
	gohttp "github.com/km-arc/go-lifespan/framework/http"
	"github.com/km-arc/go-lifespan/framework/lifespan"
	"github.com/km-arc/go-lifespan/framework/providers"
	"github.com/km-arc/go-lifespan/framework/routing"
	"github.com/km-arc/go-lifespan/internal/notes"
	"go.uber.org/zap"
)

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer application.Logger.Sync() //nolint:errcheck

	cfg := application.Config
	ls := application.Lifespan
	r := application.Router

	// ── Providers (entered top to bottom, torn down bottom to top) ───────────

	registry := lifespan.MustRegister(ls, "metrics", providers.Metrics())
	db := lifespan.MustRegister(ls, "db", providers.Database(cfg.DB))
	repo := lifespan.MustRegister(ls, "notes", notes.Provide(db), lifespan.Needs(db))

	if cfg.Redis.Addr != "" {
		cache := lifespan.MustRegister(ls, "cache", providers.Redis(cfg.Redis))
		r.Post("/visits", visits(cache))
	}

	// ── Routes ───────────────────────────────────────────────────────────────

	r.Mount("/metrics", providers.MetricsHandler(registry))
	r.Prefix("/api/v1", func(api *routing.Router) {
		notes.Routes(api, repo)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Fatal("application stopped with error", zap.Error(err))
	}
}

// visits counts POSTs in redis and returns the running total.
func visits(cache lifespan.Accessor[*redis.Client]) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		client, err := cache.FromRequest(req)
		if err != nil {
			res.Fail(err)
			return
		}

		n, err := client.Incr(req.Context(), "visits").Result()
		if err != nil {
			res.Fail(err)
			return
		}
		res.Success(map[string]any{"visits": n})
	}
}
