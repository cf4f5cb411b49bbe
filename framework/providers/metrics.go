package providers

import (
	"context"
	"net/http"

	gohttp "github.com/km-arc/go-lifespan/framework/http"
	"github.com/km-arc/go-lifespan/framework/lifespan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics creates a fresh prometheus registry per run with the Go runtime and
// process collectors registered. Nothing needs releasing on teardown.
func Metrics() lifespan.SetupFunc[*prometheus.Registry] {
	return func(context.Context, lifespan.Deps) (*prometheus.Registry, lifespan.Teardown, error) {
		reg := prometheus.NewRegistry()
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, nil, err
		}
		if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, nil, err
		}
		return reg, nil, nil
	}
}

// MetricsHandler serves the registry published by the metrics provider in
// the exposition format.
func MetricsHandler(registry lifespan.Accessor[*prometheus.Registry]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg, err := registry.FromRequest(r)
		if err != nil {
			gohttp.NewResponse(w).Fail(err)
			return
		}
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
