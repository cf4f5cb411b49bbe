// Package providers holds stock lifespan providers for the resources most
// applications need: a database pool, a redis client and a metrics registry.
//
//	db := lifespan.MustRegister(app.Lifespan, "db", providers.Database(cfg.DB))
//	reg := lifespan.MustRegister(app.Lifespan, "metrics", providers.Metrics())
//	app.Router.Mount("/metrics", providers.MetricsHandler(reg))
package providers
