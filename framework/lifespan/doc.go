// Package lifespan layers named, dependency-ordered startup and shutdown
// resources on top of the application run.
//
// # Overview
//
// A provider is a SetupFunc that acquires one value (a connection pool, a
// client handle, a metrics registry) and returns the Teardown that releases
// it. Providers are registered once, at program start, and entered in
// registration order every time the application runs. Their values are
// published into a State that request handlers read through the Accessor
// returned by Register.
//
// # Lifecycle
//
//  1. Create:   ls := lifespan.New(lifespan.WithLogger(logger))
//  2. Register: db := lifespan.MustRegister(ls, "db", OpenDB)
//  3. Run:      ls.Run(ctx, serve)   (or Start / Session.Shutdown)
//  4. Serve requests: db.FromRequest(r)
//  5. Shutdown: teardowns run in exactly the reverse order of setup
//
// # Dependencies
//
// Dependencies are declared statically. A provider may depend on any
// provider registered before it; its SetupFunc receives their values in
// Deps:
//
//	db := lifespan.MustRegister(ls, "db", OpenDB)
//	repo := lifespan.MustRegister(ls, "repo",
//	    func(ctx context.Context, deps lifespan.Deps) (*Repo, lifespan.Teardown, error) {
//	        conn, err := db.From(deps)
//	        if err != nil {
//	            return nil, nil, err
//	        }
//	        return NewRepo(conn), nil, nil
//	    },
//	    lifespan.Needs(db),
//	)
//
// A dependency on a provider registered later, or never registered, fails
// startup with a *DependencyError wrapping ErrUnresolvedDependency.
//
// # Failure
//
// If a provider's setup fails, every provider entered before it is torn
// down (in reverse) and no later provider is entered. Teardown failures
// never stop the remaining teardowns; they are aggregated.
//
// # Request time
//
// State.Middleware attaches the State to every request context. Accessors
// are pure lookups and return ErrMissingState when there is no live State
// or the name is not in it.
package lifespan
