// Package prerender serves server-rendered pages for a route tree backed by
// a per-request state store.
//
// An application registers its root components, route builders, reducers,
// store middleware and providers in a Registry. The project configuration
// (prerender.json) names which of them to use:
//
//	reg := prerender.NewRegistry()
//	reg.RegisterRoutes("routes", routes.Build)
//	reg.RegisterReducers("reducers", reducers.All)
//
//	cfg, _ := config.Load(".")
//	flags, _ := config.LoadFlags()
//	app, err := prerender.New(ctx, prerender.Options{
//	    Config:   cfg,
//	    Flags:    flags,
//	    Registry: reg,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(app.Run(ctx))
//
// # Endpoints
//
//	/                     server-rendered pages (catch-all)
//	/healthz              liveness probe
//	/metrics              Prometheus metrics
//	/_prerender/reload    POST, development only: reload configuration
//	/_prerender/live      development only: live-reload websocket
//
// Static files under the configured prefix are served before pages.
package prerender
