// Package middleware provides net/http middleware for the prerender server.
//
// This package includes:
//   - Prometheus request metrics, also usable as a server.Observer
//   - OpenTelemetry request tracing
//   - Request IDs and panic recovery
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithNamespace("myapp"))
//	h, _ := server.New(server.Options{Observer: m, ...})
//	mux.Handle("/", m.Handler(h))
//	mux.Handle("/metrics", promhttp.Handler())
//
// Metrics collected:
//   - prerender_requests_total: requests by method and status code
//   - prerender_request_duration_seconds: request duration by method
//   - prerender_requests_in_flight: requests currently being served
//   - prerender_outcomes_total: render outcomes (rendered, redirect, ...)
//   - prerender_stage_duration_seconds: pipeline stage durations
//
// # OpenTelemetry Middleware
//
// Tracing starts a server span per request. Pipeline stages started by the
// server handler become its children.
//
//	mux.Handle("/", middleware.Tracing(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	)(h))
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// passed with WithTracerProvider.
package middleware
