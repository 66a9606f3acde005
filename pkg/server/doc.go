// Package server implements the server-side rendering request handler.
//
// Each request gets its own store from a store.Factory. The request URL is
// matched against the route tree built for that store, and the outcome
// decides the response:
//
//	redirect       302, Location set to the target pathname and search
//	error          500, empty body, error logged
//	not found      404, "Not found"
//	rendered       200, assembled document
//	render failed  500, error payload
//	shell          200, shell document (SSR disabled)
//
// Every outcome and every pipeline stage is reported to an Observer.
package server
