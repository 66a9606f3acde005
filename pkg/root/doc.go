// Package root renders the matched route chain into markup.
//
// The default renderer works like an async-connect root component: it
// runs every Fetch declared on the matched routes concurrently, then renders
// the component chain (each parent wrapping its child) inside the configured
// providers and serialises the result to HTML. The markup therefore reflects
// the store state after all fetches completed.
package root
