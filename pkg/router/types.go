package router

import (
	"context"

	"github.com/vango-dev/prerender/pkg/store"
	"github.com/vango-dev/prerender/pkg/vdom"
)

// ComponentProps are handed to every component of a matched route chain.
type ComponentProps struct {
	Location store.Location
	Params   Params
	State    store.State
}

// Component renders one level of the route chain. children is the rendered
// child route, nil for the leaf.
type Component func(props ComponentProps, children *vdom.VNode) *vdom.VNode

// FetchFunc loads the data a route needs into the store before rendering.
type FetchFunc func(ctx context.Context, st *store.Store, params Params) error

// EnterState describes the navigation an OnEnter hook is asked about.
type EnterState struct {
	Location store.Location
	Params   Params
	Store    *store.Store
}

// OnEnterFunc runs before a route is entered. Calling replace redirects
// the request to the given path and query.
type OnEnterFunc func(ctx context.Context, next EnterState, replace func(to string)) error

// Route declares a node of the route tree.
type Route struct {
	// Path is relative to the parent unless it starts with "/".
	Path string

	Component Component
	Fetch     FetchFunc
	OnEnter   OnEnterFunc

	// Redirect, when set, makes the route a redirect to this target.
	// Parameters of the form ":name" are substituted.
	Redirect string

	// Index renders at the parent's own path.
	Index *Route

	Children []*Route
}

// Redirect declares a route redirecting from one path to another.
func Redirect(from, to string) *Route {
	return &Route{Path: from, Redirect: to}
}

// RoutesFunc builds the route tree for a store. It is called once per
// request so that hooks and fetches can close over that request's store.
type RoutesFunc func(st *store.Store) *Routes

// RenderProps are produced by a successful match.
type RenderProps struct {
	Location store.Location
	Params   Params

	// Routes is the matched chain, root first.
	Routes []*Route

	// Components are the non-nil components of Routes, root first.
	Components []Component
}

// Kind discriminates match results.
type Kind uint8

const (
	KindNotFound Kind = iota
	KindRedirect
	KindError
	KindMatched
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindRedirect:
		return "Redirect"
	case KindError:
		return "Error"
	case KindMatched:
		return "Matched"
	default:
		return "Unknown"
	}
}

// Result is the outcome of Match. Only the field belonging to Kind is set.
type Result struct {
	Kind     Kind
	Redirect store.Location
	Err      error
	Props    *RenderProps
}
