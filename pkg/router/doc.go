// Package router resolves a request URL against a declared route tree.
//
// Routes nest: a child path is relative to its parent unless it starts with
// "/". Segments may be static, a parameter (":id", optionally typed as
// ":id:int" or ":id:uuid") or a catch-all ("*rest"):
//
//	routes := router.MustRoutes(&router.Route{
//	    Path:      "/",
//	    Component: App,
//	    Index:     &router.Route{Component: Home},
//	    Children: []*router.Route{
//	        {Path: "users/:id:int", Component: User, Fetch: loadUser},
//	        router.Redirect("people/:id", "/users/:id"),
//	    },
//	})
//
// Match returns a Result of exactly one Kind: a redirect, an error, a
// matched route chain ready to render, or not found. Faults raised while
// matching, including panics in OnEnter hooks, become KindError results.
package router
