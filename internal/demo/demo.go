// Package demo is the small application served by `prerender serve`.
// It exercises fetches, typed parameters, redirects, OnEnter hooks,
// thunks and providers.
package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-dev/prerender"
	"github.com/vango-dev/prerender/pkg/router"
	"github.com/vango-dev/prerender/pkg/store"
	"github.com/vango-dev/prerender/pkg/vdom"
)

// Names under which the demo registers itself.
const (
	Routes     = "routes"
	Reducers   = "reducers"
	Middleware = "default"
	Layout     = "layout"
)

// User is a demo record.
type User struct {
	ID   int
	Name string
}

// Directory is the demo data source.
type Directory interface {
	Users(ctx context.Context) ([]User, error)
}

// StaticDirectory serves a fixed user list.
type StaticDirectory []User

func (d StaticDirectory) Users(context.Context) ([]User, error) {
	return d, nil
}

// DefaultUsers is the directory used by the CLI.
var DefaultUsers = StaticDirectory{
	{ID: 1, Name: "Ada"},
	{ID: 2, Name: "Grace"},
	{ID: 3, Name: "Barbara"},
}

// Register adds the demo routes, reducers, middleware and provider to reg.
func Register(reg *prerender.Registry, dir Directory, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	reg.RegisterRoutes(Routes, func(st *store.Store) *router.Routes {
		return routes(dir)
	})
	reg.RegisterReducers(Reducers, map[string]store.SliceReducer{
		"users": usersReducer,
	})
	reg.RegisterMiddleware(Middleware, store.Thunk(), store.Logger(logger))
	reg.RegisterProvider(Layout, func(st *store.Store, children *vdom.VNode) *vdom.VNode {
		return vdom.Fragment(
			vdom.Header(vdom.Nav(
				vdom.A(vdom.Href("/"), "Home"),
				" ",
				vdom.A(vdom.Href("/users"), "Users"),
			)),
			children,
		)
	})
}

const (
	usersLoaded = "users/LOADED"
)

func usersReducer(state any, action store.Action) any {
	if action.Type == usersLoaded {
		return action.Payload
	}
	if state == nil {
		return []any{}
	}
	return state
}

// loadUsers is a thunk that fetches the directory into the store.
func loadUsers(ctx context.Context, dir Directory) store.ThunkFunc {
	return func(dispatch store.Dispatch, getState func() store.State) error {
		users, err := dir.Users(ctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		list := make([]any, 0, len(users))
		for _, u := range users {
			list = append(list, map[string]any{"id": u.ID, "name": u.Name})
		}
		_, err = dispatch(store.Action{Type: usersLoaded, Payload: list})
		return err
	}
}

func fetchUsers(dir Directory) router.FetchFunc {
	return func(ctx context.Context, st *store.Store, _ router.Params) error {
		_, err := st.Dispatch(store.Action{Type: "users/LOAD", Payload: loadUsers(ctx, dir)})
		return err
	}
}

func routes(dir Directory) *router.Routes {
	return router.MustRoutes(&router.Route{
		Path:      "/",
		Component: app,
		Index:     &router.Route{Component: home},
		Children: []*router.Route{
			{
				Path:      "users",
				Fetch:     fetchUsers(dir),
				Component: userList,
				Children: []*router.Route{
					{
						Path:      ":id:int",
						OnEnter:   requireUser,
						Component: userDetail,
					},
				},
			},
			router.Redirect("people", "/users"),
			router.Redirect("people/:id", "/users/:id"),
		},
	})
}

// requireUser sends ids below 1 back to the list.
func requireUser(_ context.Context, next router.EnterState, replace func(string)) error {
	id, err := next.Params.Int("id")
	if err != nil {
		return err
	}
	if id < 1 {
		replace("/users")
	}
	return nil
}

func app(props router.ComponentProps, children *vdom.VNode) *vdom.VNode {
	return vdom.Div(vdom.ID("app"), children)
}

func home(router.ComponentProps, *vdom.VNode) *vdom.VNode {
	return vdom.Fragment(
		vdom.H1("prerender"),
		vdom.P("Server-rendered pages backed by a per-request store."),
	)
}

func users(state store.State) []map[string]any {
	list, _ := state["users"].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if u, ok := item.(map[string]any); ok {
			out = append(out, u)
		}
	}
	return out
}

func userList(props router.ComponentProps, children *vdom.VNode) *vdom.VNode {
	return vdom.Fragment(
		vdom.H2("Users"),
		vdom.Ul(vdom.Range(users(props.State), func(_ int, u map[string]any) *vdom.VNode {
			return vdom.Li(vdom.Key(fmt.Sprint(u["id"])),
				vdom.A(vdom.Href(fmt.Sprintf("/users/%v", u["id"])), fmt.Sprint(u["name"])),
			)
		})),
		children,
	)
}

func userDetail(props router.ComponentProps, _ *vdom.VNode) *vdom.VNode {
	var p struct {
		ID int `param:"id"`
	}
	if err := props.Params.Decode(&p); err != nil {
		return vdom.P("invalid user id")
	}
	for _, u := range users(props.State) {
		if fmt.Sprint(u["id"]) == fmt.Sprint(p.ID) {
			return vdom.Div(vdom.Class("user"), vdom.Textf("Selected: %v", u["name"]))
		}
	}
	return vdom.Div(vdom.Class("user", "missing"), vdom.Textf("No user %d", p.ID))
}
