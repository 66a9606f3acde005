package root

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/router"
	"github.com/vango-dev/prerender/pkg/store"
	"github.com/vango-dev/prerender/pkg/vdom"
)

func usersReducer() store.Reducer {
	return store.CombineReducers(map[string]store.SliceReducer{
		"users": func(state any, a store.Action) any {
			if a.Type == "users/loaded" {
				return a.Payload
			}
			if state == nil {
				return []any{}
			}
			return state
		},
		"title": func(state any, a store.Action) any {
			if a.Type == "title" {
				return a.Payload
			}
			if state == nil {
				return ""
			}
			return state
		},
	})
}

func layout(props router.ComponentProps, children *vdom.VNode) *vdom.VNode {
	title, _ := props.State["title"].(string)
	return vdom.Main(vdom.H1(title), children)
}

func userList(props router.ComponentProps, children *vdom.VNode) *vdom.VNode {
	users, _ := props.State["users"].([]any)
	return vdom.Ul(vdom.Range(users, func(i int, u any) *vdom.VNode {
		return vdom.Li(u.(string))
	}))
}

func match(t *testing.T, routes *router.Routes, url string, st *store.Store) *router.RenderProps {
	t.Helper()
	res := router.Match(context.Background(), routes, url, st)
	if res.Kind != router.KindMatched {
		t.Fatalf("Match(%q) kind = %v (err = %v)", url, res.Kind, res.Err)
	}
	return res.Props
}

func TestRenderRootRunsFetchesBeforeRender(t *testing.T) {
	var running, maxRunning int32
	slowFetch := func(action store.Action) router.FetchFunc {
		return func(ctx context.Context, st *store.Store, params router.Params) error {
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			_, err := st.Dispatch(action)
			return err
		}
	}

	routes := router.MustRoutes(&router.Route{
		Path:      "/",
		Component: layout,
		Fetch:     slowFetch(store.Action{Type: "title", Payload: "Team"}),
		Children: []*router.Route{{
			Path:      "users",
			Component: userList,
			Fetch:     slowFetch(store.Action{Type: "users/loaded", Payload: []any{"ann", "bob"}}),
		}},
	})

	st := store.New(usersReducer(), nil, nil)
	r := NewAsyncConnect(nil, nil)

	markup, err := r.RenderRoot(context.Background(), st, match(t, routes, "/users", st), nil)
	if err != nil {
		t.Fatalf("RenderRoot() error = %v", err)
	}

	want := "<main><h1>Team</h1><ul><li>ann</li><li>bob</li></ul></main>"
	if string(markup) != want {
		t.Errorf("markup = %q, want %q", markup, want)
	}
	if maxRunning != 2 {
		t.Errorf("fetches ran with max concurrency %d, want 2", maxRunning)
	}
}

func TestRenderRootFetchError(t *testing.T) {
	boom := errors.New("db down")
	routes := router.MustRoutes(&router.Route{
		Path:      "/",
		Component: layout,
		Fetch: func(context.Context, *store.Store, router.Params) error {
			return boom
		},
	})
	st := store.New(usersReducer(), nil, nil)

	_, err := NewAsyncConnect(nil, nil).RenderRoot(context.Background(), st, match(t, routes, "/", st), nil)
	if perrors.Code(err) != "E102" {
		t.Errorf("code = %q, want E102", perrors.Code(err))
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap cause, got %v", err)
	}
}

func TestRenderRootFetchPanic(t *testing.T) {
	routes := router.MustRoutes(&router.Route{
		Path:      "/",
		Component: layout,
		Fetch: func(context.Context, *store.Store, router.Params) error {
			panic("nil map")
		},
	})
	st := store.New(usersReducer(), nil, nil)

	_, err := NewAsyncConnect(nil, nil).RenderRoot(context.Background(), st, match(t, routes, "/", st), nil)
	if perrors.Code(err) != "E102" {
		t.Errorf("code = %q, want E102", perrors.Code(err))
	}
}

func TestRenderRootComponentPanic(t *testing.T) {
	routes := router.MustRoutes(&router.Route{
		Path: "/",
		Component: func(router.ComponentProps, *vdom.VNode) *vdom.VNode {
			panic("render failed")
		},
	})
	st := store.New(nil, nil, nil)

	_, err := NewAsyncConnect(nil, nil).RenderRoot(context.Background(), st, match(t, routes, "/", st), nil)
	if perrors.Code(err) != "E101" {
		t.Errorf("code = %q, want E101", perrors.Code(err))
	}
	if !strings.Contains(err.Error(), "render failed") {
		t.Errorf("error should carry the panic value, got %v", err)
	}
}

func TestRenderRootProviders(t *testing.T) {
	reg := NewProviderRegistry()
	reg.Register("outer", func(st *store.Store, children *vdom.VNode) *vdom.VNode {
		return vdom.Div(vdom.ID("outer"), children)
	})
	reg.Register("inner", func(st *store.Store, children *vdom.VNode) *vdom.VNode {
		return vdom.Div(vdom.ID("inner"), children)
	})

	routes := router.MustRoutes(&router.Route{
		Path: "/",
		Component: func(router.ComponentProps, *vdom.VNode) *vdom.VNode {
			return vdom.P("page")
		},
	})
	st := store.New(nil, nil, nil)
	r := NewAsyncConnect(reg, nil)

	markup, err := r.RenderRoot(context.Background(), st, match(t, routes, "/", st), []string{"outer", "inner"})
	if err != nil {
		t.Fatalf("RenderRoot() error = %v", err)
	}
	want := `<div id="outer"><div id="inner"><p>page</p></div></div>`
	if string(markup) != want {
		t.Errorf("markup = %q, want %q", markup, want)
	}

	_, err = r.RenderRoot(context.Background(), st, match(t, routes, "/", st), []string{"missing"})
	if perrors.Code(err) != "E103" {
		t.Errorf("unknown provider code = %q, want E103", perrors.Code(err))
	}
}

func TestRenderRootCanceled(t *testing.T) {
	routes := router.MustRoutes(&router.Route{Path: "/", Component: layout})
	st := store.New(usersReducer(), nil, nil)
	props := match(t, routes, "/", st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewAsyncConnect(nil, nil).RenderRoot(ctx, st, props, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRenderFunc(t *testing.T) {
	var r Renderer = RenderFunc(func(ctx context.Context, st *store.Store, props *router.RenderProps, providers []string) (Markup, error) {
		return Markup("<p>" + props.Location.Pathname + "</p>"), nil
	})
	got, err := r.RenderRoot(context.Background(), nil, &router.RenderProps{Location: store.Location{Pathname: "/x"}}, nil)
	if err != nil || got != "<p>/x</p>" {
		t.Errorf("RenderRoot() = %q, %v", got, err)
	}
}

func TestRenderRootNilProps(t *testing.T) {
	if _, err := NewAsyncConnect(nil, nil).RenderRoot(context.Background(), nil, nil, nil); perrors.Code(err) != "E101" {
		t.Errorf("code = %q, want E101", perrors.Code(err))
	}
}
