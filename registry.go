package prerender

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/prerender/internal/config"
	"github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/root"
	"github.com/vango-dev/prerender/pkg/router"
	"github.com/vango-dev/prerender/pkg/store"
)

// Registry maps the names used in configuration to application code.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	roots      map[string]root.Renderer
	routes     map[string]router.RoutesFunc
	middleware map[string][]store.Middleware
	reducers   map[string]store.Reducer

	providers *root.ProviderRegistry
}

// NewRegistry creates a registry whose default root component renders the
// matched routes with its providers.
func NewRegistry() *Registry {
	r := &Registry{
		roots:      make(map[string]root.Renderer),
		routes:     make(map[string]router.RoutesFunc),
		middleware: make(map[string][]store.Middleware),
		reducers:   make(map[string]store.Reducer),
		providers:  root.NewProviderRegistry(),
	}
	r.roots[config.DefaultRoot] = root.NewAsyncConnect(r.providers, nil)
	return r
}

// RegisterRoot registers a root component renderer.
func (r *Registry) RegisterRoot(name string, renderer root.Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots[name] = renderer
}

// RegisterRoutes registers a route tree builder.
func (r *Registry) RegisterRoutes(name string, fn router.RoutesFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = fn
}

// RegisterMiddleware registers a per-request store middleware list.
func (r *Registry) RegisterMiddleware(name string, mws ...store.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware[name] = mws
}

// RegisterReducer registers a root reducer as is.
func (r *Registry) RegisterReducer(name string, reducer store.Reducer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[name] = reducer
}

// RegisterReducers registers slice reducers combined into a root reducer.
// The routing slice is added unless slices already define it.
func (r *Registry) RegisterReducers(name string, slices map[string]store.SliceReducer) {
	combined := make(map[string]store.SliceReducer, len(slices)+1)
	for k, v := range slices {
		combined[k] = v
	}
	if _, ok := combined[store.RoutingKey]; !ok {
		combined[store.RoutingKey] = store.RoutingReducer
	}
	r.RegisterReducer(name, store.CombineReducers(combined))
}

// RegisterProvider registers a provider wrapped around the root component.
func (r *Registry) RegisterProvider(name string, p root.Provider) {
	r.providers.Register(name, p)
}

// Providers returns the provider registry used by the default root.
func (r *Registry) Providers() *root.ProviderRegistry {
	return r.providers
}

// Root returns the named root renderer.
func (r *Registry) Root(name string) (root.Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.roots[name]; ok {
		return renderer, nil
	}
	return nil, unknown("root component", name, keys(r.roots))
}

// Routes returns the named route tree builder.
func (r *Registry) Routes(name string) (router.RoutesFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.routes[name]; ok {
		return fn, nil
	}
	return nil, unknown("routes", name, keys(r.routes))
}

// Middleware returns the named middleware list. An empty name is the empty
// list.
func (r *Registry) Middleware(name string) ([]store.Middleware, error) {
	if name == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if mws, ok := r.middleware[name]; ok {
		return append([]store.Middleware(nil), mws...), nil
	}
	return nil, unknown("middleware", name, keys(r.middleware))
}

// Reducer returns the named root reducer. An empty name selects the
// routing reducer alone.
func (r *Registry) Reducer(name string) (store.Reducer, error) {
	if name == "" {
		return store.CombineReducers(map[string]store.SliceReducer{
			store.RoutingKey: store.RoutingReducer,
		}), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reducer, ok := r.reducers[name]; ok {
		return reducer, nil
	}
	return nil, unknown("reducers", name, keys(r.reducers))
}

func unknown(kind, name string, known []string) error {
	return errors.New("E104").
		WithDetail(fmt.Sprintf("No %s named %q is registered (registered: %v).", kind, name, known))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
