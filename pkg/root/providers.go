package root

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/store"
	"github.com/vango-dev/prerender/pkg/vdom"
)

// Provider wraps the rendered tree, typically to expose store data or
// document-level markup around the routes.
type Provider func(st *store.Store, children *vdom.VNode) *vdom.VNode

// ProviderRegistry maps configured provider names to implementations.
// It is safe for concurrent use.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider.
func (r *ProviderRegistry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Names returns the registered provider names, sorted.
func (r *ProviderRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves names in order, outermost first.
func (r *ProviderRegistry) Lookup(names []string) ([]Provider, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		var p Provider
		if r != nil {
			r.mu.RLock()
			p = r.providers[name]
			r.mu.RUnlock()
		}
		if p == nil {
			return nil, errors.New("E103").
				WithDetail(fmt.Sprintf("Provider %q is not registered. Known providers: %v.", name, r.Names()))
		}
		out = append(out, p)
	}
	return out, nil
}
