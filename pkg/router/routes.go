package router

import (
	"fmt"
	"strings"

	"github.com/vango-dev/prerender/internal/errors"
)

// Routes is a compiled route tree.
type Routes struct {
	root *Route
	tree *node
}

// NewRoutes compiles a route tree. Two routes resolving to the same path,
// or sibling parameters with different names, are rejected.
func NewRoutes(root *Route) (*Routes, error) {
	r := &Routes{root: root, tree: newNode("")}
	if root == nil {
		return r, nil
	}
	if err := r.add(root, "/", nil); err != nil {
		return nil, errors.New("E100").
			WithDetail("The route tree is invalid.").
			Wrap(err)
	}
	return r, nil
}

// MustRoutes is like NewRoutes but panics on error.
func MustRoutes(root *Route) *Routes {
	r, err := NewRoutes(root)
	if err != nil {
		panic(err)
	}
	return r
}

// Root returns the route tree the Routes were compiled from.
func (r *Routes) Root() *Route {
	return r.root
}

func (r *Routes) add(route *Route, parent string, chain []*Route) error {
	full := joinPath(parent, route.Path)
	chain = append(chain[:len(chain):len(chain)], route)

	if route.Index != nil {
		if err := r.bind(full, full, append(chain[:len(chain):len(chain)], route.Index)); err != nil {
			return err
		}
	} else if route.Component != nil || route.Redirect != "" {
		if err := r.bind(full, parent, chain); err != nil {
			return err
		}
	}

	for _, child := range route.Children {
		if child == nil {
			continue
		}
		if err := r.add(child, full, chain); err != nil {
			return err
		}
	}
	return nil
}

func (r *Routes) bind(path, base string, chain []*Route) error {
	n, ok := r.tree.insert(path)
	if !ok {
		return fmt.Errorf("route %q: conflicting parameter name", path)
	}
	if n.chain != nil {
		return fmt.Errorf("route %q declared twice", path)
	}
	n.chain = chain
	n.base = base
	return nil
}

// joinPath resolves a route path against its parent path.
func joinPath(parent, path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	if path == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + path
}
