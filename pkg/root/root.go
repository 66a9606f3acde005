package root

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/render"
	"github.com/vango-dev/prerender/pkg/router"
	"github.com/vango-dev/prerender/pkg/store"
	"github.com/vango-dev/prerender/pkg/vdom"
)

// Markup is rendered HTML.
type Markup string

// Renderer produces the markup for a matched request.
type Renderer interface {
	RenderRoot(ctx context.Context, st *store.Store, props *router.RenderProps, providers []string) (Markup, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, st *store.Store, props *router.RenderProps, providers []string) (Markup, error)

// RenderRoot implements Renderer.
func (f RenderFunc) RenderRoot(ctx context.Context, st *store.Store, props *router.RenderProps, providers []string) (Markup, error) {
	return f(ctx, st, props, providers)
}

// AsyncConnect is the default Renderer.
type AsyncConnect struct {
	// Providers resolves the provider names from configuration. A nil
	// registry accepts no provider names.
	Providers *ProviderRegistry

	// HTML serialises the rendered tree. Defaults to a compact renderer.
	HTML *render.Renderer

	Logger *slog.Logger
}

// NewAsyncConnect creates the default renderer.
func NewAsyncConnect(providers *ProviderRegistry, logger *slog.Logger) *AsyncConnect {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncConnect{
		Providers: providers,
		HTML:      render.NewRenderer(render.RendererConfig{}),
		Logger:    logger,
	}
}

// RenderRoot implements Renderer. Fetch errors are E102, render faults
// E101 and unknown providers E103. Panics are converted to errors.
func (a *AsyncConnect) RenderRoot(ctx context.Context, st *store.Store, props *router.RenderProps, providers []string) (Markup, error) {
	if props == nil {
		return "", errors.New("E101").WithDetail("No render props were provided.")
	}

	wrappers, err := a.Providers.Lookup(providers)
	if err != nil {
		return "", err
	}

	if err := a.fetch(ctx, st, props); err != nil {
		return "", err
	}

	tree, err := a.compose(st, props, wrappers)
	if err != nil {
		return "", err
	}

	html := a.HTML
	if html == nil {
		html = render.NewRenderer(render.RendererConfig{})
	}
	out, err := html.RenderToString(tree)
	if err != nil {
		return "", errors.New("E101").Wrap(err)
	}
	return Markup(out), nil
}

// fetch runs the Fetch functions of the matched chain concurrently. The
// first failure cancels the others.
func (a *AsyncConnect) fetch(ctx context.Context, st *store.Store, props *router.RenderProps) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, route := range props.Routes {
		if route.Fetch == nil {
			continue
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.New("E102").
						WithDetail(fmt.Sprintf("Fetch for %q panicked: %v", route.Path, r)).
						WithStack(debug.Stack())
				}
			}()
			if err := route.Fetch(gctx, st, props.Params); err != nil {
				return errors.New("E102").
					WithDetail(fmt.Sprintf("Fetch for %q failed.", route.Path)).
					Wrap(err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// compose renders the component chain leaf first, each parent receiving
// its child, then wraps the result in the providers.
func (a *AsyncConnect) compose(st *store.Store, props *router.RenderProps, providers []Provider) (tree *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("E101").
				WithDetail(fmt.Sprintf("panic: %v", r)).
				WithStack(debug.Stack())
		}
	}()

	cp := router.ComponentProps{
		Location: props.Location,
		Params:   props.Params,
		State:    st.GetState(),
	}
	for i := len(props.Components) - 1; i >= 0; i-- {
		tree = props.Components[i](cp, tree)
	}
	for i := len(providers) - 1; i >= 0; i-- {
		tree = providers[i](st, tree)
	}
	return tree, nil
}
