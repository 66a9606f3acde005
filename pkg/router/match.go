package router

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/store"
)

// Match resolves rawURL against routes. The result has exactly one Kind.
// OnEnter hooks run root first and may redirect through replace; their
// errors and panics produce KindError.
func Match(ctx context.Context, routes *Routes, rawURL string, st *store.Store) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(errors.New("E100").
				WithDetail(fmt.Sprintf("panic: %v", r)).
				WithStack(debug.Stack()))
		}
	}()

	if err := ctx.Err(); err != nil {
		return errorResult(errors.New("E100").Wrap(err))
	}
	if routes == nil {
		return errorResult(errors.New("E100").WithDetail("No route tree was provided."))
	}

	loc, err := store.ParseLocation(rawURL)
	if err != nil {
		return errorResult(errors.New("E100").
			WithDetail(fmt.Sprintf("The URL %q could not be parsed.", rawURL)).
			Wrap(err))
	}

	segments, err := unescapeSegments(loc.Pathname)
	if err != nil {
		return errorResult(errors.New("E100").
			WithDetail(fmt.Sprintf("The path %q is not validly escaped.", loc.Pathname)).
			Wrap(err))
	}

	params := make(Params)
	n, ok := routes.tree.match(segments, params)
	if !ok {
		return Result{Kind: KindNotFound}
	}

	leaf := n.chain[len(n.chain)-1]
	if leaf.Redirect != "" {
		target, err := redirectTarget(joinPath(n.base, leaf.Redirect), params, loc)
		if err != nil {
			return errorResult(errors.New("E100").Wrap(err))
		}
		return Result{Kind: KindRedirect, Redirect: target}
	}

	for _, route := range n.chain {
		if route.OnEnter == nil {
			continue
		}

		var redirect *store.Location
		var replaceErr error
		replace := func(to string) {
			l, err := store.ParseLocation(to)
			if err != nil {
				replaceErr = err
				return
			}
			redirect = &l
		}

		if err := route.OnEnter(ctx, EnterState{Location: loc, Params: params, Store: st}, replace); err != nil {
			return errorResult(errors.New("E100").
				WithDetail(fmt.Sprintf("OnEnter hook of %q failed.", route.Path)).
				Wrap(err))
		}
		if replaceErr != nil {
			return errorResult(errors.New("E100").
				WithDetail("OnEnter hook replaced the location with an invalid URL.").
				Wrap(replaceErr))
		}
		if redirect != nil {
			return Result{Kind: KindRedirect, Redirect: *redirect}
		}
		if err := ctx.Err(); err != nil {
			return errorResult(errors.New("E100").Wrap(err))
		}
	}

	props := &RenderProps{
		Location: loc,
		Params:   params,
		Routes:   n.chain,
	}
	for _, route := range n.chain {
		if route.Component != nil {
			props.Components = append(props.Components, route.Component)
		}
	}
	return Result{Kind: KindMatched, Props: props}
}

func errorResult(err error) Result {
	return Result{Kind: KindError, Err: err}
}

func unescapeSegments(pathname string) ([]string, error) {
	segments := splitPath(pathname)
	for i, seg := range segments {
		u, err := url.PathUnescape(seg)
		if err != nil {
			return nil, err
		}
		segments[i] = u
	}
	return segments, nil
}

// redirectTarget substitutes parameters into target. The query of the
// original location is kept unless target carries its own.
func redirectTarget(target string, params Params, from store.Location) (store.Location, error) {
	path, query, hasQuery := strings.Cut(target, "?")

	segments := splitPath(path)
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, ":"):
			name, _ := parseParamSegment(seg)
			v, ok := params[name]
			if !ok {
				return store.Location{}, fmt.Errorf("redirect %q: unknown parameter %q", target, name)
			}
			segments[i] = url.PathEscape(v)
		case strings.HasPrefix(seg, "*"):
			v, ok := params[seg[1:]]
			if !ok {
				return store.Location{}, fmt.Errorf("redirect %q: unknown parameter %q", target, seg[1:])
			}
			segments[i] = v
		}
	}

	loc := store.Location{Pathname: "/" + strings.Join(segments, "/"), Search: from.Search}
	if hasQuery {
		loc.Search = ""
		if query != "" {
			loc.Search = "?" + query
		}
	}
	return loc, nil
}
