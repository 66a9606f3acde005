package store

import (
	"log/slog"
	"reflect"
	"sort"
	"time"
)

// Middleware intercepts dispatch. Given the store API it returns a wrapper
// around the next dispatch in the chain.
type Middleware func(api API) func(next Dispatch) Dispatch

// ApplyMiddleware returns an Enhancer installing the middleware chain. The
// first middleware sees actions first.
func ApplyMiddleware(middleware ...Middleware) Enhancer {
	return func(next Creator) Creator {
		return func(reducer Reducer, initial State) *Store {
			st := next(reducer, initial)
			if len(middleware) == 0 {
				return st
			}

			dispatch := st.dispatch
			for i := len(middleware) - 1; i >= 0; i-- {
				dispatch = middleware[i](st)(dispatch)
			}
			st.dispatch = dispatch
			return st
		}
	}
}

// Compose combines enhancers so that Compose(a, b, c)(x) == a(b(c(x))).
func Compose(enhancers ...Enhancer) Enhancer {
	return func(next Creator) Creator {
		for i := len(enhancers) - 1; i >= 0; i-- {
			if enhancers[i] != nil {
				next = enhancers[i](next)
			}
		}
		return next
	}
}

// Logger returns middleware logging every action with its duration and the
// state keys it changed.
func Logger(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(api API) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(action Action) (Action, error) {
				prev := api.GetState()
				start := time.Now()
				result, err := next(action)
				if err != nil {
					logger.Warn("action failed", "type", action.Type, "error", err)
					return result, err
				}
				logger.Debug("action",
					"type", action.Type,
					"duration", time.Since(start),
					"changed", changedKeys(prev, api.GetState()))
				return result, nil
			}
		}
	}
}

// Thunk returns middleware running actions whose payload is a ThunkFunc
// instead of passing them to the reducer.
func Thunk() Middleware {
	return func(api API) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(action Action) (Action, error) {
				if fn, ok := action.Payload.(ThunkFunc); ok {
					return action, fn(api.Dispatch, api.GetState)
				}
				return next(action)
			}
		}
	}
}

// ThunkFunc is an action payload executed by the Thunk middleware.
type ThunkFunc func(dispatch Dispatch, getState func() State) error

func changedKeys(prev, next State) []string {
	var keys []string
	for k, v := range next {
		if old, ok := prev[k]; !ok || !reflect.DeepEqual(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
