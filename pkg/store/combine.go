package store

import "sort"

// SliceReducer reduces one top-level key of the state.
type SliceReducer func(state any, action Action) any

// CombineReducers builds a Reducer that delegates each state key to its
// SliceReducer. Keys without a reducer are dropped from the next state.
func CombineReducers(reducers map[string]SliceReducer) Reducer {
	keys := make([]string, 0, len(reducers))
	for k := range reducers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(state State, action Action) State {
		next := make(State, len(keys))
		for _, k := range keys {
			var prev any
			if state != nil {
				prev = state[k]
			}
			next[k] = reducers[k](prev, action)
		}
		return next
	}
}
