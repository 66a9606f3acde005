// Package store implements the per-request state container.
//
// A Store holds a State (one slice per reducer key), applies Actions through
// a Reducer and notifies subscribers after every change. Middleware
// intercepts dispatch and Enhancers wrap store creation:
//
//	st := store.New(store.CombineReducers(map[string]store.SliceReducer{
//	    "routing": store.RoutingReducer,
//	    "users":   usersReducer,
//	}), nil, store.ApplyMiddleware(myMiddleware))
//
// Factory builds stores configured from the process flags. Every request
// gets its own Store; stores are never shared between requests.
package store
