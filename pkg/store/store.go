package store

import (
	"errors"
	"sync"
)

// InitAction is dispatched to the reducer when a store is created so that
// reducers can fill in their defaults.
const InitAction = "@@prerender/INIT"

// ErrInvalidAction is returned when an action has no type.
var ErrInvalidAction = errors.New("store: action type must not be empty")

// State is the store contents, one entry per reducer key.
type State map[string]any

// Action describes a state change.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Reducer computes the next state. It must not modify state in place.
type Reducer func(state State, action Action) State

// Dispatch sends an action through the middleware chain to the reducer.
type Dispatch func(action Action) (Action, error)

// API is the view of a store handed to middleware.
type API interface {
	GetState() State
	Dispatch(action Action) (Action, error)
}

// Creator builds a store.
type Creator func(reducer Reducer, initial State) *Store

// Enhancer wraps a Creator.
type Enhancer func(next Creator) Creator

// Store is a mutable state container. It is safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	reducer      Reducer
	state        State
	listeners    map[uint64]func()
	nextListener uint64

	// dispatch is set during creation and never changes afterwards.
	dispatch Dispatch

	history *History
	actions *ActionLog
}

// New creates a store. The enhancer may be nil.
func New(reducer Reducer, initial State, enhancer Enhancer) *Store {
	if enhancer != nil {
		return enhancer(create)(reducer, initial)
	}
	return create(reducer, initial)
}

func create(reducer Reducer, initial State) *Store {
	if reducer == nil {
		reducer = identity
	}
	s := &Store{
		reducer:   reducer,
		state:     deepCopyState(initial),
		listeners: make(map[uint64]func()),
	}
	if s.state == nil {
		s.state = State{}
	}
	s.dispatch = s.reduce
	s.state = s.reducer(s.state, Action{Type: InitAction})
	return s
}

func identity(state State, _ Action) State { return state }

// reduce is the innermost dispatch.
func (s *Store) reduce(action Action) (Action, error) {
	if action.Type == "" {
		return action, ErrInvalidAction
	}

	s.mu.Lock()
	next := s.reducer(s.state, action)
	if next == nil {
		next = State{}
	}
	s.state = next
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return action, nil
}

// Dispatch sends an action through the middleware chain.
func (s *Store) Dispatch(action Action) (Action, error) {
	return s.dispatch(action)
}

// GetState returns a deep copy of the current state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopyState(s.state)
}

// Subscribe registers fn to be called after every dispatched action.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// ReplaceReducer swaps the reducer while keeping the current state.
func (s *Store) ReplaceReducer(reducer Reducer) {
	if reducer == nil {
		reducer = identity
	}
	s.mu.Lock()
	s.reducer = reducer
	s.mu.Unlock()
	_, _ = s.dispatch(Action{Type: InitAction})
}

// History returns the browser history synchronised with the store, or nil
// on the server.
func (s *Store) History() *History {
	return s.history
}

// ActionLog returns the devtools action log, or nil when devtools are off.
func (s *Store) ActionLog() *ActionLog {
	return s.actions
}

func deepCopyState(s State) State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = deepCopy(v)
	}
	return out
}

// deepCopy copies the JSON-like containers in v. Other values are shared.
func deepCopy(v any) any {
	switch t := v.(type) {
	case State:
		return deepCopyState(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	default:
		return v
	}
}
