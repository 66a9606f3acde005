package store

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/prerender/internal/config"
	"github.com/vango-dev/prerender/internal/errors"
)

// FactoryOptions configures a Factory.
type FactoryOptions struct {
	// Flags select logger, devtools and history behavior.
	Flags config.Flags

	// Middleware is the base list every store gets, before per-call extras.
	Middleware []Middleware

	// Reducer is used when Create is called without one.
	Reducer Reducer

	// Persist stores devtools sessions. Defaults to a MemoryBackend.
	Persist Backend

	// MaxLoggedActions bounds the devtools action log.
	MaxLoggedActions int

	Logger *slog.Logger
}

// Factory creates isolated stores configured from the process flags.
type Factory struct {
	flags      config.Flags
	middleware []Middleware
	persist    Backend
	maxActions int
	logger     *slog.Logger

	reducer atomic.Pointer[Reducer]

	mu   sync.Mutex
	live map[*Store]struct{}
}

// NewFactory validates the base middleware list and creates a Factory.
func NewFactory(opts FactoryOptions) (*Factory, error) {
	if err := checkMiddleware(opts.Middleware); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Persist == nil {
		opts.Persist = NewMemoryBackend()
	}

	f := &Factory{
		flags:      opts.Flags,
		middleware: append([]Middleware(nil), opts.Middleware...),
		persist:    opts.Persist,
		maxActions: opts.MaxLoggedActions,
		logger:     opts.Logger,
		live:       make(map[*Store]struct{}),
	}
	if opts.Reducer != nil {
		f.SetReducer(opts.Reducer)
	}
	return f, nil
}

func checkMiddleware(mws []Middleware) error {
	for i, mw := range mws {
		if mw == nil {
			return errors.New("E105").
				WithDetail(fmt.Sprintf("Middleware at index %d is nil.", i))
		}
	}
	return nil
}

// Create builds a new store. The middleware chain is the factory base list
// followed by extra, plus the action logger when both Client and Logger
// flags are set. A nil reducer selects the factory's current reducer.
//
// Stores created in development are tracked until Release so that
// SetReducer can reach them.
func (f *Factory) Create(extra []Middleware, reducer Reducer, initial State) *Store {
	mws := make([]Middleware, 0, len(f.middleware)+len(extra)+1)
	mws = append(mws, f.middleware...)
	for _, mw := range extra {
		if mw != nil {
			mws = append(mws, mw)
		}
	}
	if f.flags.Client && f.flags.Logger {
		mws = append(mws, Logger(f.logger))
	}

	if reducer == nil {
		reducer = f.Reducer()
	}

	var enhancer Enhancer
	if f.flags.Development && f.flags.Client && f.flags.DevTools {
		loc, _ := LocationFromState(initial)
		enhancer = Compose(
			ApplyMiddleware(mws...),
			Instrument(f.maxActions),
			PersistState(DebugSessionKey(loc), f.persist, f.logger),
		)
	} else {
		enhancer = ApplyMiddleware(mws...)
	}

	st := New(reducer, initial, enhancer)

	if f.flags.Client {
		loc, _ := LocationFromState(initial)
		h := NewHistory(loc)
		SyncHistory(h, st)
		st.history = h
	}

	if f.flags.Development {
		f.mu.Lock()
		f.live[st] = struct{}{}
		f.mu.Unlock()
	}
	return st
}

// Release stops tracking a store created in development.
func (f *Factory) Release(st *Store) {
	f.mu.Lock()
	delete(f.live, st)
	f.mu.Unlock()
}

// Live returns the number of tracked stores.
func (f *Factory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

// Reducer returns the reducer used for stores created without one.
func (f *Factory) Reducer() Reducer {
	if r := f.reducer.Load(); r != nil {
		return *r
	}
	return nil
}

// SetReducer replaces the default reducer. In development the reducer of
// every tracked store is replaced in place, keeping its state.
func (f *Factory) SetReducer(reducer Reducer) {
	f.reducer.Store(&reducer)
	if !f.flags.Development {
		return
	}

	f.mu.Lock()
	stores := make([]*Store, 0, len(f.live))
	for st := range f.live {
		stores = append(stores, st)
	}
	f.mu.Unlock()

	for _, st := range stores {
		st.ReplaceReducer(reducer)
	}
	f.logger.Info("reducer replaced", "live_stores", len(stores))
}
