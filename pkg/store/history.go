package store

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// LocationChange is dispatched whenever the routing location changes.
const LocationChange = "@@router/LOCATION_CHANGE"

// RoutingKey is the state key owned by RoutingReducer.
const RoutingKey = "routing"

// Location is a path plus query string. Search includes the leading "?"
// when non-empty.
type Location struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search"`
}

// String returns the location as a URL reference.
func (l Location) String() string {
	return l.Pathname + l.Search
}

// ParseLocation splits a request path and query into a Location. The
// input is always read as a path: a leading "//" is kept, never taken as
// a host.
func ParseLocation(rawURL string) (Location, error) {
	rawURL, _, _ = strings.Cut(rawURL, "#")
	pathname, query, _ := strings.Cut(rawURL, "?")
	for i := 0; i < len(rawURL); i++ {
		if c := rawURL[i]; c < 0x20 || c == 0x7f {
			return Location{}, fmt.Errorf("location %q: invalid control character", rawURL)
		}
	}
	if _, err := url.PathUnescape(pathname); err != nil {
		return Location{}, err
	}

	loc := Location{Pathname: pathname}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if query != "" {
		loc.Search = "?" + query
	}
	return loc, nil
}

// Query returns the parsed query parameters.
func (l Location) Query() url.Values {
	v, _ := url.ParseQuery(trimQuestion(l.Search))
	return v
}

func trimQuestion(s string) string {
	if len(s) > 0 && s[0] == '?' {
		return s[1:]
	}
	return s
}

// RoutingReducer keeps the current location under RoutingKey.
func RoutingReducer(state any, action Action) any {
	if action.Type == LocationChange {
		if loc, ok := action.Payload.(Location); ok {
			return RoutingState(loc)
		}
	}
	if state == nil {
		return map[string]any{"location": nil}
	}
	return state
}

// RoutingState is the routing slice for loc, as stored under RoutingKey.
func RoutingState(loc Location) map[string]any {
	return map[string]any{
		"location": map[string]any{
			"pathname": loc.Pathname,
			"search":   loc.Search,
		},
	}
}

// LocationFromState reads the routing location out of a state snapshot.
func LocationFromState(state State) (Location, bool) {
	routing, ok := state[RoutingKey].(map[string]any)
	if !ok {
		return Location{}, false
	}
	loc, ok := routing["location"].(map[string]any)
	if !ok {
		return Location{}, false
	}
	pathname, _ := loc["pathname"].(string)
	search, _ := loc["search"].(string)
	return Location{Pathname: pathname, Search: search}, true
}

// History is an in-memory navigation stack. It is safe for concurrent use.
type History struct {
	mu        sync.Mutex
	entries   []Location
	index     int
	listeners map[uint64]func(Location)
	nextID    uint64
}

// NewHistory creates a history positioned at initial.
func NewHistory(initial Location) *History {
	if initial.Pathname == "" {
		initial.Pathname = "/"
	}
	return &History{
		entries:   []Location{initial},
		listeners: make(map[uint64]func(Location)),
	}
}

// Location returns the current entry.
func (h *History) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Push adds a new entry, dropping any forward entries.
func (h *History) Push(loc Location) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index = len(h.entries) - 1
	h.mu.Unlock()
	h.notify(loc)
}

// Replace overwrites the current entry.
func (h *History) Replace(loc Location) {
	h.mu.Lock()
	h.entries[h.index] = loc
	h.mu.Unlock()
	h.notify(loc)
}

// Back moves to the previous entry. It reports false at the start.
func (h *History) Back() bool {
	h.mu.Lock()
	if h.index == 0 {
		h.mu.Unlock()
		return false
	}
	h.index--
	loc := h.entries[h.index]
	h.mu.Unlock()
	h.notify(loc)
	return true
}

// Listen registers fn for location changes and returns a function removing it.
func (h *History) Listen(fn func(Location)) (unlisten func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *History) notify(loc Location) {
	h.mu.Lock()
	fns := make([]func(Location), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}

// SyncHistory keeps h and the routing state of st in step in both
// directions: history navigation dispatches LocationChange and a
// LocationChange dispatched to the store pushes onto the history. The
// store's routing location is initialised from the history.
func SyncHistory(h *History, st *Store) (unsync func()) {
	var mu sync.Mutex
	syncing := false

	guard := func(fn func()) {
		mu.Lock()
		if syncing {
			mu.Unlock()
			return
		}
		syncing = true
		mu.Unlock()

		fn()

		mu.Lock()
		syncing = false
		mu.Unlock()
	}

	unlisten := h.Listen(func(loc Location) {
		guard(func() {
			if cur, ok := LocationFromState(st.GetState()); ok && cur == loc {
				return
			}
			_, _ = st.Dispatch(Action{Type: LocationChange, Payload: loc})
		})
	})

	unsubscribe := st.Subscribe(func() {
		guard(func() {
			loc, ok := LocationFromState(st.GetState())
			if !ok || loc == h.Location() {
				return
			}
			h.Push(loc)
		})
	})

	if cur, ok := LocationFromState(st.GetState()); !ok || cur != h.Location() {
		guard(func() {
			_, _ = st.Dispatch(Action{Type: LocationChange, Payload: h.Location()})
		})
	}

	return func() {
		unlisten()
		unsubscribe()
	}
}
