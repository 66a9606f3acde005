package prerender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/vango-dev/prerender/internal/errors"
	"github.com/vango-dev/prerender/pkg/root"
	"github.com/vango-dev/prerender/pkg/store"
)

func TestRegistryDefaultRoot(t *testing.T) {
	reg := NewRegistry()

	r, err := reg.Root("root")
	require.NoError(t, err)
	assert.IsType(t, &root.AsyncConnect{}, r)

	_, err = reg.Root("other")
	assert.Equal(t, "E104", perrors.Code(err))
}

func TestRegistryMiddleware(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterMiddleware("default", store.Thunk())

	mws, err := reg.Middleware("")
	require.NoError(t, err)
	assert.Empty(t, mws)

	mws, err = reg.Middleware("default")
	require.NoError(t, err)
	assert.Len(t, mws, 1)

	mws[0] = nil
	again, err := reg.Middleware("default")
	require.NoError(t, err)
	assert.NotNil(t, again[0], "callers must not be able to modify the registered list")

	_, err = reg.Middleware("missing")
	assert.Equal(t, "E104", perrors.Code(err))
}

func TestRegistryReducersAddRouting(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterReducers("app", map[string]store.SliceReducer{
		"count": func(state any, a store.Action) any {
			if state == nil {
				return 0
			}
			return state
		},
	})

	reducer, err := reg.Reducer("app")
	require.NoError(t, err)

	st := store.New(reducer, store.State{
		store.RoutingKey: store.RoutingState(store.Location{Pathname: "/x"}),
	}, nil)
	state := st.GetState()
	assert.Equal(t, 0, state["count"])

	loc, ok := store.LocationFromState(state)
	require.True(t, ok)
	assert.Equal(t, "/x", loc.Pathname)
}

func TestRegistryEmptyReducerName(t *testing.T) {
	reducer, err := NewRegistry().Reducer("")
	require.NoError(t, err)

	st := store.New(reducer, nil, nil)
	assert.Contains(t, st.GetState(), store.RoutingKey)
}

func TestRegistryUnknownListsRegistered(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterRoutes("b", nil)
	reg.RegisterRoutes("a", nil)

	_, err := reg.Routes("c")
	require.Error(t, err)

	var e *perrors.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Detail, `[a b]`)
}
