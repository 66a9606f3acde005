package store

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func recordingMiddleware(name string, trace *[]string) Middleware {
	return func(api API) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(a Action) (Action, error) {
				*trace = append(*trace, name+">"+a.Type)
				res, err := next(a)
				*trace = append(*trace, name+"<"+a.Type)
				return res, err
			}
		}
	}
}

func TestApplyMiddlewareOrder(t *testing.T) {
	var trace []string
	st := New(testReducer(), nil, ApplyMiddleware(
		recordingMiddleware("a", &trace),
		recordingMiddleware("b", &trace),
	))

	st.Dispatch(Action{Type: "inc"})

	want := []string{"a>inc", "b>inc", "b<inc", "a<inc"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestMiddlewareCanShortCircuit(t *testing.T) {
	blocked := errors.New("blocked")
	deny := func(api API) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(a Action) (Action, error) {
				if a.Type == "inc" {
					return a, blocked
				}
				return next(a)
			}
		}
	}
	st := New(testReducer(), nil, ApplyMiddleware(deny))

	if _, err := st.Dispatch(Action{Type: "inc"}); !errors.Is(err, blocked) {
		t.Errorf("error = %v, want blocked", err)
	}
	if st.GetState()["count"] != 0 {
		t.Error("blocked action reached the reducer")
	}
}

func TestComposeOrder(t *testing.T) {
	var order []string
	tag := func(name string) Enhancer {
		return func(next Creator) Creator {
			return func(r Reducer, s State) *Store {
				order = append(order, name)
				return next(r, s)
			}
		}
	}

	New(nil, nil, Compose(tag("outer"), nil, tag("inner")))

	if want := []string{"outer", "inner"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestThunk(t *testing.T) {
	st := New(testReducer(), nil, ApplyMiddleware(Thunk()))

	_, err := st.Dispatch(Action{Type: "load", Payload: ThunkFunc(func(dispatch Dispatch, getState func() State) error {
		if _, err := dispatch(Action{Type: "add", Payload: 2}); err != nil {
			return err
		}
		if getState()["count"] != 2 {
			return errors.New("state not updated")
		}
		_, err := dispatch(Action{Type: "inc"})
		return err
	})})
	if err != nil {
		t.Fatalf("Dispatch(thunk) error = %v", err)
	}
	if got := st.GetState()["count"]; got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	st := New(testReducer(), nil, ApplyMiddleware(Logger(logger)))
	st.Dispatch(Action{Type: "inc"})

	out := buf.String()
	if !strings.Contains(out, "type=inc") {
		t.Errorf("log missing action type: %s", out)
	}
	if !strings.Contains(out, "changed=[count]") {
		t.Errorf("log missing changed keys: %s", out)
	}
}
