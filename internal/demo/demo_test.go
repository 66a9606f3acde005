package demo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/prerender"
	"github.com/vango-dev/prerender/internal/config"
)

type stats []byte

func (s stats) Read(context.Context) ([]byte, error) { return s, nil }
func (s stats) String() string                       { return "memory" }

type failingDirectory struct{}

func (failingDirectory) Users(context.Context) ([]User, error) {
	return nil, errors.New("directory offline")
}

func newApp(t *testing.T, dir Directory) *prerender.App {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, config.ConfigFileName)
	body := `{
  "routes": "` + Routes + `",
  "redux": {"reducers": "` + Reducers + `", "middleware": "` + Middleware + `"},
  "providers": ["` + Layout + `"],
  "document": {"title": "Demo"}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prerender.NewRegistry()
	Register(reg, dir, logger)

	app, err := prerender.New(context.Background(), prerender.Options{
		Config:      cfg,
		Flags:       config.Flags{Env: "production"},
		Registry:    reg,
		Logger:      logger,
		Metrics:     prometheus.NewRegistry(),
		AssetSource: stats(`{"javascript":{"main":"main.js"}}`),
		ErrorOutput: io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func get(app *prerender.App, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHome(t *testing.T) {
	app := newApp(t, DefaultUsers)

	rec := get(app, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Demo</title>", `<div id="app">`, "<h1>prerender</h1>", `href="/users"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestUserListFetchesDirectory(t *testing.T) {
	app := newApp(t, DefaultUsers)

	body := get(app, "/users").Body.String()
	for _, u := range DefaultUsers {
		if !strings.Contains(body, ">"+u.Name+"</a>") {
			t.Errorf("body missing user %q", u.Name)
		}
	}
	if !strings.Contains(body, `"users":[`) {
		t.Errorf("serialized state missing users slice:\n%s", body)
	}
}

func TestUserDetail(t *testing.T) {
	app := newApp(t, DefaultUsers)

	tests := []struct {
		url  string
		want string
	}{
		{"/users/2", "Selected: Grace"},
		{"/users/9", "No user 9"},
	}
	for _, tt := range tests {
		rec := get(app, tt.url)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s = %d, want body containing %q", tt.url, rec.Code, tt.want)
		}
	}
}

func TestUserDetailRejectsNonNumericID(t *testing.T) {
	app := newApp(t, DefaultUsers)

	if rec := get(app, "/users/abc"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRedirects(t *testing.T) {
	app := newApp(t, DefaultUsers)

	tests := map[string]string{
		"/people":       "/users",
		"/people/3?x=1": "/users/3?x=1",
		"/users/0":      "/users",
	}
	for url, want := range tests {
		rec := get(app, url)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != want {
			t.Errorf("GET %s = %d %q, want 302 %q", url, rec.Code, rec.Header().Get("Location"), want)
		}
	}
}

func TestFetchFailure(t *testing.T) {
	app := newApp(t, failingDirectory{})

	rec := get(app, "/users")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "E102: ") {
		t.Errorf("body = %q", rec.Body.String())
	}
	// Pages without the fetch still render.
	if rec := get(app, "/"); rec.Code != http.StatusOK {
		t.Errorf("home status = %d", rec.Code)
	}
}
