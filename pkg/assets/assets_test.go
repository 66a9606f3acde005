package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	perrors "github.com/vango-dev/prerender/internal/errors"
)

func TestDecode(t *testing.T) {
	data := []byte(`{
		"javascript": {"vendor": "vendor.1.js", "main": "/static/main.2.js", "cdn": "https://cdn.example.com/x.js", "empty": ""},
		"styles": {"main": "main.3.css"}
	}`)

	a, err := Decode(data, "/dist/")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantScripts := []string{"https://cdn.example.com/x.js", "/static/main.2.js", "/dist/vendor.1.js"}
	if got := a.Scripts(); !reflect.DeepEqual(got, wantScripts) {
		t.Errorf("Scripts() = %v, want %v", got, wantScripts)
	}
	if got := a.Stylesheets(); !reflect.DeepEqual(got, []string{"/dist/main.3.css"}) {
		t.Errorf("Stylesheets() = %v", got)
	}
	if a.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("{not json"), "/"); err == nil {
		t.Error("Decode() should fail on invalid JSON")
	}
}

func TestEmptyAssets(t *testing.T) {
	var a Assets
	if !a.Empty() {
		t.Error("zero Assets should be empty")
	}
	if a.Scripts() != nil || a.Stylesheets() != nil {
		t.Error("zero Assets should list no files")
	}
}

func TestToolsRefresh(t *testing.T) {
	dir := t.TempDir()
	statsPath := filepath.Join(dir, "stats.json")
	if err := os.WriteFile(statsPath, []byte(`{"javascript":{"main":"main.js"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	tools := NewTools(FileSource{Path: statsPath}, "/dist/", nil)
	if tools.Loaded() {
		t.Error("Loaded() = true before Refresh")
	}
	if err := tools.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := tools.Assets().Scripts(); !reflect.DeepEqual(got, []string{"/dist/main.js"}) {
		t.Errorf("Scripts() = %v", got)
	}

	// A broken rewrite keeps the last good copy.
	if err := os.WriteFile(statsPath, []byte(`{broken`), 0644); err != nil {
		t.Fatal(err)
	}
	err := tools.Refresh(context.Background())
	if perrors.Code(err) != "E130" {
		t.Errorf("Refresh() code = %q, want E130", perrors.Code(err))
	}
	if got := tools.Assets().Scripts(); !reflect.DeepEqual(got, []string{"/dist/main.js"}) {
		t.Errorf("Scripts() after failed refresh = %v", got)
	}
}

func TestToolsRetarget(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	if err := os.WriteFile(first, []byte(`{"javascript":{"main":"a.js"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte(`{"javascript":{"main":"b.js"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	tools := NewTools(FileSource{Path: first}, "/dist/", nil)
	if err := tools.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	tools.Retarget(FileSource{Path: second}, "/cdn/")
	if got := tools.Assets().Scripts(); !reflect.DeepEqual(got, []string{"/dist/a.js"}) {
		t.Errorf("Scripts() before refresh = %v", got)
	}
	if err := tools.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := tools.Assets().Scripts(); !reflect.DeepEqual(got, []string{"/cdn/b.js"}) {
		t.Errorf("Scripts() after retarget = %v", got)
	}
	if got := tools.Source().String(); got != second {
		t.Errorf("Source() = %q, want %q", got, second)
	}
}

func TestToolsRefreshMissingFile(t *testing.T) {
	tools := NewTools(FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}, "/", nil)
	err := tools.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() should fail for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
	if tools.Loaded() {
		t.Error("Loaded() = true after failed Refresh")
	}
}

func TestFileSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FileSource{Path: "x"}).Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}
