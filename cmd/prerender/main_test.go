package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prerender.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckResolvesDemo(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeConfig(t, `{"routes":"routes","redux":{"reducers":"reducers","middleware":"default"},"providers":["layout"]}`)

	out, err := execute(t, checkCmd(), "--config", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, path+": ok") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckReportsUnknownNames(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeConfig(t, `{"routes":"missing"}`)

	_, err := execute(t, checkCmd(), "--config", path)
	if err == nil || !strings.Contains(err.Error(), "E104") {
		t.Errorf("err = %v, want E104", err)
	}
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, versionCmd(), "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q, want %q", out, version)
	}
}
