package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "routing error",
			code:    "E100",
			wantMsg: "Route matching failed",
			wantCat: CategoryRouting,
		},
		{
			name:    "render error",
			code:    "E101",
			wantMsg: "Root component render failed",
			wantCat: CategoryRender,
		},
		{
			name:    "config error",
			code:    "E121",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E100")
	if got, want := err.Error(), "E100: Route matching failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(stderrors.New("boom"))
	if got, want := err.Error(), "E100: Route matching failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestUnwrapAndCode(t *testing.T) {
	cause := stderrors.New("disk full")
	err := fmt.Errorf("loading: %w", New("E130").Wrap(cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := Code(err); got != "E130" {
		t.Errorf("Code() = %q, want E130", got)
	}
	if got := Code(cause); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	coded := New("E102")
	if FromError(coded, "E101") != coded {
		t.Error("FromError should keep an existing coded error")
	}

	wrapped := FromError(stderrors.New("x"), "E101")
	if wrapped.Code != "E101" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v, want E101 wrapping cause", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E103").
		WithDetail("provider \"intl\" is not registered").
		Wrap(fmt.Errorf("resolving providers: %w", stderrors.New("not found")))

	out := err.Format()
	for _, want := range []string{
		"ERROR E103: Unknown provider",
		`provider "intl" is not registered`,
		"Caused by: resolving providers",
		"Caused by: not found",
		"Hint: Register the provider",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatStack(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E106").WithStack([]byte("goroutine 1 [running]:\nmain.main()\n")).Format()
	if !strings.Contains(out, "Stack:") || !strings.Contains(out, "    main.main()") {
		t.Errorf("Format() missing stack:\n%s", out)
	}
}

func TestPlainIgnoresColorSetting(t *testing.T) {
	EnableColors()

	out := New("E101").WithDetail("boom").Plain()
	if strings.Contains(out, "\033[") {
		t.Errorf("Plain() contains escape codes: %q", out)
	}
	if !strings.Contains(out, "ERROR E101: Root component render failed") {
		t.Errorf("Plain() = %q", out)
	}
}

func TestPretty(t *testing.T) {
	DisableColors()
	defer EnableColors()

	if Pretty(nil) != "" {
		t.Error("Pretty(nil) should be empty")
	}
	if out := Pretty(stderrors.New("plain")); !strings.Contains(out, "ERROR: plain") {
		t.Errorf("Pretty(plain) = %q", out)
	}
	if out := Pretty(New("E100")); !strings.Contains(out, "ERROR E100") {
		t.Errorf("Pretty(coded) = %q", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than 10", l)
		}
	}
	if len(lines) < 3 {
		t.Errorf("expected at least 3 lines, got %d", len(lines))
	}
}

func TestRegistryCodesHaveMessages(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" {
			t.Errorf("code %s has no message", code)
		}
	}
}
