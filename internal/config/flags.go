package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	perrors "github.com/vango-dev/prerender/internal/errors"
)

// Flags are process-wide switches fixed for the lifetime of the process.
type Flags struct {
	// Client selects client-side behavior of the store factory (logger
	// middleware, devtools, history sync). The server process runs with
	// Client false.
	Client bool `env:"PRERENDER_CLIENT"`

	// Development enables per-request asset refresh, reload endpoints and
	// verbose error payloads. When PRERENDER_DEVELOPMENT is unset it is
	// derived from Env.
	Development bool `env:"PRERENDER_DEVELOPMENT"`

	// Logger appends the action logging middleware on the client.
	Logger bool `env:"PRERENDER_LOGGER"`

	// DevTools enables devtools instrumentation in client development mode.
	DevTools bool `env:"PRERENDER_DEVTOOLS"`

	// DevToolsRedisURL stores devtools debug sessions in Redis instead of
	// process memory.
	DevToolsRedisURL string `env:"PRERENDER_DEVTOOLS_REDIS_URL"`

	// DisableSSR skips server rendering and always answers with the shell
	// document. A debug override for isolating rendering defects.
	DisableSSR bool `env:"PRERENDER_DISABLE_SSR"`

	// Env is the deployment environment name.
	Env string `env:"APP_ENV" envDefault:"development"`
}

// Server reports whether the flags describe the server side.
func (f Flags) Server() bool {
	return !f.Client
}

// LoadFlags loads the given .env files (or ./.env when none are given and
// it exists) without overriding variables already set, then parses the
// process environment.
func LoadFlags(envFiles ...string) (Flags, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Flags{}, perrors.New("E123").Wrap(err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Flags{}, perrors.New("E123").Wrap(err)
	}
	return ParseFlags(environ())
}

// ParseFlags parses flags from an explicit environment map.
func ParseFlags(environment map[string]string) (Flags, error) {
	var f Flags
	if err := env.ParseWithOptions(&f, env.Options{Environment: environment}); err != nil {
		return Flags{}, perrors.New("E123").Wrap(err)
	}
	if _, ok := environment["PRERENDER_DEVELOPMENT"]; !ok {
		f.Development = f.Env != "production"
	}
	return f, nil
}

func environ() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}
