// Command prerender serves server-rendered pages for the bundled demo
// application. Applications embed the prerender package in their own main
// to register their routes, reducers and providers.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/prerender"
	"github.com/vango-dev/prerender/internal/config"
	"github.com/vango-dev/prerender/internal/demo"
	"github.com/vango-dev/prerender/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prerender",
		Short: "Server-side rendering for store-backed route trees",
		Long: `prerender renders matched routes on the server, serialises the
per-request store into the document and answers redirects and misses
with the right status codes.

Configuration is read from prerender.json (or .yaml/.yml) in the project
root, process flags from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.Pretty(err))
		os.Exit(1)
	}
}

// setup holds what every command needs before building an App.
type setup struct {
	flags  config.Flags
	cfg    *config.Config
	logger *slog.Logger
}

// load reads flags and configuration. configPath, when set, names the
// configuration file; otherwise it is searched upward from the working
// directory.
func load(configPath string, envFiles []string, logOut io.Writer) (*setup, error) {
	flags, err := config.LoadFlags(envFiles...)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		var root string
		root, err = config.FindProjectRoot(".")
		if err == nil {
			cfg, err = config.Load(root)
		}
	}
	if err != nil {
		return nil, err
	}

	return &setup{flags: flags, cfg: cfg, logger: newLogger(flags, logOut)}, nil
}

// newLogger logs text in development and JSON otherwise.
func newLogger(flags config.Flags, w io.Writer) *slog.Logger {
	if flags.Development {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

func registry(logger *slog.Logger) *prerender.Registry {
	reg := prerender.NewRegistry()
	demo.Register(reg, demo.DefaultUsers, logger)
	return reg
}
