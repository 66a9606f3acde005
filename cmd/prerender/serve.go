package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/prerender"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		envFiles   []string
		host       string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rendering server",
		Long: `Start the rendering server.

In development (APP_ENV other than "production") build stats are re-read
on every request, configuration changes are reloaded and connected
browsers are notified.

Examples:
  prerender serve
  prerender serve --config=deploy/prerender.yaml --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(configPath, envFiles, os.Stderr)
			if err != nil {
				return err
			}
			if host != "" {
				s.cfg.Server.Host = host
			}
			if port > 0 {
				s.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := prerender.New(ctx, prerender.Options{
				Config:   s.cfg,
				Flags:    s.flags,
				Registry: registry(s.logger),
				Logger:   s.logger,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", s.cfg.Address())
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: search upward for prerender.json)")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default: .env when present)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from configuration)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from configuration)")

	return cmd
}
