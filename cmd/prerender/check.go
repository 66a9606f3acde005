package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/prerender"
)

func checkCmd() *cobra.Command {
	var (
		configPath string
		envFiles   []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration against the registered application",
		Long: `Load the configuration and resolve every name it references: root
component, routes, reducers, middleware and providers. Build stats are
read as the server would read them at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(configPath, envFiles, io.Discard)
			if err != nil {
				return err
			}

			app, err := prerender.New(context.Background(), prerender.Options{
				Config:      s.cfg,
				Flags:       s.flags,
				Registry:    registry(s.logger),
				Logger:      s.logger,
				Metrics:     prometheus.NewRegistry(),
				ErrorOutput: io.Discard,
			})
			if err != nil {
				return err
			}
			app.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", s.cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: search upward for prerender.json)")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default: .env when present)")

	return cmd
}
