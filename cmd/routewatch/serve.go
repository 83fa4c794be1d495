package main

import (
	"fmt"
	"route-watch-service/internal/api"
	"route-watch-service/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.cfg.API.Port
			}
			if port == 0 {
				port = config.DefaultAPIPort
			}

			srv := api.NewServer(fmt.Sprintf(":%d", port), api.NewRouter(a.cfg, a.engine, a.logger))
			return api.Serve(cmd.Context(), srv, a.logger)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: api.port from config, then 8080)")

	return cmd
}
