package main

import (
	"errors"
	"fmt"
	"route-watch-service/internal/config"

	"github.com/spf13/cobra"
)

func newInitCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init-cache",
		Short: "Create the free-flow cache schema for the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.Cache.Enabled() {
				return errors.New("no cache backend configured")
			}

			_, closeCache, err := openCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer closeCache()

			if cfg.Cache.Backend == config.CacheRedis {
				fmt.Fprintln(cmd.OutOrStdout(), "Redis cache needs no schema.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache schema ready (%s).\n", cfg.Cache.Backend)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
