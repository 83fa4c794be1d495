package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "routewatch",
		Short:         "Monitor route traffic congestion",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				logrus.Debug("no .env file found (using environment variables)")
			}
		},
	}
	root.SetVersionTemplate("route_watch {{.Version}}\n")

	root.AddCommand(
		newCheckCmd(),
		newPopulateFreeFlowCmd(),
		newWatchCmd(),
		newServeCmd(),
		newTestNotificationCmd(),
		newInitCacheCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "route_watch %s\n", version)
		},
	}
}

func addConfigFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config-file", "c", "", "path to configuration file (TOML, YAML, or JSON)")
	_ = cmd.MarkFlagRequired("config-file")
}
