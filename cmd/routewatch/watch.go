package main

import (
	"context"
	"errors"
	"fmt"
	"route-watch-service/internal/adapters/notify"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/services"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		route      string
		interval   int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously monitor routes for congestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return errors.New("interval must be a positive number of seconds")
			}

			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			names := a.cfg.RouteNames()
			if route != "" {
				names = []string{strings.ToLower(route)}
			}
			if len(names) == 0 {
				return errors.New("no routes configured")
			}

			routes := make([]domain.RouteConfig, 0, len(names))
			for _, name := range names {
				rc, err := a.cfg.Route(name)
				if err != nil {
					return err
				}
				routes = append(routes, rc)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Starting route monitoring...")
			fmt.Fprintf(cmd.OutOrStdout(), "Routes: %s\n", strings.Join(names, ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "Check interval: %d seconds\n", interval)
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			monitor := services.NewMonitor(a.engine, a.logger)
			if verbose {
				monitor.OnCycle = func(_ context.Context, results []*domain.CongestionResult) {
					for _, r := range results {
						fmt.Fprintln(cmd.OutOrStdout(), services.FormatSummary(r))
					}
				}
			}

			alert := func(ctx context.Context, r *domain.CongestionResult) error {
				msg := services.FormatAlert(r)
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				if notify.Dispatch(ctx, a.notifier, msg, a.logger) {
					fmt.Fprintln(cmd.OutOrStdout(), "Notification sent")
				}
				return nil
			}

			err = monitor.Run(cmd.Context(), routes, time.Duration(interval)*time.Second, alert)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Stopping route monitoring...")
				return nil
			}
			return err
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&route, "route", "r", "", "specific route to watch (default: all routes)")
	cmd.Flags().IntVarP(&interval, "interval", "i", int(services.DefaultCheckInterval/time.Second), "check interval in seconds")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	return cmd
}
