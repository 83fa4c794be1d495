package main

import (
	"encoding/json"
	"fmt"
	"route-watch-service/internal/adapters/notify"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCheckCmd() *cobra.Command {
	var (
		configPath string
		route      string
		verbose    bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a one-time congestion check for a route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q", format)
			}

			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			rc, err := a.cfg.Route(route)
			if err != nil {
				return err
			}

			if verbose && a.usingSyntheticRoutes() {
				cmd.PrintErrln("Warning: using synthetic routes for testing.")
				cmd.PrintErrln(`   For real traffic data, configure provider = "mapbox" or provider = "google".`)
			}
			if verbose && format == "text" {
				fmt.Fprintf(cmd.OutOrStdout(), "Checking route: %s\n", rc.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "From: %s\n", rc.Start)
				fmt.Fprintf(cmd.OutOrStdout(), "To: %s\n", rc.End)
			}

			result, err := a.engine.Evaluate(cmd.Context(), rc)
			if err != nil {
				return err
			}

			sent := result.Actionable() &&
				notify.Dispatch(cmd.Context(), a.notifier, services.FormatAlert(result), a.logger)

			switch format {
			case "json":
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			case "yaml":
				out, err := yaml.Marshal(result)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			default:
				printResult(cmd, result, verbose)
				if sent {
					fmt.Fprintln(cmd.OutOrStdout(), "Notification sent")
				}
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&route, "route", "r", "", "name of the route to check")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("route")

	return cmd
}

func printResult(cmd *cobra.Command, r *domain.CongestionResult, verbose bool) {
	if !r.IsCongested {
		fmt.Fprintf(cmd.OutOrStdout(), "Route '%s' is clear\n", r.RouteName)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Current travel time: %.1f minutes\n", r.CurrentTravelTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Free-flow travel time: %.1f minutes\n", r.FreeFlowTravelTime)
		}
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Route '%s' is congested!\n", r.RouteName)
	fmt.Fprintf(cmd.OutOrStdout(), "Current travel time: %.1f minutes\n", r.CurrentTravelTime)
	fmt.Fprintf(cmd.OutOrStdout(), "Free-flow travel time: %.1f minutes\n", r.FreeFlowTravelTime)
	fmt.Fprintf(cmd.OutOrStdout(), "Congestion ratio: %.2f\n", r.CongestionRatio)

	if r.AlternativeAvailable {
		fmt.Fprintf(cmd.OutOrStdout(), "Faster alternative available: %.1f minutes\n", *r.AlternativeTravelTime)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No faster alternative found")
	}
}
