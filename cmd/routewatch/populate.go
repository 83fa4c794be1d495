package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPopulateFreeFlowCmd() *cobra.Command {
	var (
		configPath string
		route      string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "populate-free-flow",
		Short: "Store the provider's traffic-free path as a route's free-flow waypoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			rc, err := a.cfg.Route(route)
			if err != nil {
				return err
			}

			if a.usingSyntheticRoutes() {
				cmd.PrintErrln("Warning: using synthetic routes for testing. This will generate fake waypoints.")
				cmd.PrintErrln(`   For real routes, configure provider = "mapbox" or provider = "google".`)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fetching optimal route for: %s\n", rc.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "From: %s\n", rc.Start)
			fmt.Fprintf(cmd.OutOrStdout(), "To: %s\n", rc.End)

			waypoints, err := a.engine.ResolveOptimalWaypoints(cmd.Context(), rc.Start, rc.End)
			if err != nil {
				return err
			}

			rc.FreeFlowRoute = waypoints
			a.cfg.SetRoute(route, rc)

			fmt.Fprintf(cmd.OutOrStdout(), "Found optimal route with %d waypoints\n", len(waypoints))

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), "Use --save flag to save the configuration")
				fmt.Fprintf(cmd.OutOrStdout(), "Free-flow waypoints: %v\n", waypoints)
				return nil
			}

			if err := a.cfg.Save(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", configPath)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&route, "route", "r", "", "name of the route to populate")
	cmd.Flags().BoolVarP(&save, "save", "s", false, "save the updated configuration back to file")
	_ = cmd.MarkFlagRequired("route")

	return cmd
}
