package main

import (
	"errors"
	"fmt"
	"route-watch-service/internal/adapters/notify"

	"github.com/spf13/cobra"
)

func newTestNotificationCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "test-notification",
		Short: "Send a test message through the configured notifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.notifier == nil {
				return errors.New("no notification configured")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sending test notification: %s\n", notify.TestMessage)
			if !notify.Dispatch(cmd.Context(), a.notifier, notify.TestMessage, a.logger) {
				return errors.New("test notification failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
