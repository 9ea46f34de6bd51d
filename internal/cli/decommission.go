package cli

import (
	"github.com/spf13/cobra"
)

var cancelSubscriptionsCmd = &cobra.Command{
	Use:   "cancel-subscriptions",
	Short: "Schedule every old-account subscription for cancellation at period end",
	Args:  cobra.NoArgs,
	RunE:  runCancelSubscriptions,
}

var pauseSubscriptionsCmd = &cobra.Command{
	Use:   "pause-subscriptions",
	Short: "Void payment collection on every old-account subscription",
	Args:  cobra.NoArgs,
	RunE:  runPauseSubscriptions,
}

func init() {
	rootCmd.AddCommand(cancelSubscriptionsCmd)
	rootCmd.AddCommand(pauseSubscriptionsCmd)
}

func runCancelSubscriptions(cmd *cobra.Command, args []string) error {
	m, _, cleanup, err := newMigrator(cmd, true, false)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := m.CancelAllSubscriptions(cmd.Context())
	printStats(cmd, "cancelled", st)
	return err
}

func runPauseSubscriptions(cmd *cobra.Command, args []string) error {
	m, _, cleanup, err := newMigrator(cmd, true, false)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := m.PauseAllSubscriptions(cmd.Context())
	printStats(cmd, "paused", st)
	return err
}
