package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stripe-migrate",
	Short: "Copy billing resources from one Stripe account to another",
	Long: `stripe-migrate copies products, prices, coupons, promotion codes,
subscriptions and invoices from an old Stripe account into a new one,
keeping a durable old-id to new-id mapping per resource kind so runs are
resumable and idempotent. Repeating discounts are reconciled to their
remaining duration at migration time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for id-map files (overrides STRIPE_MIGRATE_DATA_DIR)")
	rootCmd.PersistentFlags().String("journal", "", "Path to the run journal database (overrides STRIPE_MIGRATE_JOURNAL)")
	rootCmd.PersistentFlags().String("old-key", "", "Old-account API key (overrides STRIPE_MIGRATE_OLD_KEY)")
	rootCmd.PersistentFlags().String("new-key", "", "New-account API key (overrides STRIPE_MIGRATE_NEW_KEY)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}
