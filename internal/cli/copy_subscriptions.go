package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/discount"
	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/migrate"
)

var copySubscriptionsCmd = &cobra.Command{
	Use:   "copy-subscriptions",
	Short: "Copy subscriptions into the new account",
	Long: `Copies every subscription whose customer already exists in the new
account. Catalog prices resolve through the prices id-map; prices defined
inline on a subscription are cloned per subscription as an atomic unit and
rolled back together on failure. Repeating discounts are shortened to their
remaining duration. On success the old subscription is marked with the
destination id and scheduled for cancellation at period end.`,
	Args: cobra.NoArgs,
	RunE: runCopySubscriptions,
}

var (
	copySubsPricesFile         string
	copySubsInlinePricesFile   string
	copySubsInlineProductsFile string
	copySubsCouponsFile        string
	copySubsFile               string
	copySubsAutomaticTax       bool
	copySubsZeroDuration       string
)

func init() {
	rootCmd.AddCommand(copySubscriptionsCmd)
	copySubscriptionsCmd.Flags().StringVar(&copySubsPricesFile, "prices-file", "", "Path to the prices id-map file")
	copySubscriptionsCmd.Flags().StringVar(&copySubsInlinePricesFile, "inline-prices-file", "", "Path to the inline-prices id-map file")
	copySubscriptionsCmd.Flags().StringVar(&copySubsInlineProductsFile, "inline-products-file", "", "Path to the inline-products id-map file")
	copySubscriptionsCmd.Flags().StringVar(&copySubsCouponsFile, "coupons-file", "", "Path to the coupons id-map file")
	copySubscriptionsCmd.Flags().StringVar(&copySubsFile, "subscriptions-file", "", "Path to the subscriptions id-map file")
	copySubscriptionsCmd.Flags().BoolVar(&copySubsAutomaticTax, "automatic-tax", false, "Enable automatic tax on migrated subscriptions")
	copySubscriptionsCmd.Flags().StringVar(&copySubsZeroDuration, "zero-duration", string(discount.DropExpired), "Policy for discounts with zero remaining months: drop or attach")
}

func runCopySubscriptions(cmd *cobra.Command, args []string) error {
	policy, err := discount.ParsePolicy(copySubsZeroDuration)
	if err != nil {
		return err
	}

	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := migrate.SubscriptionOptions{
		AutomaticTax: copySubsAutomaticTax,
		ZeroDuration: policy,
	}
	if opts.Prices, err = openMap(cfg, copySubsPricesFile, idmap.Prices); err != nil {
		return err
	}
	if opts.InlinePrices, err = openMap(cfg, copySubsInlinePricesFile, idmap.InlinePrices); err != nil {
		return err
	}
	if opts.InlineProducts, err = openMap(cfg, copySubsInlineProductsFile, idmap.InlineProducts); err != nil {
		return err
	}
	if opts.Coupons, err = openMap(cfg, copySubsCouponsFile, idmap.Coupons); err != nil {
		return err
	}
	if opts.Subscriptions, err = openMap(cfg, copySubsFile, idmap.Subscriptions); err != nil {
		return err
	}

	st, err := m.Subscriptions(cmd.Context(), opts)
	printStats(cmd, "subscriptions", st)
	return err
}
