package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copySubscriptionItemsCmd = &cobra.Command{
	Use:   "copy-subscription-items",
	Short: "Clone inline subscription prices without creating subscriptions",
	Long: `Creates product and price clones for subscription items whose prices
are defined inline on the subscription rather than in the shared catalog.
Useful to pre-seed the inline id-maps before copy-subscriptions, or to repair
them after a partial run.`,
	Args: cobra.NoArgs,
	RunE: runCopySubscriptionItems,
}

var (
	copyItemsPricesFile         string
	copyItemsInlinePricesFile   string
	copyItemsInlineProductsFile string
)

func init() {
	rootCmd.AddCommand(copySubscriptionItemsCmd)
	copySubscriptionItemsCmd.Flags().StringVar(&copyItemsPricesFile, "prices-file", "", "Path to the prices id-map file")
	copySubscriptionItemsCmd.Flags().StringVar(&copyItemsInlinePricesFile, "inline-prices-file", "", "Path to the inline-prices id-map file")
	copySubscriptionItemsCmd.Flags().StringVar(&copyItemsInlineProductsFile, "inline-products-file", "", "Path to the inline-products id-map file")
}

func runCopySubscriptionItems(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog, err := openMap(cfg, copyItemsPricesFile, idmap.Prices)
	if err != nil {
		return err
	}
	inlinePrices, err := openMap(cfg, copyItemsInlinePricesFile, idmap.InlinePrices)
	if err != nil {
		return err
	}
	inlineProducts, err := openMap(cfg, copyItemsInlineProductsFile, idmap.InlineProducts)
	if err != nil {
		return err
	}

	st, err := m.InlineItems(cmd.Context(), catalog, inlineProducts, inlinePrices)
	printStats(cmd, "subscription items", st)
	return err
}
