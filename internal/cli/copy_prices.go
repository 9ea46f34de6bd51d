package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copyPricesCmd = &cobra.Command{
	Use:   "copy-prices",
	Short: "Copy catalog prices into the new account",
	Long: `Copies every price from the old account, pointing each at its migrated
product. Requires a populated products id-map from copy-products; prices whose
product has not been migrated yet are reported as failed and can be retried
after another copy-products run.`,
	Args: cobra.NoArgs,
	RunE: runCopyPrices,
}

var (
	copyPricesProductsFile string
	copyPricesFile         string
)

func init() {
	rootCmd.AddCommand(copyPricesCmd)
	copyPricesCmd.Flags().StringVar(&copyPricesProductsFile, "products-file", "", "Path to the products id-map file")
	copyPricesCmd.Flags().StringVar(&copyPricesFile, "prices-file", "", "Path to the prices id-map file")
}

func runCopyPrices(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	products, err := openMap(cfg, copyPricesProductsFile, idmap.Products)
	if err != nil {
		return err
	}
	prices, err := openMap(cfg, copyPricesFile, idmap.Prices)
	if err != nil {
		return err
	}

	st, err := m.Prices(cmd.Context(), products, prices)
	printStats(cmd, "prices", st)
	return err
}
