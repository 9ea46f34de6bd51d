package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copyProductsCmd = &cobra.Command{
	Use:   "copy-products",
	Short: "Copy products into the new account",
	Long: `Copies every product from the old account into the new one and records
the id mapping in the products file. Products already present in the mapping
are skipped, so the command can be re-run after an interruption.`,
	Args: cobra.NoArgs,
	RunE: runCopyProducts,
}

var copyProductsFile string

func init() {
	rootCmd.AddCommand(copyProductsCmd)
	copyProductsCmd.Flags().StringVar(&copyProductsFile, "products-file", "", "Path to the products id-map file")
}

func runCopyProducts(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	products, err := openMap(cfg, copyProductsFile, idmap.Products)
	if err != nil {
		return err
	}

	st, err := m.Products(cmd.Context(), products)
	printStats(cmd, "products", st)
	return err
}
