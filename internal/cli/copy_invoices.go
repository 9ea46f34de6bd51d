package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copyInvoicesCmd = &cobra.Command{
	Use:   "copy-invoices",
	Short: "Recreate settled invoices in the new account",
	Long: `Recreates historical invoices as non-auto-advancing drafts, copies the
line items, finalizes each draft and marks it paid out of band. Payment is
never collected again. Use --customer to migrate one customer's invoices at a
time.`,
	Args: cobra.NoArgs,
	RunE: runCopyInvoices,
}

var (
	copyInvoicesCustomer string
	copyInvoicesFile     string
)

func init() {
	rootCmd.AddCommand(copyInvoicesCmd)
	copyInvoicesCmd.Flags().StringVar(&copyInvoicesCustomer, "customer", "", "Only migrate invoices of this old-account customer id")
	copyInvoicesCmd.Flags().StringVar(&copyInvoicesFile, "invoices-file", "", "Path to the invoices id-map file")
}

func runCopyInvoices(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	invoices, err := openMap(cfg, copyInvoicesFile, idmap.Invoices)
	if err != nil {
		return err
	}

	st, err := m.Invoices(cmd.Context(), copyInvoicesCustomer, invoices)
	printStats(cmd, "invoices", st)
	return err
}
