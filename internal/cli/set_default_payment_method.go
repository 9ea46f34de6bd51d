package cli

import (
	"github.com/spf13/cobra"
)

var setDefaultPaymentMethodCmd = &cobra.Command{
	Use:   "set-default-payment-method",
	Short: "Set a default card for new-account customers missing one",
	Long: `Walks the new account's customers; every customer without a default
payment method gets their first card on file promoted. Customers with no cards
are logged and left unchanged.`,
	Args: cobra.NoArgs,
	RunE: runSetDefaultPaymentMethod,
}

func init() {
	rootCmd.AddCommand(setDefaultPaymentMethodCmd)
}

func runSetDefaultPaymentMethod(cmd *cobra.Command, args []string) error {
	m, _, cleanup, err := newMigrator(cmd, false, true)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := m.DefaultPaymentMethods(cmd.Context())
	printStats(cmd, "payment methods", st)
	return err
}
