package cli

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v79"

	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

var reportPaymentMethodsCmd = &cobra.Command{
	Use:   "report-payment-methods",
	Short: "Write a CSV of card brands per subscribed customer",
	Long: `Walks the subscriptions of one account and writes a CSV marking which
card brands each subscribed customer has on file. Used before the cutover to
find customers who would end up without a chargeable payment method.`,
	Args: cobra.NoArgs,
	RunE: runReportPaymentMethods,
}

var cardBrands = []string{
	"amex", "diners", "discover", "jcb", "mastercard", "unionpay", "visa", "unknown", "none",
}

var (
	reportMethodsSide string
	reportMethodsOut  string
)

func init() {
	rootCmd.AddCommand(reportPaymentMethodsCmd)
	reportPaymentMethodsCmd.Flags().StringVar(&reportMethodsSide, "account", "old", "Which account to report on: old or new")
	reportPaymentMethodsCmd.Flags().StringVar(&reportMethodsOut, "out", "payment-methods.csv", "Output CSV path")
}

func runReportPaymentMethods(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	verifyAccountSide = reportMethodsSide
	client, err := verifyClient(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(reportMethodsOut)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"customer"}, cardBrands...)); err != nil {
		return err
	}

	seen := map[string]bool{}
	err = client.ForEachSubscription(cmd.Context(), func(sub stripeapi.Record) error {
		customerID := sub.ID("customer")
		if customerID == "" || seen[customerID] {
			return nil
		}
		seen[customerID] = true

		methods, err := client.ListPaymentMethods(cmd.Context(), customerID, string(stripe.PaymentMethodTypeCard))
		if err != nil {
			return fmt.Errorf("failed to list payment methods for %s: %w", customerID, err)
		}
		available := map[string]bool{}
		for _, method := range methods {
			if card := method.Map("card"); card != nil {
				available[card.String("brand")] = true
			}
		}
		if len(methods) == 0 {
			available["none"] = true
		}

		row := []string{customerID}
		for _, brand := range cardBrands {
			if available[brand] {
				row = append(row, "x")
			} else {
				row = append(row, "")
			}
		}
		return w.Write(row)
	})
	if err != nil {
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", reportMethodsOut)
	return nil
}
