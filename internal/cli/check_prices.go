package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/sanitize"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

var checkPricesCmd = &cobra.Command{
	Use:   "check-prices",
	Short: "Audit price sanitization without creating anything",
	Long: `Dry-runs the price sanitizer against every old-account price and prints
a unified diff between each raw record and the payload that would be sent to
the new account. Tiered prices missing an integer tier amount are flagged.
Nothing is written to either account.`,
	Args: cobra.NoArgs,
	RunE: runCheckPrices,
}

func init() {
	rootCmd.AddCommand(checkPricesCmd)
}

func runCheckPrices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	verifyAccountSide = "old"
	client, err := verifyClient(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return client.ForEachPrice(cmd.Context(), func(old stripeapi.Record) error {
		oldID := old.String("id")

		for i, t := range old.Slice("tiers") {
			tier, ok := t.(map[string]any)
			if !ok {
				continue
			}
			if _, hasAmount := tier["unit_amount"]; !hasAmount || tier["unit_amount"] == nil {
				fmt.Fprintf(out, "%s: tier %d has no integer unit_amount\n", oldID, i)
			}
		}

		payload, err := sanitize.Sanitize(sanitize.Price, old, map[string]string{"product": "<product>"})
		if err != nil {
			return fmt.Errorf("failed to sanitize price %s: %w", oldID, err)
		}

		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(prettyJSON(old)),
			B:        difflib.SplitLines(prettyJSON(payload)),
			FromFile: oldID,
			ToFile:   oldID + " (payload)",
			Context:  2,
		}
		text, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	})
}

func prettyJSON(rec stripeapi.Record) string {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	return string(data) + "\n"
}
