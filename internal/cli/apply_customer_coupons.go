package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/discount"
	"github.com/billhop/stripe-migrate/internal/idmap"
)

var applyCustomerCouponsCmd = &cobra.Command{
	Use:   "apply-customer-coupons",
	Short: "Re-apply customer-level discounts in the new account",
	Long: `Walks the old account's customers and re-applies each customer-level
discount in the new account, shortening repeating discounts to their remaining
duration at migration time.`,
	Args: cobra.NoArgs,
	RunE: runApplyCustomerCoupons,
}

var (
	applyCouponsFile         string
	applyCouponsZeroDuration string
)

func init() {
	rootCmd.AddCommand(applyCustomerCouponsCmd)
	applyCustomerCouponsCmd.Flags().StringVar(&applyCouponsFile, "coupons-file", "", "Path to the coupons id-map file")
	applyCustomerCouponsCmd.Flags().StringVar(&applyCouponsZeroDuration, "zero-duration", string(discount.DropExpired), "Policy for discounts with zero remaining months: drop or attach")
}

func runApplyCustomerCoupons(cmd *cobra.Command, args []string) error {
	policy, err := discount.ParsePolicy(applyCouponsZeroDuration)
	if err != nil {
		return err
	}

	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	coupons, err := openMap(cfg, applyCouponsFile, idmap.Coupons)
	if err != nil {
		return err
	}

	st, err := m.CustomerCoupons(cmd.Context(), coupons, policy)
	printStats(cmd, "customer coupons", st)
	return err
}
