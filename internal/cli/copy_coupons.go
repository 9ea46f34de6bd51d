package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copyCouponsCmd = &cobra.Command{
	Use:   "copy-coupons",
	Short: "Copy coupons into the new account",
	Long: `Copies every coupon that can still be redeemed; coupons past their
redemption deadline are skipped. Coupons keep their ids across accounts.`,
	Args: cobra.NoArgs,
	RunE: runCopyCoupons,
}

var copyCouponsFile string

func init() {
	rootCmd.AddCommand(copyCouponsCmd)
	copyCouponsCmd.Flags().StringVar(&copyCouponsFile, "coupons-file", "", "Path to the coupons id-map file")
}

func runCopyCoupons(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	coupons, err := openMap(cfg, copyCouponsFile, idmap.Coupons)
	if err != nil {
		return err
	}

	st, err := m.Coupons(cmd.Context(), coupons)
	printStats(cmd, "coupons", st)
	return err
}
