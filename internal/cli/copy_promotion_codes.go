package cli

import (
	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/idmap"
)

var copyPromotionCodesCmd = &cobra.Command{
	Use:   "copy-promotion-codes",
	Short: "Copy promotion codes into the new account",
	Long: `Copies every promotion code, pointing each at its migrated coupon.
Codes the destination account rejects as invalid (for example code collisions)
are logged and skipped; any other remote error aborts the run.`,
	Args: cobra.NoArgs,
	RunE: runCopyPromotionCodes,
}

var (
	copyCodesCouponsFile string
	copyCodesFile        string
)

func init() {
	rootCmd.AddCommand(copyPromotionCodesCmd)
	copyPromotionCodesCmd.Flags().StringVar(&copyCodesCouponsFile, "coupons-file", "", "Path to the coupons id-map file")
	copyPromotionCodesCmd.Flags().StringVar(&copyCodesFile, "codes-file", "", "Path to the promotion-codes id-map file")
}

func runCopyPromotionCodes(cmd *cobra.Command, args []string) error {
	m, cfg, cleanup, err := newMigrator(cmd, true, true)
	if err != nil {
		return err
	}
	defer cleanup()

	coupons, err := openMap(cfg, copyCodesCouponsFile, idmap.Coupons)
	if err != nil {
		return err
	}
	codes, err := openMap(cfg, copyCodesFile, idmap.PromotionCodes)
	if err != nil {
		return err
	}

	st, err := m.PromotionCodes(cmd.Context(), coupons, codes)
	printStats(cmd, "promotion codes", st)
	return err
}
