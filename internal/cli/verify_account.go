package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/config"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

var verifyAccountCmd = &cobra.Command{
	Use:   "verify-account",
	Short: "Print which account a configured key belongs to",
	Long: `Retrieves the account behind the old or new API key and prints its id
and business name, so a migration is never run against the wrong account.
With --probe-write, also verifies the key can update the given subscription's
metadata (restricted keys often cannot).`,
	Args: cobra.NoArgs,
	RunE: runVerifyAccount,
}

var (
	verifyAccountSide string
	verifyProbeWrite  string
)

func init() {
	rootCmd.AddCommand(verifyAccountCmd)
	verifyAccountCmd.Flags().StringVar(&verifyAccountSide, "account", "old", "Which key to verify: old or new")
	verifyAccountCmd.Flags().StringVar(&verifyProbeWrite, "probe-write", "", "Subscription id to probe for metadata write access")
}

func runVerifyAccount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := verifyClient(cfg)
	if err != nil {
		return err
	}

	account, err := client.GetAccount(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve account: %w", err)
	}
	name := account.String("business_name")
	if name == "" {
		if profile := account.Map("business_profile"); profile != nil {
			name = profile.String("name")
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s account: %s %s\n", verifyAccountSide, account.String("id"), name)

	if verifyProbeWrite != "" {
		params := stripeapi.Record{"metadata": map[string]any{"access": "yes"}}
		if _, err := client.UpdateSubscription(cmd.Context(), verifyProbeWrite, params); err != nil {
			return fmt.Errorf("no subscription write access: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "subscription write access confirmed for %s\n", verifyProbeWrite)
	}
	return nil
}

func verifyClient(cfg *config.Config) (*stripeapi.Client, error) {
	switch verifyAccountSide {
	case "old":
		if cfg.OldAccountKey == "" {
			return nil, fmt.Errorf("old-account API key is not configured (set STRIPE_MIGRATE_OLD_KEY or --old-key)")
		}
		return newClient(cfg, cfg.OldAccountKey)
	case "new":
		if cfg.NewAccountKey == "" {
			return nil, fmt.Errorf("new-account API key is not configured (set STRIPE_MIGRATE_NEW_KEY or --new-key)")
		}
		return newClient(cfg, cfg.NewAccountKey)
	}
	return nil, fmt.Errorf("invalid --account %q (want old or new)", verifyAccountSide)
}
