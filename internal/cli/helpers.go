package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/billhop/stripe-migrate/internal/config"
	"github.com/billhop/stripe-migrate/internal/idmap"
	"github.com/billhop/stripe-migrate/internal/journal"
	"github.com/billhop/stripe-migrate/internal/migrate"
	"github.com/billhop/stripe-migrate/internal/stripeapi"
)

// loadConfig loads configuration and applies persistent-flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if v := cmd.Flag("data-dir").Value.String(); v != "" {
		cfg.DataDir = v
	}
	if v := cmd.Flag("journal").Value.String(); v != "" {
		cfg.JournalPath = v
	}
	if v := cmd.Flag("old-key").Value.String(); v != "" {
		cfg.OldAccountKey = v
	}
	if v := cmd.Flag("new-key").Value.String(); v != "" {
		cfg.NewAccountKey = v
	}
	if v := cmd.Flag("log-level").Value.String(); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newClient(cfg *config.Config, apiKey string) (*stripeapi.Client, error) {
	return stripeapi.New(stripeapi.Config{
		APIKey:     apiKey,
		MaxRetries: cfg.MaxRetries,
	})
}

// newMigrator builds the Migrator for a command. needOld/needNew say which
// account keys the command actually uses, so single-account commands don't
// demand credentials they never touch. The returned func closes the journal.
func newMigrator(cmd *cobra.Command, needOld, needNew bool) (*migrate.Migrator, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)
	m := &migrate.Migrator{Log: logger}

	if needOld {
		if cfg.OldAccountKey == "" {
			return nil, nil, nil, fmt.Errorf("old-account API key is not configured (set STRIPE_MIGRATE_OLD_KEY or --old-key)")
		}
		if m.Old, err = newClient(cfg, cfg.OldAccountKey); err != nil {
			return nil, nil, nil, err
		}
	}
	if needNew {
		if cfg.NewAccountKey == "" {
			return nil, nil, nil, fmt.Errorf("new-account API key is not configured (set STRIPE_MIGRATE_NEW_KEY or --new-key)")
		}
		if m.New, err = newClient(cfg, cfg.NewAccountKey); err != nil {
			return nil, nil, nil, err
		}
	}

	cleanup := func() {}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			// The journal is an audit aid; a run without one is still safe.
			logger.Warn("journal unavailable, continuing without it", "path", cfg.JournalPath, "error", err)
		} else {
			m.Journal = j
			logger.Info("journal opened", "path", cfg.JournalPath, "run_id", j.RunID())
			cleanup = func() { j.Close() }
		}
	}
	return m, cfg, cleanup, nil
}

// openMap opens one id-map file, preferring an explicit flag path over the
// kind's default location in the data directory.
func openMap(cfg *config.Config, override string, kind idmap.Kind) (*idmap.Map, error) {
	path := override
	if path == "" {
		path = cfg.MappingPath(kind.FileName())
	}
	m, err := idmap.Open(path, kind)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func printStats(cmd *cobra.Command, label string, st migrate.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, st)
}
