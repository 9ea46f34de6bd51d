package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// OldAccountKey and NewAccountKey are the API keys of the source and
	// destination accounts.
	OldAccountKey string `yaml:"old_account_key"`
	NewAccountKey string `yaml:"new_account_key"`
	// DataDir holds the id-map CSV files and the journal by default.
	DataDir     string `yaml:"data_dir"`
	JournalPath string `yaml:"journal_path"`
	LogLevel    string `yaml:"log_level"`
	// MaxRetries bounds transport retries on rate limits and 5xx.
	MaxRetries uint64 `yaml:"max_retries"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/stripe-migrate/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:   "info",
		MaxRetries: 5,
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Load ~/.config/stripe-migrate/config.yaml if it exists
	if err := loadYAMLConfig(cfg); err != nil {
		// YAML config is optional, so we don't fail if it doesn't exist
	}

	// Override with environment variables. API keys can also be read from
	// files via the _FILE variants so keys stay out of shell history.
	if key := getEnvOrFile("STRIPE_MIGRATE_OLD_KEY", "STRIPE_MIGRATE_OLD_KEY_FILE"); key != "" {
		cfg.OldAccountKey = key
	}
	if key := getEnvOrFile("STRIPE_MIGRATE_NEW_KEY", "STRIPE_MIGRATE_NEW_KEY_FILE"); key != "" {
		cfg.NewAccountKey = key
	}
	if dataDir := os.Getenv("STRIPE_MIGRATE_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if journal := os.Getenv("STRIPE_MIGRATE_JOURNAL"); journal != "" {
		cfg.JournalPath = journal
	}
	if logLevel := os.Getenv("STRIPE_MIGRATE_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "migration-data"
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = filepath.Join(cfg.DataDir, "journal.db")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/stripe-migrate/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "stripe-migrate", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// MappingPath returns the path of a mapping file inside the data directory.
func (c *Config) MappingPath(fileName string) string {
	return filepath.Join(c.DataDir, fileName)
}

// Validate checks that both account keys are configured.
func (c *Config) Validate() error {
	if c.OldAccountKey == "" {
		return fmt.Errorf("old-account API key is not configured (set STRIPE_MIGRATE_OLD_KEY)")
	}
	if c.NewAccountKey == "" {
		return fmt.Errorf("new-account API key is not configured (set STRIPE_MIGRATE_NEW_KEY)")
	}
	return nil
}
