// Package config provides configuration management for the sync tool.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Trading212 Trading212Config
	YNAB       YNABConfig

	// CategoryInterest, CategoryStocks and CategoryFees are optional ledger
	// category ids assigned to generated entries.
	CategoryInterest string
	CategoryStocks   string
	CategoryFees     string

	// MappingPath optionally points at a YAML presentation-mapping file.
	MappingPath string

	// DBPath is the SQLite file recording sync-run history.
	DBPath string

	Debug bool
}

// Trading212Config represents Trading212 API configuration.
type Trading212Config struct {
	Token  string
	APIURL string
}

// YNABConfig represents YNAB API configuration.
type YNABConfig struct {
	Token     string
	BudgetID  string
	AccountID string
}

// Load loads configuration from environment variables.
// It automatically loads .env from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from the current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		Trading212: Trading212Config{
			Token:  os.Getenv("T212_TOKEN"),
			APIURL: getEnvOrDefault("T212_API_URL", "https://live.trading212.com"),
		},
		YNAB: YNABConfig{
			Token:     os.Getenv("YNAB_TOKEN"),
			BudgetID:  os.Getenv("YNAB_BUDGET_ID"),
			AccountID: os.Getenv("YNAB_ACCOUNT_ID"),
		},
		CategoryInterest: os.Getenv("YNAB_CATEGORY_INTEREST_ID"),
		CategoryStocks:   os.Getenv("YNAB_CATEGORY_STOCKS_ID"),
		CategoryFees:     os.Getenv("YNAB_CATEGORY_FEES_ID"),
		MappingPath:      os.Getenv("MAPPING_PATH"),
		DBPath:           getEnvOrDefault("SYNC_DB_PATH", "./data/sync.db"),
		Debug:            os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks that all named fields are set.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, key := range required {
		var value string
		switch key {
		case "t212.token":
			value = c.Trading212.Token
		case "t212.apiUrl":
			value = c.Trading212.APIURL
		case "ynab.token":
			value = c.YNAB.Token
		case "ynab.budgetId":
			value = c.YNAB.BudgetID
		case "ynab.accountId":
			value = c.YNAB.AccountID
		case "dbPath":
			value = c.DBPath
		}

		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
