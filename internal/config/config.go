package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Version    string         `json:"version" mapstructure:"version"`
	Database   Database       `json:"database" mapstructure:"database"`
	Seed       int64          `json:"seed,omitempty" mapstructure:"seed"`
	BatchSize  int            `json:"batch_size,omitempty" mapstructure:"batch_size"`
	Counts     map[string]int `json:"counts,omitempty" mapstructure:"counts"`
	CountsFile string         `json:"counts_file,omitempty" mapstructure:"counts_file"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}

	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}

	return nil
}

// ResolveCounts merges per-table row counts: the counts file overrides the
// inline counts map. The file is a flat YAML mapping of table name to count.
func (c *Config) ResolveCounts() (map[string]int, error) {
	counts := make(map[string]int, len(c.Counts))
	for table, n := range c.Counts {
		counts[table] = n
	}

	if c.CountsFile != "" {
		raw, err := os.ReadFile(c.CountsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read counts file: %w", err)
		}
		fromFile := make(map[string]int)
		if err := yaml.Unmarshal(raw, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse counts file %s: %w", c.CountsFile, err)
		}
		for table, n := range fromFile {
			counts[table] = n
		}
	}

	for table, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("row count for table %s must be non-negative, got %d", table, n)
		}
	}
	return counts, nil
}
