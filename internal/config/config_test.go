package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "postgresql", cfg.Database.Provider)
	assert.Equal(t, "DATABASE_URL", cfg.Database.URLEnv)
	assert.Equal(t, 1000, cfg.BatchSize)
}

func TestLoadFromViper(t *testing.T) {
	viper.Reset()
	viper.Set("database.provider", "sqlite")
	viper.Set("database.url_env", "SQLITE_PATH")
	viper.Set("batch_size", 250)
	viper.Set("seed", 42)
	viper.Set("counts", map[string]int{"users": 5})
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "SQLITE_PATH", cfg.Database.URLEnv)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, map[string]int{"users": 5}, cfg.Counts)
}

func TestValidateProvider(t *testing.T) {
	cfg := &Config{Database: Database{Provider: "postgresql"}, BatchSize: 100}
	assert.NoError(t, cfg.Validate())

	cfg.Database.Provider = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestValidateBatchSize(t *testing.T) {
	cfg := &Config{Database: Database{Provider: "mysql"}, BatchSize: 0}
	assert.Error(t, cfg.Validate())
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{Database: Database{URLEnv: "DBFILL_TEST_URL"}}

	os.Unsetenv("DBFILL_TEST_URL")
	_, err := cfg.GetDatabaseURL()
	assert.Error(t, err)

	t.Setenv("DBFILL_TEST_URL", "postgres://localhost/test")
	url, err := cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/test", url)
}

func TestResolveCountsMergesFileOverInline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: 50\norders: 200\n"), 0644))

	cfg := &Config{
		Counts:     map[string]int{"users": 10, "events": 3},
		CountsFile: path,
	}
	counts, err := cfg.ResolveCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"users": 50, "orders": 200, "events": 3}, counts)
}

func TestResolveCountsRejectsNegative(t *testing.T) {
	cfg := &Config{Counts: map[string]int{"users": -1}}
	_, err := cfg.ResolveCounts()
	assert.Error(t, err)
}

func TestResolveCountsMissingFile(t *testing.T) {
	cfg := &Config{CountsFile: "/nonexistent/counts.yaml"}
	_, err := cfg.ResolveCounts()
	assert.Error(t, err)
}
