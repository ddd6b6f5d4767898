package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/dbfill/internal/config"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database"
	"github.com/Lumos-Labs-HQ/dbfill/internal/populate"
)

var (
	fillCount    int
	fillTables   []string
	fillCounts   string
	fillSeed     int64
	fillBatch    int
	fillTruncate bool
	fillDryRun   bool
	fillVerbose  bool
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Generate and insert fake data into the connected database",
	Long: `Introspect the connected database and populate every table with
generated rows. Tables are filled in foreign-key dependency order so child
rows always reference parents that exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if fillCounts != "" {
			cfg.CountsFile = fillCounts
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		counts, err := cfg.ResolveCounts()
		if err != nil {
			return err
		}
		for _, arg := range fillTables {
			name, n, err := parseTableCount(arg)
			if err != nil {
				return err
			}
			counts[name] = n
		}

		seed := fillSeed
		if seed == 0 {
			seed = cfg.Seed
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		adapter := database.NewAdapter(cfg.Database.Provider)
		if err := adapter.Connect(cmd.Context(), dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer adapter.Close()

		logger := zap.NewNop()
		if fillVerbose {
			if l, err := zap.NewDevelopment(); err == nil {
				logger = l
				defer logger.Sync()
			}
		}

		p := populate.New(cfg, adapter, logger)
		if err := p.Run(cmd.Context(), populate.Options{
			Count:    fillCount,
			Counts:   counts,
			Seed:     seed,
			Batch:    fillBatch,
			Truncate: fillTruncate,
			DryRun:   fillDryRun,
		}); err != nil {
			color.Red("❌ %v", err)
			return err
		}
		return nil
	},
}

// parseTableCount splits a name=count flag value.
func parseTableCount(arg string) (string, int, error) {
	parts := strings.SplitN(arg, "=", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid --table value %q, want name=count", arg)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid row count in --table value %q", arg)
	}
	return parts[0], n, nil
}

func init() {
	fillCmd.Flags().IntVarP(&fillCount, "count", "n", 0, "Default rows per table (0 picks 10-1000 at random)")
	fillCmd.Flags().StringArrayVarP(&fillTables, "table", "t", nil, "Per-table row count as name=count, repeatable")
	fillCmd.Flags().StringVar(&fillCounts, "counts-file", "", "YAML file mapping table names to row counts")
	fillCmd.Flags().Int64Var(&fillSeed, "seed", 0, "Random seed for reproducible runs (0 uses a random seed)")
	fillCmd.Flags().IntVar(&fillBatch, "batch", 0, "Rows per insert batch (default from config)")
	fillCmd.Flags().BoolVar(&fillTruncate, "truncate", false, "Clear tables before inserting")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "Generate data and report counts without inserting")
	fillCmd.Flags().BoolVarP(&fillVerbose, "verbose", "V", false, "Log per-table progress and diagnostics")

	rootCmd.AddCommand(fillCmd)
}
