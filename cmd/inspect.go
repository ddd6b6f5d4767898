package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/dbfill/internal/config"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database"
	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the introspected schema and planned insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
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

		tables, err := adapter.Schema(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to introspect schema: %w", err)
		}
		if len(tables) == 0 {
			color.Yellow("⚠️  No tables found in database")
			return nil
		}

		for _, table := range tables {
			printTable(table)
		}

		order, err := schema.SortTables(tables)
		if err != nil {
			return err
		}
		color.Cyan("📋 Insertion order: %s", strings.Join(order, " → "))
		return nil
	},
}

func printTable(t schema.Table) {
	color.Green("📦 %s", t.Name)

	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		col := t.Columns[name]
		var attrs []string
		if !col.Nullable {
			attrs = append(attrs, "not null")
		}
		if col.MaxLength > 0 {
			attrs = append(attrs, fmt.Sprintf("max %d", col.MaxLength))
		}
		if len(col.EnumValues) > 0 {
			attrs = append(attrs, fmt.Sprintf("enum(%s)", strings.Join(col.EnumValues, ", ")))
		}
		suffix := ""
		if len(attrs) > 0 {
			suffix = " [" + strings.Join(attrs, ", ") + "]"
		}
		fmt.Printf("  %-24s %s%s\n", name, col.Type, suffix)
	}
	for _, key := range t.Unique {
		fmt.Printf("  unique(%s)\n", strings.Join(key, ", "))
	}
	for _, fk := range t.ForeignKeys {
		fmt.Printf("  fk(%s) -> %s(%s)\n",
			strings.Join(fk.LocalColumns(), ", "),
			fk.ForeignTable,
			strings.Join(fk.ForeignColumns(), ", "))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
