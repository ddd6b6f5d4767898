package populate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/dbfill/internal/config"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database"
	"github.com/Lumos-Labs-HQ/dbfill/internal/generate"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

// validIdentifier validates SQL identifiers (table/column names) to prevent SQL injection
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Options controls one populate run.
type Options struct {
	// Count is the default per-table row count; 0 lets the engine pick one.
	Count int
	// Counts overrides Count per table.
	Counts map[string]int

	Seed     int64
	Batch    int
	Truncate bool
	DryRun   bool
}

type Populator struct {
	config  *config.Config
	adapter database.Adapter
	logger  *zap.Logger
}

func New(cfg *config.Config, adapter database.Adapter, logger *zap.Logger) *Populator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Populator{config: cfg, adapter: adapter, logger: logger}
}

// Run introspects the connected database, generates a relationally
// consistent dataset and inserts it in dependency order.
func (p *Populator) Run(ctx context.Context, opts Options) error {
	color.Cyan("🔍 Introspecting database schema...")

	tables, err := p.adapter.Schema(ctx)
	if err != nil {
		return fmt.Errorf("failed to introspect schema: %w", err)
	}
	if len(tables) == 0 {
		color.Yellow("⚠️  No tables found in database")
		return nil
	}

	// Validate all table and column names
	for _, table := range tables {
		if !isValidIdentifier(table.Name) {
			return fmt.Errorf("invalid table name: %s", table.Name)
		}
		for _, col := range table.Columns {
			if !isValidIdentifier(col.Name) {
				return fmt.Errorf("invalid column name in table %s: %s", table.Name, col.Name)
			}
		}
	}

	rowCounts := make(map[string]int, len(tables))
	if opts.Count > 0 {
		for _, table := range tables {
			rowCounts[table.Name] = opts.Count
		}
	}
	for name, n := range opts.Counts {
		rowCounts[name] = n
	}

	color.Green("📊 Found %d tables", len(tables))
	color.Cyan("🎲 Generating data...")

	dataset, err := generate.Generate(tables, generate.Options{
		Seed:      opts.Seed,
		RowCounts: rowCounts,
		Logger:    p.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	color.Cyan("📋 Insertion order: %s", strings.Join(dataset.Order, " → "))

	if opts.DryRun {
		p.printSummary(dataset)
		return nil
	}

	if opts.Truncate {
		reversed := make([]string, len(dataset.Order))
		for i, name := range dataset.Order {
			reversed[len(dataset.Order)-1-i] = name
		}
		color.Yellow("🧹 Truncating tables...")
		if err := p.adapter.Truncate(ctx, reversed); err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}
	}

	byName := make(map[string][]string, len(tables))
	for _, table := range tables {
		cols := make([]string, 0, len(table.Columns))
		for name := range table.Columns {
			cols = append(cols, name)
		}
		sort.Strings(cols)
		byName[table.Name] = cols
	}

	batch := opts.Batch
	if batch <= 0 {
		batch = p.config.BatchSize
	}

	for _, name := range dataset.Order {
		rows := dataset.Tables[name]
		if len(rows) == 0 {
			color.Yellow("⚠️  %s: no rows generated, skipping", name)
			continue
		}
		columns := byName[name]
		values := make([][]any, len(rows))
		for i, row := range rows {
			vals := make([]any, len(columns))
			for j, col := range columns {
				vals[j] = normalizeValue(row[col])
			}
			values[i] = vals
		}
		for start := 0; start < len(values); start += batch {
			end := start + batch
			if end > len(values) {
				end = len(values)
			}
			if err := p.adapter.InsertRows(ctx, name, columns, values[start:end]); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", name, err)
			}
		}
		color.Green("✅ %s: inserted %d rows", name, len(rows))
	}

	p.reportDiagnostics(dataset.Diagnostics)
	color.Green("\n✅ Database population completed successfully!")
	return nil
}

func (p *Populator) printSummary(dataset *generate.Dataset) {
	color.Cyan("\n📝 Dry run, nothing inserted:")
	for _, name := range dataset.Order {
		fmt.Printf("  %s: %d rows\n", name, len(dataset.Tables[name]))
	}
	p.reportDiagnostics(dataset.Diagnostics)
}

func (p *Populator) reportDiagnostics(diags []strategy.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	color.Yellow("\n⚠️  %d diagnostics:", len(diags))
	for _, d := range diags {
		color.Yellow("  [%s] %s", d.Kind, d.Message)
	}
}

// isValidIdentifier checks if a string is a valid SQL identifier
func isValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// normalizeValue converts generator value types the drivers have no codec
// for into their text form.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case decimal.Decimal:
		return t.String()
	default:
		return v
	}
}
