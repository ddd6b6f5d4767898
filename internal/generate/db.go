package generate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

// Store accumulates generated rows table by table. Tables already committed
// are read-only inputs for later tables' foreign-key resolution.
type Store map[string][]schema.Row

// Dataset is the result of one generation run. Order is a valid insertion
// order over Tables.
type Dataset struct {
	Order       []string
	Tables      Store
	Diagnostics []strategy.Diagnostic
}

// Options configures a generation run. Maps are keyed by table name;
// Overrides is further keyed by column name. ExtraRules extend the text
// column-name dictionary and are tried before the built-ins.
type Options struct {
	Seed       int64
	RowCounts  map[string]int
	Overrides  map[string]map[string]strategy.Strategy
	ExtraRules []strategy.Rule
	Logger     *zap.Logger
}

// Generate produces a relationally consistent dataset for every table:
// tables are generated in dependency order and each table's foreign keys
// draw from the rows its parents actually received.
func Generate(tables []schema.Table, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
	}

	order, err := schema.SortTables(tables)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]schema.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	gc := strategy.NewContext(opts.Seed, logger)
	mapper := NewMapper(opts.ExtraRules)
	store := make(Store, len(tables))

	for _, name := range order {
		table := byName[name]
		rows, err := GenerateTable(gc, table, store, opts.RowCounts[name], mapper, opts.Overrides[name])
		if err != nil {
			return nil, err
		}
		store[name] = rows
		logger.Info("generated table",
			zap.String("table", name),
			zap.Int("rows", len(rows)),
		)
	}

	return &Dataset{
		Order:       order,
		Tables:      store,
		Diagnostics: gc.Diags.Entries(),
	}, nil
}
