package generate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

// RowGenerator produces rows for one table against already-generated parent
// data. Foreign-key enforcement follows SQL MATCH SIMPLE: a constraint is
// only enforced on rows where every local column is non-NULL, so the
// generator first decides per row which nullable FK columns go NULL and only
// resolves the constraints that remain fully non-NULL.
type RowGenerator struct {
	table     schema.Table
	store     Store
	overrides map[string]strategy.Strategy

	colOrder []string // all column names, sorted for determinism
	fkCols   []string // union of FK local columns, declaration order
	defaults map[string]strategy.Strategy

	// resolutions memoizes FK resolution per enforced-constraint subset, so
	// the join cost is paid once and each row only re-samples candidates.
	resolutions map[string]Resolution
	warned      map[string]bool
}

// NewRowGenerator resolves every column's default strategy up front so an
// unsupported column type fails the run before any row is sampled.
func NewRowGenerator(table schema.Table, mapper *Mapper, overrides map[string]strategy.Strategy, store Store) (*RowGenerator, error) {
	g := &RowGenerator{
		table:       table,
		store:       store,
		overrides:   overrides,
		defaults:    make(map[string]strategy.Strategy, len(table.Columns)),
		resolutions: make(map[string]Resolution),
		warned:      make(map[string]bool),
	}

	for name := range table.Columns {
		g.colOrder = append(g.colOrder, name)
	}
	sort.Strings(g.colOrder)

	for _, name := range g.colOrder {
		if s, ok := overrides[name]; ok {
			g.defaults[name] = s
			continue
		}
		s, err := mapper.ColumnStrategy(table.Name, table.Columns[name])
		if err != nil {
			return nil, err
		}
		g.defaults[name] = s
	}

	seen := make(map[string]bool)
	for _, fk := range table.ForeignKeys {
		for _, local := range fk.LocalColumns() {
			if !seen[local] {
				seen[local] = true
				g.fkCols = append(g.fkCols, local)
			}
		}
	}
	return g, nil
}

// Sample implements strategy.Strategy.
func (g *RowGenerator) Sample(gc *strategy.Context) (any, error) {
	return g.Generate(gc)
}

// Generate produces one row. Rows whose enforced foreign keys admit no legal
// values fail with UnsatisfiableFKError.
func (g *RowGenerator) Generate(gc *strategy.Context) (schema.Row, error) {
	// Decide NULLs on FK columns first by sampling each one's would-be
	// strategy once. The drawn value is only a coin flip; non-NULL draws are
	// discarded and the column is re-sampled or resolved below.
	nullFixed := make(map[string]bool, len(g.fkCols))
	for _, col := range g.fkCols {
		v, err := g.defaults[col].Sample(gc)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		if v == nil {
			nullFixed[col] = true
		}
	}

	var enforced []schema.ForeignKey
	var keyParts []string
	for i, fk := range g.table.ForeignKeys {
		skip := false
		for _, local := range fk.LocalColumns() {
			if nullFixed[local] {
				skip = true
				break
			}
		}
		if !skip {
			enforced = append(enforced, fk)
			keyParts = append(keyParts, strconv.Itoa(i))
		}
	}

	var res Resolution
	if len(enforced) > 0 {
		key := strings.Join(keyParts, ",")
		cached, ok := g.resolutions[key]
		if !ok {
			cached = ResolveForeignKeys(gc, g.table.Name, enforced, g.store)
			g.resolutions[key] = cached
		}
		res = cached
		if res.Strategy == nil {
			return nil, &UnsatisfiableFKError{Table: g.table.Name, Columns: res.Columns}
		}
	}

	resolved := make(map[string]bool, len(res.Columns))
	for _, col := range res.Columns {
		resolved[col] = true
	}
	for name := range g.overrides {
		if resolved[name] && !g.warned[name] {
			g.warned[name] = true
			gc.Diags.Add(strategy.Diagnostic{
				Kind:    strategy.KindOverrideIgnored,
				Table:   g.table.Name,
				Columns: []string{name},
				Message: fmt.Sprintf("table %s: override for column %q is ignored, its value is dictated by a foreign key", g.table.Name, name),
			})
		}
	}

	row := make(schema.Row, len(g.colOrder))
	for _, name := range g.colOrder {
		if nullFixed[name] || resolved[name] {
			continue
		}
		v, err := g.defaults[name].Sample(gc)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		row[name] = v
	}

	if res.Strategy != nil {
		v, err := res.Strategy.Sample(gc)
		if err != nil {
			return nil, err
		}
		fkRow, ok := v.(schema.Row)
		if !ok {
			return nil, fmt.Errorf("fk resolution produced %T, want schema.Row", v)
		}
		for name, val := range fkRow {
			if _, exists := row[name]; exists {
				gc.Diags.Add(strategy.Diagnostic{
					Kind:    strategy.KindKeyCollision,
					Table:   g.table.Name,
					Columns: []string{name},
					Message: fmt.Sprintf("table %s: column %q written twice, keeping the resolved value", g.table.Name, name),
				})
			}
			row[name] = val
		}
	}
	for name := range nullFixed {
		row[name] = nil
	}
	return row, nil
}
