package generate

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

const (
	// maxSampledRows caps the candidate set handed to the row strategy.
	maxSampledRows = 1000
	// maxJoinRows bounds intermediate join results so pathological schemas
	// cannot materialize explosive cross products.
	maxJoinRows = 100000
)

// Resolution is the outcome of foreign-key resolution: the local columns the
// constraints span and a strategy sampling one legal assignment for all of
// them at once. A nil Strategy means no legal assignment exists.
type Resolution struct {
	Columns  []string
	Strategy strategy.Strategy
}

// ResolveForeignKeys computes the joint value options for the given
// constraints against already-generated parent data. Constraints sharing
// local columns are inner-joined on the shared columns, independent ones are
// cross-joined, and the final candidate set is capped at maxSampledRows with
// a diagnostic when truncated.
func ResolveForeignKeys(gc *strategy.Context, table string, fks []schema.ForeignKey, store Store) Resolution {
	if len(fks) == 0 {
		return Resolution{}
	}

	seen := make(map[string]bool)
	var seenOrder []string
	var candidates []schema.Row
	truncated := false
	first := true

	for _, fk := range fks {
		foreignCols := fk.ForeignColumns()
		parents := store[fk.ForeignTable]
		projected := make([]schema.Row, 0, len(parents))
		for _, parent := range parents {
			p := project(parent, foreignCols)
			// A NULL parent value can never satisfy the FK equality.
			if hasNull(p, foreignCols) {
				continue
			}
			projected = append(projected, p)
		}
		if len(projected) == 0 {
			return Resolution{Columns: localColumnUnion(fks)}
		}

		mapping := fk.ForeignToLocal()
		renamed := make([]schema.Row, len(projected))
		for i, p := range projected {
			renamed[i] = rename(p, mapping)
		}

		var overlap []string
		for _, local := range fk.LocalColumns() {
			if seen[local] {
				overlap = append(overlap, local)
			} else {
				seen[local] = true
				seenOrder = append(seenOrder, local)
			}
		}

		if first {
			candidates = renamed
			first = false
			continue
		}
		var hitBound bool
		if len(overlap) > 0 {
			candidates, hitBound = innerJoin(candidates, renamed, overlap, maxJoinRows)
		} else {
			candidates, hitBound = crossJoin(candidates, renamed, maxJoinRows)
		}
		truncated = truncated || hitBound
	}

	if len(candidates) == 0 {
		return Resolution{Columns: seenOrder}
	}
	if len(candidates) > maxSampledRows {
		candidates = candidates[:maxSampledRows]
		truncated = true
	}
	if truncated {
		gc.Diags.Add(strategy.Diagnostic{
			Kind:    strategy.KindJoinTruncated,
			Table:   table,
			Columns: seenOrder,
			Message: fmt.Sprintf("table %s: foreign key candidate set truncated to %d rows", table, len(candidates)),
		})
	}
	return Resolution{Columns: seenOrder, Strategy: strategy.OneOf(candidates)}
}

// project copies only cols out of row.
func project(row schema.Row, cols []string) schema.Row {
	out := make(schema.Row, len(cols))
	for _, col := range cols {
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}
	return out
}

// rename returns a copy of row with columns renamed per mapping; columns not
// in the mapping keep their name.
func rename(row schema.Row, mapping map[string]string) schema.Row {
	out := make(schema.Row, len(row))
	for col, v := range row {
		if renamed, ok := mapping[col]; ok {
			out[renamed] = v
		} else {
			out[col] = v
		}
	}
	return out
}

func hasNull(row schema.Row, cols []string) bool {
	for _, col := range cols {
		if v, ok := row[col]; !ok || v == nil {
			return true
		}
	}
	return false
}

func localColumnUnion(fks []schema.ForeignKey) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, fk := range fks {
		for _, local := range fk.LocalColumns() {
			if !seen[local] {
				seen[local] = true
				cols = append(cols, local)
			}
		}
	}
	return cols
}

func matchOn(a, b schema.Row, cols []string) bool {
	for _, col := range cols {
		if fmt.Sprintf("%v", a[col]) != fmt.Sprintf("%v", b[col]) {
			return false
		}
	}
	return true
}

func merge(a, b schema.Row) schema.Row {
	out := make(schema.Row, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// innerJoin joins left and right on equality over cols, stopping at limit
// rows. The second return reports whether the limit cut the result short.
func innerJoin(left, right []schema.Row, cols []string, limit int) ([]schema.Row, bool) {
	var out []schema.Row
	for _, l := range left {
		for _, r := range right {
			if !matchOn(l, r, cols) {
				continue
			}
			if len(out) >= limit {
				return out, true
			}
			out = append(out, merge(l, r))
		}
	}
	return out, false
}

// crossJoin pairs every left row with every right row, stopping at limit.
func crossJoin(left, right []schema.Row, limit int) ([]schema.Row, bool) {
	var out []schema.Row
	for _, l := range left {
		for _, r := range right {
			if len(out) >= limit {
				return out, true
			}
			out = append(out, merge(l, r))
		}
	}
	return out, false
}
