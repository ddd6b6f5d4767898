package generate

import (
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

const (
	// MinRows and MaxRows bound the per-table row count when no explicit
	// count is requested.
	MinRows = 10
	MaxRows = 1000

	maxListAttempts = 10000
)

// GenerateTable produces rows for one table. rowCount <= 0 requests a random
// count between MinRows and MaxRows. A table whose foreign keys admit no
// legal values degrades to zero rows with a diagnostic; unsupported column
// types and other fatal conditions return an error.
func GenerateTable(gc *strategy.Context, table schema.Table, store Store, rowCount int, mapper *Mapper, overrides map[string]strategy.Strategy) ([]schema.Row, error) {
	gen, err := NewRowGenerator(table, mapper, overrides, store)
	if err != nil {
		return nil, err
	}

	// One trial row distinguishes an unsatisfiable table from a transient
	// failure before committing to a full run.
	if _, err := gen.Generate(gc); err != nil {
		var ufk *UnsatisfiableFKError
		if errors.As(err, &ufk) {
			gc.Diags.Add(strategy.Diagnostic{
				Kind:    strategy.KindUnsatisfiableFK,
				Table:   table.Name,
				Columns: ufk.Columns,
				Message: fmt.Sprintf("table %s: foreign keys have no legal values, generating zero rows", table.Name),
			})
			return []schema.Row{}, nil
		}
		return nil, err
	}

	minLen, maxLen := MinRows, MaxRows
	if rowCount > 0 {
		minLen, maxLen = rowCount, rowCount
	}

	// Later rows may still fix a different NULL pattern and hit an
	// unsatisfiable constraint subset; those rows are discarded as failed
	// attempts rather than aborting the table.
	item := strategy.Func(func(gc *strategy.Context) (any, error) {
		v, err := gen.Generate(gc)
		if err != nil {
			var ufk *UnsatisfiableFKError
			if errors.As(err, &ufk) {
				return nil, fmt.Errorf("%w: %v", strategy.ErrDiscard, err)
			}
			return nil, err
		}
		return v, nil
	})

	list := strategy.List(table.Name, item, minLen, maxLen, table.Unique, maxListAttempts)
	v, err := list.Sample(gc)
	if err != nil {
		return nil, err
	}
	return v.([]schema.Row), nil
}
