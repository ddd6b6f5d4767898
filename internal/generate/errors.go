package generate

import (
	"fmt"
	"strings"
)

// UnsupportedTypeError aborts a run: the schema declares a column type no
// strategy exists for. Generating a structurally invalid value would be
// worse than failing.
type UnsupportedTypeError struct {
	Table  string
	Column string
	Type   string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported column type %q on %s.%s", e.Type, e.Table, e.Column)
}

// UnsatisfiableFKError marks a row whose enforced foreign-key constraints
// admit no legal value combination. It is recoverable at table scope: the
// table degrades to zero rows instead of aborting the run.
type UnsatisfiableFKError struct {
	Table   string
	Columns []string
}

func (e *UnsatisfiableFKError) Error() string {
	return fmt.Sprintf("table %s: no legal values for foreign key columns %s", e.Table, strings.Join(e.Columns, ", "))
}
