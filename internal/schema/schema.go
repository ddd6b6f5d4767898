package schema

import "fmt"

// Row is a single generated record keyed by column name. Values are nil,
// bool, int64, string, time.Time, uuid.UUID or decimal.Decimal depending on
// the column type.
type Row map[string]any

// Column describes one column of an introspected table. Type is the
// provider-normalized type tag (uuid, date, timestamp, varchar, int4, ...).
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	MaxLength  int      // character or bit maximum length, 0 when undeclared
	Precision  int      // numeric precision or integer bit width, 0 when undeclared
	Scale      int      // numeric scale, 0 when undeclared
	EnumValues []string // labels for enum columns, nil otherwise
}

// ColumnPair ties one local foreign-key column to the foreign column it
// references.
type ColumnPair struct {
	Local   string
	Foreign string
}

// ForeignKey is one foreign-key constraint. Columns preserves declaration
// order so composite keys keep their local/foreign pairing.
type ForeignKey struct {
	LocalTable   string
	ForeignTable string
	Columns      []ColumnPair
}

// LocalColumns returns the constraint's local columns in declaration order.
func (fk ForeignKey) LocalColumns() []string {
	cols := make([]string, len(fk.Columns))
	for i, p := range fk.Columns {
		cols[i] = p.Local
	}
	return cols
}

// ForeignColumns returns the referenced columns in declaration order.
func (fk ForeignKey) ForeignColumns() []string {
	cols := make([]string, len(fk.Columns))
	for i, p := range fk.Columns {
		cols[i] = p.Foreign
	}
	return cols
}

// ForeignToLocal maps each referenced column name to its local counterpart.
func (fk ForeignKey) ForeignToLocal() map[string]string {
	m := make(map[string]string, len(fk.Columns))
	for _, p := range fk.Columns {
		m[p.Foreign] = p.Local
	}
	return m
}

// Table is one introspected table with its columns and constraints. Each
// entry of Unique is the ordered column tuple of one unique or primary-key
// constraint.
type Table struct {
	Name        string
	Columns     map[string]Column
	Unique      [][]string
	ForeignKeys []ForeignKey
}

// Validate checks that every constraint references columns the table
// actually declares.
func (t Table) Validate() error {
	for _, key := range t.Unique {
		for _, col := range key {
			if _, ok := t.Columns[col]; !ok {
				return fmt.Errorf("table %s: unique constraint references unknown column %q", t.Name, col)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, pair := range fk.Columns {
			if _, ok := t.Columns[pair.Local]; !ok {
				return fmt.Errorf("table %s: foreign key references unknown column %q", t.Name, pair.Local)
			}
		}
	}
	return nil
}
