package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

const columnsQuery = `
SELECT table_name, column_name, data_type, column_type, is_nullable,
       character_maximum_length, numeric_precision, numeric_scale
FROM information_schema.columns
WHERE table_schema = DATABASE()
ORDER BY table_name, ordinal_position`

const uniqueQuery = `
SELECT tc.table_name, tc.constraint_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
 AND tc.table_name = kcu.table_name
WHERE tc.constraint_type IN ('UNIQUE', 'PRIMARY KEY')
  AND tc.table_schema = DATABASE()
ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`

const foreignKeysQuery = `
SELECT table_name, constraint_name, column_name,
       referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = DATABASE()
  AND referenced_table_name IS NOT NULL
ORDER BY table_name, constraint_name, ordinal_position`

// typeTags normalizes MySQL data types to the tags the generator
// understands.
var typeTags = map[string]string{
	"tinyint":    "int2",
	"smallint":   "int2",
	"mediumint":  "int4",
	"int":        "int4",
	"bigint":     "int8",
	"decimal":    "numeric",
	"numeric":    "numeric",
	"float":      "float4",
	"double":     "float8",
	"varchar":    "varchar",
	"char":       "bpchar",
	"tinytext":   "text",
	"text":       "text",
	"mediumtext": "text",
	"longtext":   "text",
	"date":       "date",
	"datetime":   "timestamp",
	"timestamp":  "timestamp",
	"time":       "time",
	"json":       "json",
	"bit":        "bit",
}

// Schema introspects every table in the connected database.
func (m *Adapter) Schema(ctx context.Context) ([]schema.Table, error) {
	tables := make(map[string]*schema.Table)

	rows, err := m.db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tableName, colName, dataType, columnType, isNullable string
			maxLen, precision, scale                             sql.NullInt64
		)
		if err := rows.Scan(&tableName, &colName, &dataType, &columnType, &isNullable, &maxLen, &precision, &scale); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		t := tables[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName, Columns: make(map[string]schema.Column)}
			tables[tableName] = t
		}
		col := schema.Column{
			Name:      colName,
			Nullable:  isNullable == "YES",
			MaxLength: int(maxLen.Int64),
			Precision: int(precision.Int64),
			Scale:     int(scale.Int64),
		}
		if dataType == "enum" {
			col.Type = "enum"
			col.EnumValues = extractEnumValues(columnType)
		} else if tag, ok := typeTags[dataType]; ok {
			col.Type = tag
			// tinyint(1) is the conventional boolean.
			if dataType == "tinyint" && strings.HasPrefix(columnType, "tinyint(1)") {
				col.Type = "bool"
			}
		} else {
			col.Type = dataType
		}
		// MySQL reports numeric_precision for integers in decimal digits,
		// not bits; the generator wants bit widths.
		switch col.Type {
		case "int2":
			col.Precision = 16
		case "int4":
			col.Precision = 32
		case "int8":
			col.Precision = 64
		}
		t.Columns[colName] = col
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	if err := m.loadUniqueConstraints(ctx, tables); err != nil {
		return nil, err
	}
	if err := m.loadForeignKeys(ctx, tables); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]schema.Table, 0, len(names))
	for _, name := range names {
		result = append(result, *tables[name])
	}
	return result, nil
}

func (m *Adapter) loadUniqueConstraints(ctx context.Context, tables map[string]*schema.Table) error {
	rows, err := m.db.QueryContext(ctx, uniqueQuery)
	if err != nil {
		return fmt.Errorf("failed to query unique constraints: %w", err)
	}
	defer rows.Close()

	type constraintKey struct{ table, name string }
	var order []constraintKey
	grouped := make(map[constraintKey][]string)
	for rows.Next() {
		var tableName, constraintName, colName string
		if err := rows.Scan(&tableName, &constraintName, &colName); err != nil {
			return fmt.Errorf("failed to scan unique constraint: %w", err)
		}
		key := constraintKey{tableName, constraintName}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], colName)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read unique constraints: %w", err)
	}

	for _, key := range order {
		if t := tables[key.table]; t != nil {
			t.Unique = append(t.Unique, grouped[key])
		}
	}
	return nil
}

func (m *Adapter) loadForeignKeys(ctx context.Context, tables map[string]*schema.Table) error {
	rows, err := m.db.QueryContext(ctx, foreignKeysQuery)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	type constraintKey struct{ table, name string }
	var order []constraintKey
	grouped := make(map[constraintKey]*schema.ForeignKey)
	for rows.Next() {
		var localTable, constraintName, localCol, foreignTable, foreignCol string
		if err := rows.Scan(&localTable, &constraintName, &localCol, &foreignTable, &foreignCol); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		key := constraintKey{localTable, constraintName}
		fk := grouped[key]
		if fk == nil {
			fk = &schema.ForeignKey{LocalTable: localTable, ForeignTable: foreignTable}
			grouped[key] = fk
			order = append(order, key)
		}
		fk.Columns = append(fk.Columns, schema.ColumnPair{Local: localCol, Foreign: foreignCol})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read foreign keys: %w", err)
	}

	for _, key := range order {
		if t := tables[key.table]; t != nil {
			t.ForeignKeys = append(t.ForeignKeys, *grouped[key])
		}
	}
	return nil
}

// extractEnumValues parses labels out of a column type like
// enum('a','b','c').
func extractEnumValues(columnType string) []string {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	parts := strings.Split(columnType[start+1:end], ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		values = append(values, strings.Trim(strings.TrimSpace(part), "'"))
	}
	return values
}
