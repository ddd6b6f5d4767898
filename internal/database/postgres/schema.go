package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

const columnsQuery = `
WITH user_enums AS (
    SELECT t.typname AS enum_name,
           array_agg(e.enumlabel ORDER BY e.enumsortorder) AS enum_values
    FROM pg_type t
    JOIN pg_enum e ON t.oid = e.enumtypid
    JOIN pg_namespace n ON n.oid = t.typnamespace
    WHERE t.typtype = 'e' AND n.nspname = current_schema()
    GROUP BY t.typname
)
SELECT c.table_name,
       c.column_name,
       c.udt_name,
       c.is_nullable = 'YES',
       c.character_maximum_length,
       c.numeric_precision,
       c.numeric_scale,
       ue.enum_values
FROM information_schema.columns c
JOIN pg_tables t
  ON c.table_schema = t.schemaname AND c.table_name = t.tablename
LEFT JOIN user_enums ue ON c.udt_name = ue.enum_name
WHERE c.table_schema = current_schema()
ORDER BY c.table_name, c.ordinal_position`

const uniqueQuery = `
SELECT tc.table_name, tc.constraint_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
 AND tc.table_name = kcu.table_name
WHERE tc.constraint_type IN ('UNIQUE', 'PRIMARY KEY')
  AND tc.table_schema = current_schema()
ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position`

// Foreign keys come from pg_constraint directly because
// information_schema loses the column pairing of composite keys.
const foreignKeysQuery = `
SELECT cl.relname AS local_table,
       fcl.relname AS foreign_table,
       con.conname AS constraint_name,
       local_col.attname AS local_column,
       foreign_col.attname AS foreign_column
FROM pg_constraint con
JOIN pg_class cl ON cl.oid = con.conrelid
JOIN pg_namespace nsp ON nsp.oid = cl.relnamespace
JOIN pg_class fcl ON fcl.oid = con.confrelid
JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS src_local(attnum, ord) ON true
JOIN pg_attribute local_col
  ON local_col.attrelid = con.conrelid AND local_col.attnum = src_local.attnum
JOIN LATERAL unnest(con.confkey) WITH ORDINALITY AS src_foreign(attnum, ord)
  ON src_foreign.ord = src_local.ord
JOIN pg_attribute foreign_col
  ON foreign_col.attrelid = con.confrelid AND foreign_col.attnum = src_foreign.attnum
WHERE con.contype = 'f' AND nsp.nspname = current_schema()
ORDER BY cl.relname, con.conname, src_local.ord`

// Schema introspects every table in the current schema.
func (p *Adapter) Schema(ctx context.Context) ([]schema.Table, error) {
	tables := make(map[string]*schema.Table)

	rows, err := p.pool.Query(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tableName, colName, udtName string
			nullable                    bool
			maxLen, precision, scale    *int
			enumValues                  *[]string
		)
		if err := rows.Scan(&tableName, &colName, &udtName, &nullable, &maxLen, &precision, &scale, &enumValues); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		var labels []string
		if enumValues != nil {
			labels = *enumValues
		}
		t := tables[tableName]
		if t == nil {
			t = &schema.Table{Name: tableName, Columns: make(map[string]schema.Column)}
			tables[tableName] = t
		}
		t.Columns[colName] = schema.Column{
			Name:       colName,
			Type:       udtName,
			Nullable:   nullable,
			MaxLength:  deref(maxLen),
			Precision:  deref(precision),
			Scale:      deref(scale),
			EnumValues: labels,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	if err := p.loadUniqueConstraints(ctx, tables); err != nil {
		return nil, err
	}
	if err := p.loadForeignKeys(ctx, tables); err != nil {
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

func (p *Adapter) loadUniqueConstraints(ctx context.Context, tables map[string]*schema.Table) error {
	rows, err := p.pool.Query(ctx, uniqueQuery)
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

func (p *Adapter) loadForeignKeys(ctx context.Context, tables map[string]*schema.Table) error {
	rows, err := p.pool.Query(ctx, foreignKeysQuery)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	type constraintKey struct{ table, name string }
	var order []constraintKey
	grouped := make(map[constraintKey]*schema.ForeignKey)
	for rows.Next() {
		var localTable, foreignTable, constraintName, localCol, foreignCol string
		if err := rows.Scan(&localTable, &foreignTable, &constraintName, &localCol, &foreignCol); err != nil {
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

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
