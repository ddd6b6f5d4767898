package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

var typeArgs = regexp.MustCompile(`\((\d+)(?:\s*,\s*(\d+))?\)`)

// Schema introspects every user table via the PRAGMA interface.
func (s *Adapter) Schema(ctx context.Context) ([]schema.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table names: %w", err)
	}

	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		t, err := s.introspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (s *Adapter) introspectTable(ctx context.Context, name string) (schema.Table, error) {
	t := schema.Table{Name: name, Columns: make(map[string]schema.Column)}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(name)))
	if err != nil {
		return t, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer rows.Close()
	// pk > 0 marks primary key membership in declaration order.
	type pkCol struct {
		name string
		pos  int
	}
	var pkCols []pkCol
	for rows.Next() {
		var (
			cid, notNull, pk  int
			colName, declType string
			dflt              sql.NullString
		)
		if err := rows.Scan(&cid, &colName, &declType, &notNull, &dflt, &pk); err != nil {
			return t, fmt.Errorf("failed to scan column of %s: %w", name, err)
		}
		t.Columns[colName] = columnFromDecl(colName, declType, notNull == 0)
		if pk > 0 {
			pkCols = append(pkCols, pkCol{colName, pk})
		}
	}
	if err := rows.Err(); err != nil {
		return t, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	if len(pkCols) > 0 {
		for i := 1; i < len(pkCols); i++ {
			for j := i; j > 0 && pkCols[j-1].pos > pkCols[j].pos; j-- {
				pkCols[j-1], pkCols[j] = pkCols[j], pkCols[j-1]
			}
		}
		key := make([]string, len(pkCols))
		for i, c := range pkCols {
			key[i] = c.name
		}
		t.Unique = append(t.Unique, key)
	}

	if err := s.loadUniqueIndexes(ctx, &t); err != nil {
		return t, err
	}
	if err := s.loadForeignKeys(ctx, &t); err != nil {
		return t, err
	}
	return t, nil
}

func (s *Adapter) loadUniqueIndexes(ctx context.Context, t *schema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdentifier(t.Name)))
	if err != nil {
		return fmt.Errorf("failed to read indexes of %s: %w", t.Name, err)
	}
	defer rows.Close()
	var uniqueIndexes []string
	for rows.Next() {
		var (
			seq, unique, partial int
			idxName, origin      string
		)
		if err := rows.Scan(&seq, &idxName, &unique, &origin, &partial); err != nil {
			return fmt.Errorf("failed to scan index of %s: %w", t.Name, err)
		}
		// origin "pk" duplicates the primary key already collected.
		if unique == 1 && origin != "pk" && partial == 0 {
			uniqueIndexes = append(uniqueIndexes, idxName)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read indexes of %s: %w", t.Name, err)
	}

	for _, idxName := range uniqueIndexes {
		cols, err := s.indexColumns(ctx, idxName)
		if err != nil {
			return err
		}
		if len(cols) > 0 {
			t.Unique = append(t.Unique, cols)
		}
	}
	return nil
}

func (s *Adapter) indexColumns(ctx context.Context, idxName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdentifier(idxName)))
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", idxName, err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString
		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, fmt.Errorf("failed to scan index %s: %w", idxName, err)
		}
		// Expression index members have a NULL name; skip the whole index
		// by returning nothing for it.
		if !colName.Valid {
			return nil, nil
		}
		cols = append(cols, colName.String)
	}
	return cols, rows.Err()
}

func (s *Adapter) loadForeignKeys(ctx context.Context, t *schema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdentifier(t.Name)))
	if err != nil {
		return fmt.Errorf("failed to read foreign keys of %s: %w", t.Name, err)
	}
	defer rows.Close()

	var order []int
	grouped := make(map[int]*schema.ForeignKey)
	for rows.Next() {
		var (
			id, seq                       int
			foreignTable, from            string
			to                            sql.NullString
			onUpdate, onDelete, matchMode string
		)
		if err := rows.Scan(&id, &seq, &foreignTable, &from, &to, &onUpdate, &onDelete, &matchMode); err != nil {
			return fmt.Errorf("failed to scan foreign key of %s: %w", t.Name, err)
		}
		fk := grouped[id]
		if fk == nil {
			fk = &schema.ForeignKey{LocalTable: t.Name, ForeignTable: foreignTable}
			grouped[id] = fk
			order = append(order, id)
		}
		// A NULL "to" references the parent's implicit primary key; resolve
		// it to rowid's alias when declared, otherwise drop the constraint
		// since there is nothing to join on.
		foreignCol := to.String
		if !to.Valid {
			foreignCol = ""
		}
		fk.Columns = append(fk.Columns, schema.ColumnPair{Local: from, Foreign: foreignCol})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read foreign keys of %s: %w", t.Name, err)
	}

	for _, id := range order {
		fk := grouped[id]
		complete := true
		for _, pair := range fk.Columns {
			if pair.Foreign == "" {
				complete = false
				break
			}
		}
		if complete {
			t.ForeignKeys = append(t.ForeignKeys, *fk)
		}
	}
	return nil
}

// columnFromDecl maps a declared SQLite type to the generator's type tags
// using the usual affinity keywords.
func columnFromDecl(name, declType string, nullable bool) schema.Column {
	col := schema.Column{Name: name, Nullable: nullable}
	upper := strings.ToUpper(declType)

	if m := typeArgs.FindStringSubmatch(declType); m != nil {
		col.MaxLength, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			col.Precision = col.MaxLength
			col.Scale, _ = strconv.Atoi(m[2])
			col.MaxLength = 0
		}
	}

	switch {
	case strings.Contains(upper, "INT"):
		col.Type = "int8"
		col.Precision = 64
	case strings.Contains(upper, "BOOL"):
		col.Type = "bool"
	case strings.Contains(upper, "DATETIME"), strings.Contains(upper, "TIMESTAMP"):
		col.Type = "timestamp"
		col.MaxLength = 0
	case strings.Contains(upper, "DATE"):
		col.Type = "date"
	case strings.Contains(upper, "CHAR"), strings.Contains(upper, "CLOB"), strings.Contains(upper, "TEXT"):
		col.Type = "varchar"
	case strings.Contains(upper, "DECIMAL"), strings.Contains(upper, "NUMERIC"):
		col.Type = "numeric"
	case strings.Contains(upper, "REAL"), strings.Contains(upper, "FLOA"), strings.Contains(upper, "DOUB"):
		col.Type = "float8"
	case strings.Contains(upper, "UUID"):
		col.Type = "uuid"
	case strings.Contains(upper, "JSON"):
		col.Type = "json"
	default:
		// Unknown affinities, BLOB included, surface as unsupported.
		col.Type = strings.ToLower(declType)
	}
	return col
}
