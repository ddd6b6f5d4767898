package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

// Adapter abstracts one database provider for schema introspection and bulk
// insertion.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Schema returns every user table in the connected database with its
	// columns, unique constraints and foreign keys.
	Schema(ctx context.Context) ([]schema.Table, error)

	// InsertRows bulk-inserts rows into table. Each row's values are ordered
	// per columns.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) error

	// Truncate clears the given tables. Callers pass reverse dependency
	// order so children are cleared before their parents.
	Truncate(ctx context.Context, tables []string) error
}
