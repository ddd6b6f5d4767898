package populate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/dbfill/internal/config"
	"github.com/Lumos-Labs-HQ/dbfill/internal/database"
	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

type insertCall struct {
	table   string
	columns []string
	rows    [][]any
}

// fakeAdapter records calls instead of touching a database.
type fakeAdapter struct {
	tables    []schema.Table
	inserts   []insertCall
	truncated []string
}

var _ database.Adapter = (*fakeAdapter)(nil)

func (f *fakeAdapter) Connect(ctx context.Context, url string) error { return nil }
func (f *fakeAdapter) Close() error                                  { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error                { return nil }

func (f *fakeAdapter) Schema(ctx context.Context) ([]schema.Table, error) {
	return f.tables, nil
}

func (f *fakeAdapter) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	f.inserts = append(f.inserts, insertCall{table: table, columns: columns, rows: rows})
	return nil
}

func (f *fakeAdapter) Truncate(ctx context.Context, tables []string) error {
	f.truncated = append(f.truncated, tables...)
	return nil
}

func testSchema() []schema.Table {
	return []schema.Table{
		{
			Name: "orders",
			Columns: map[string]schema.Column{
				"id":          {Name: "id", Type: "int4"},
				"customer_id": {Name: "customer_id", Type: "int4"},
			},
			ForeignKeys: []schema.ForeignKey{{
				LocalTable:   "orders",
				ForeignTable: "customers",
				Columns:      []schema.ColumnPair{{Local: "customer_id", Foreign: "id"}},
			}},
		},
		{
			Name:    "customers",
			Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}},
			Unique:  [][]string{{"id"}},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Database:  config.Database{Provider: "postgresql", URLEnv: "DATABASE_URL"},
		BatchSize: 1000,
	}
}

func TestRunInsertsInDependencyOrder(t *testing.T) {
	adapter := &fakeAdapter{tables: testSchema()}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{
		Seed:   17,
		Counts: map[string]int{"customers": 5, "orders": 12},
	})
	require.NoError(t, err)

	require.Len(t, adapter.inserts, 2)
	assert.Equal(t, "customers", adapter.inserts[0].table)
	assert.Equal(t, "orders", adapter.inserts[1].table)
	assert.Len(t, adapter.inserts[0].rows, 5)
	assert.Len(t, adapter.inserts[1].rows, 12)

	// Column order matches the declared value order.
	assert.Equal(t, []string{"customer_id", "id"}, adapter.inserts[1].columns)
}

func TestRunBatchesInserts(t *testing.T) {
	adapter := &fakeAdapter{tables: testSchema()}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{
		Seed:   17,
		Batch:  10,
		Counts: map[string]int{"customers": 25, "orders": 0},
	})
	require.NoError(t, err)

	var batches []int
	for _, call := range adapter.inserts {
		if call.table == "customers" {
			batches = append(batches, len(call.rows))
		}
	}
	assert.Equal(t, []int{10, 10, 5}, batches)
}

func TestRunTruncateReverseOrder(t *testing.T) {
	adapter := &fakeAdapter{tables: testSchema()}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{
		Seed:     17,
		Truncate: true,
		Counts:   map[string]int{"customers": 3, "orders": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "customers"}, adapter.truncated)
}

func TestRunDryRunSkipsInserts(t *testing.T) {
	adapter := &fakeAdapter{tables: testSchema()}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{
		Seed:   17,
		DryRun: true,
		Counts: map[string]int{"customers": 3, "orders": 3},
	})
	require.NoError(t, err)
	assert.Empty(t, adapter.inserts)
	assert.Empty(t, adapter.truncated)
}

func TestRunRejectsInvalidIdentifiers(t *testing.T) {
	adapter := &fakeAdapter{tables: []schema.Table{{
		Name:    "users; drop table users",
		Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}},
	}}}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestRunNoTables(t *testing.T) {
	adapter := &fakeAdapter{}
	p := New(testConfig(), adapter, nil)

	err := p.Run(context.Background(), Options{Seed: 1})
	require.NoError(t, err)
	assert.Empty(t, adapter.inserts)
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id.String(), normalizeValue(id))

	d := decimal.RequireFromString("12.34")
	assert.Equal(t, "12.34", normalizeValue(d))

	assert.Equal(t, int64(5), normalizeValue(int64(5)))
	assert.Nil(t, normalizeValue(nil))
}
