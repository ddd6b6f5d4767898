package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

func orderSchema() []schema.Table {
	return []schema.Table{
		{
			Name: "orders",
			Columns: map[string]schema.Column{
				"id":          {Name: "id", Type: "int4"},
				"customer_id": {Name: "customer_id", Type: "int4"},
				"status":      {Name: "status", Type: "order_status", EnumValues: []string{"open", "shipped"}},
			},
			Unique: [][]string{{"id"}},
			ForeignKeys: []schema.ForeignKey{
				fk("orders", "customers", schema.ColumnPair{Local: "customer_id", Foreign: "id"}),
			},
		},
		{
			Name: "customers",
			Columns: map[string]schema.Column{
				"id":    {Name: "id", Type: "int4"},
				"email": {Name: "email", Type: "text"},
			},
			Unique: [][]string{{"id"}, {"email"}},
		},
	}
}

func TestGenerateDatasetReferentialIntegrity(t *testing.T) {
	dataset, err := Generate(orderSchema(), Options{
		Seed:      11,
		RowCounts: map[string]int{"customers": 5, "orders": 20},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"customers", "orders"}, dataset.Order)
	require.Len(t, dataset.Tables["customers"], 5)
	require.Len(t, dataset.Tables["orders"], 20)

	customerIDs := make(map[any]bool)
	for _, row := range dataset.Tables["customers"] {
		customerIDs[row["id"]] = true
	}
	for _, row := range dataset.Tables["orders"] {
		assert.True(t, customerIDs[row["customer_id"]],
			"order references unknown customer %v", row["customer_id"])
		assert.Contains(t, []string{"open", "shipped"}, row["status"])
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	first, err := Generate(orderSchema(), Options{
		Seed:      99,
		RowCounts: map[string]int{"customers": 4, "orders": 8},
	})
	require.NoError(t, err)
	second, err := Generate(orderSchema(), Options{
		Seed:      99,
		RowCounts: map[string]int{"customers": 4, "orders": 8},
	})
	require.NoError(t, err)

	assert.Equal(t, first.Order, second.Order)
	for _, name := range first.Order {
		assert.Equal(t, first.Tables[name], second.Tables[name], "table %s differs", name)
	}
}

func TestGenerateCycleIsFatal(t *testing.T) {
	tables := []schema.Table{
		{
			Name:    "a",
			Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}, "b_id": {Name: "b_id", Type: "int4"}},
			ForeignKeys: []schema.ForeignKey{
				fk("a", "b", schema.ColumnPair{Local: "b_id", Foreign: "id"}),
			},
		},
		{
			Name:    "b",
			Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}, "a_id": {Name: "a_id", Type: "int4"}},
			ForeignKeys: []schema.ForeignKey{
				fk("b", "a", schema.ColumnPair{Local: "a_id", Foreign: "id"}),
			},
		},
	}

	_, err := Generate(tables, Options{Seed: 1})
	var cycleErr *schema.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestGenerateInvalidSchemaIsFatal(t *testing.T) {
	tables := []schema.Table{{
		Name:    "t",
		Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}},
		Unique:  [][]string{{"ghost"}},
	}}

	_, err := Generate(tables, Options{Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestGenerateEmptyChildPropagates(t *testing.T) {
	// A child of an unsatisfiable table is itself unsatisfiable when its FK
	// column cannot be NULL, and both degrade to empty tables.
	tables := []schema.Table{
		{
			Name:    "roots",
			Columns: map[string]schema.Column{"id": {Name: "id", Type: "int4"}},
		},
		{
			Name: "mids",
			Columns: map[string]schema.Column{
				"id":      {Name: "id", Type: "int4"},
				"root_id": {Name: "root_id", Type: "int4"},
			},
			ForeignKeys: []schema.ForeignKey{
				fk("mids", "ghosts", schema.ColumnPair{Local: "root_id", Foreign: "id"}),
			},
		},
		{
			Name: "leaves",
			Columns: map[string]schema.Column{
				"id":     {Name: "id", Type: "int4"},
				"mid_id": {Name: "mid_id", Type: "int4"},
			},
			ForeignKeys: []schema.ForeignKey{
				fk("leaves", "mids", schema.ColumnPair{Local: "mid_id", Foreign: "id"}),
			},
		},
	}

	dataset, err := Generate(tables, Options{Seed: 3, RowCounts: map[string]int{"roots": 5}})
	require.NoError(t, err)
	assert.Len(t, dataset.Tables["roots"], 5)
	assert.Empty(t, dataset.Tables["mids"])
	assert.Empty(t, dataset.Tables["leaves"])
	assert.NotEmpty(t, dataset.Diagnostics)
}
