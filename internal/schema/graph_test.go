package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWithFK(name string, fks ...ForeignKey) Table {
	return Table{Name: name, Columns: map[string]Column{}, ForeignKeys: fks}
}

func fkTo(local, foreign string, pairs ...ColumnPair) ForeignKey {
	if len(pairs) == 0 {
		pairs = []ColumnPair{{Local: foreign + "_id", Foreign: "id"}}
	}
	return ForeignKey{LocalTable: local, ForeignTable: foreign, Columns: pairs}
}

func indexOf(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, n := range order {
		if n == name {
			return i
		}
	}
	t.Fatalf("table %s not in order %v", name, order)
	return -1
}

func TestSortTablesChain(t *testing.T) {
	tables := []Table{
		tableWithFK("grandchild", fkTo("grandchild", "child")),
		tableWithFK("child", fkTo("child", "parent")),
		tableWithFK("parent"),
	}

	order, err := SortTables(tables)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Less(t, indexOf(t, order, "parent"), indexOf(t, order, "child"))
	assert.Less(t, indexOf(t, order, "child"), indexOf(t, order, "grandchild"))
}

func TestSortTablesDiamond(t *testing.T) {
	tables := []Table{
		tableWithFK("child", fkTo("child", "left"), fkTo("child", "right")),
		tableWithFK("left", fkTo("left", "root")),
		tableWithFK("right", fkTo("right", "root")),
		tableWithFK("root"),
	}

	order, err := SortTables(tables)
	require.NoError(t, err)
	require.Len(t, order, 4)
	assert.Less(t, indexOf(t, order, "root"), indexOf(t, order, "left"))
	assert.Less(t, indexOf(t, order, "root"), indexOf(t, order, "right"))
	assert.Less(t, indexOf(t, order, "left"), indexOf(t, order, "child"))
	assert.Less(t, indexOf(t, order, "right"), indexOf(t, order, "child"))
}

func TestSortTablesAppendsIsolatedTables(t *testing.T) {
	tables := []Table{
		tableWithFK("isolated"),
		tableWithFK("child", fkTo("child", "parent")),
		tableWithFK("parent"),
	}

	order, err := SortTables(tables)
	require.NoError(t, err)
	require.Len(t, order, 3)
	// Tables without FK relationships come after the dependency-sorted ones.
	assert.Equal(t, "isolated", order[2])
}

func TestSortTablesCycle(t *testing.T) {
	tables := []Table{
		tableWithFK("a", fkTo("a", "b")),
		tableWithFK("b", fkTo("b", "a")),
	}

	_, err := SortTables(tables)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"a", "b"}, cycleErr.Tables)
}

func TestSortTablesSelfReference(t *testing.T) {
	tables := []Table{
		tableWithFK("employees", fkTo("employees", "employees", ColumnPair{Local: "manager_id", Foreign: "id"})),
	}

	_, err := SortTables(tables)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"employees"}, cycleErr.Tables)
}

func TestSortTablesDuplicateConstraints(t *testing.T) {
	// Two distinct FK constraints between the same pair of tables must not
	// double-count the dependency edge.
	tables := []Table{
		tableWithFK("child",
			fkTo("child", "parent", ColumnPair{Local: "first_id", Foreign: "id"}),
			fkTo("child", "parent", ColumnPair{Local: "second_id", Foreign: "id"}),
		),
		tableWithFK("parent"),
	}

	order, err := SortTables(tables)
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "child"}, order)
}

func TestValidate(t *testing.T) {
	valid := Table{
		Name:    "users",
		Columns: map[string]Column{"id": {Name: "id", Type: "int4"}},
		Unique:  [][]string{{"id"}},
	}
	require.NoError(t, valid.Validate())

	badUnique := valid
	badUnique.Unique = [][]string{{"missing"}}
	assert.Error(t, badUnique.Validate())

	badFK := valid
	badFK.Unique = nil
	badFK.ForeignKeys = []ForeignKey{fkTo("users", "orgs", ColumnPair{Local: "missing", Foreign: "id"})}
	assert.Error(t, badFK.Validate())
}
