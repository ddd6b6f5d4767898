package generate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

func testContext(t *testing.T) *strategy.Context {
	t.Helper()
	return strategy.NewContext(42, nil)
}

func TestMapperEnumBeforeType(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)
	col := schema.Column{Name: "status", Type: "order_status", EnumValues: []string{"open", "closed"}}

	s, err := mapper.ColumnStrategy("orders", col)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		v, err := s.Sample(gc)
		require.NoError(t, err)
		assert.Contains(t, []string{"open", "closed"}, v)
	}
}

func TestMapperUnsupportedType(t *testing.T) {
	mapper := NewMapper(nil)
	col := schema.Column{Name: "payload", Type: "bytea"}

	_, err := mapper.ColumnStrategy("events", col)
	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "events", unsupported.Table)
	assert.Equal(t, "payload", unsupported.Column)
	assert.Equal(t, "bytea", unsupported.Type)
}

func TestMapperUUID(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)
	s, err := mapper.ColumnStrategy("users", schema.Column{Name: "id", Type: "uuid"})
	require.NoError(t, err)
	v, err := s.Sample(gc)
	require.NoError(t, err)
	assert.IsType(t, uuid.UUID{}, v)
}

func TestMapperNullableWraps(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)
	s, err := mapper.ColumnStrategy("users", schema.Column{Name: "age", Type: "int4", Nullable: true})
	require.NoError(t, err)

	sawNil := false
	for i := 0; i < 500 && !sawNil; i++ {
		v, err := s.Sample(gc)
		require.NoError(t, err)
		sawNil = v == nil
	}
	assert.True(t, sawNil, "nullable column never produced nil")
}

func TestMapperTextHeuristicOnlyWhenUnbounded(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)

	unbounded, err := mapper.ColumnStrategy("users", schema.Column{Name: "email", Type: "text"})
	require.NoError(t, err)
	v, err := unbounded.Sample(gc)
	require.NoError(t, err)
	assert.Contains(t, v.(string), "@")

	// A declared length cap disables the heuristic.
	bounded, err := mapper.ColumnStrategy("users", schema.Column{Name: "email", Type: "varchar", MaxLength: 5})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		v, err := bounded.Sample(gc)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(v.(string)), 5)
	}
}

func TestMapperCallerRulesWin(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper([]strategy.Rule{
		{Words: []string{"email"}, Strategy: strategy.Fixed("pinned@example.com")},
	})

	s, err := mapper.ColumnStrategy("users", schema.Column{Name: "email", Type: "text"})
	require.NoError(t, err)
	v, err := s.Sample(gc)
	require.NoError(t, err)
	assert.Equal(t, "pinned@example.com", v)
}

func TestMapperIntDefaults(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)

	s, err := mapper.ColumnStrategy("t", schema.Column{Name: "n", Type: "int2", Precision: 16})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		v, err := s.Sample(gc)
		require.NoError(t, err)
		n := v.(int64)
		assert.GreaterOrEqual(t, n, int64(-32768))
		assert.LessOrEqual(t, n, int64(32767))
	}
}

func TestMapperBitString(t *testing.T) {
	gc := testContext(t)
	mapper := NewMapper(nil)
	s, err := mapper.ColumnStrategy("t", schema.Column{Name: "flags", Type: "bit", MaxLength: 4})
	require.NoError(t, err)
	v, err := s.Sample(gc)
	require.NoError(t, err)
	assert.Len(t, v.(string), 4)
}
