package generate

import (
	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
	"github.com/Lumos-Labs-HQ/dbfill/internal/strategy"
)

const (
	defaultNumericPrecision = 53
	defaultIntBits          = 32
)

// Mapper turns column metadata into value strategies. Caller-supplied rules
// are consulted before the built-in column-name dictionary.
type Mapper struct {
	rules []strategy.Rule
}

// NewMapper builds a Mapper whose text heuristics try extra rules first,
// then the defaults.
func NewMapper(extra []strategy.Rule) *Mapper {
	rules := make([]strategy.Rule, 0, len(extra)+16)
	rules = append(rules, extra...)
	rules = append(rules, strategy.DefaultRules()...)
	return &Mapper{rules: rules}
}

// ColumnStrategy maps one column to its default strategy. Nullable columns
// are wrapped so they emit NULL part of the time. Unknown types return an
// UnsupportedTypeError.
func (m *Mapper) ColumnStrategy(table string, col schema.Column) (strategy.Strategy, error) {
	base, err := m.baseStrategy(table, col)
	if err != nil {
		return nil, err
	}
	if col.Nullable {
		return strategy.Nullable(base, strategy.DefaultNullProbability), nil
	}
	return base, nil
}

func (m *Mapper) baseStrategy(table string, col schema.Column) (strategy.Strategy, error) {
	// Enum labels win over the declared type so enum-typed columns always
	// draw from their label set.
	if len(col.EnumValues) > 0 {
		return strategy.OneOf(col.EnumValues), nil
	}

	switch col.Type {
	case "uuid":
		return strategy.UUID(), nil
	case "date":
		return strategy.Date(), nil
	case "timestamp", "timestamptz":
		return strategy.Timestamp(), nil
	case "time", "timetz":
		return strategy.TimeOfDay(), nil
	case "varchar", "text", "bpchar", "char":
		// The name dictionary only applies to unbounded text; a declared
		// length cap wins over realism.
		if col.MaxLength == 0 {
			if s, ok := strategy.Match(m.rules, col.Name); ok {
				return s, nil
			}
		}
		return strategy.Chars(col.MaxLength), nil
	case "numeric", "money", "float4", "float8":
		precision := col.Precision
		if precision == 0 {
			precision = defaultNumericPrecision
		}
		return strategy.Decimal(precision, col.Scale), nil
	case "bool":
		return strategy.Bool(), nil
	case "int2", "int4", "int8":
		bits := col.Precision
		if bits == 0 {
			bits = defaultIntBits
		}
		return strategy.Int(bits), nil
	case "json", "jsonb":
		return strategy.JSONBlob(), nil
	case "bit", "varbit":
		return strategy.BitString(col.MaxLength), nil
	case "xml":
		return strategy.XMLBlob(), nil
	}
	return nil, &UnsupportedTypeError{Table: table, Column: col.Name, Type: col.Type}
}
