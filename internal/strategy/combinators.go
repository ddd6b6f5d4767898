package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/dbfill/internal/schema"
)

// DefaultNullProbability is the chance a Nullable strategy emits nil when no
// explicit probability is configured.
const DefaultNullProbability = 0.1

// Fixed always produces value.
func Fixed(value any) Strategy {
	return Func(func(gc *Context) (any, error) {
		return value, nil
	})
}

// Nullable produces nil with probability probNull, otherwise defers to inner.
func Nullable(inner Strategy, probNull float64) Strategy {
	return Func(func(gc *Context) (any, error) {
		if gc.Rand.Float64() < probNull {
			return nil, nil
		}
		return inner.Sample(gc)
	})
}

// OneOf uniformly picks one of options. Sampling with no options is an error.
func OneOf[T any](options []T) Strategy {
	return Func(func(gc *Context) (any, error) {
		if len(options) == 0 {
			return nil, errors.New("one_of: no options")
		}
		return options[gc.Rand.Intn(len(options))], nil
	})
}

// Dict builds one Row by sampling every field strategy, then merging in the
// rows produced by each extra strategy. Extras must produce schema.Row; on a
// key collision the later writer wins and a diagnostic is recorded.
func Dict(fields map[string]Strategy, extras ...Strategy) Strategy {
	return Func(func(gc *Context) (any, error) {
		row := make(schema.Row, len(fields))
		for name, s := range fields {
			v, err := s.Sample(gc)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			row[name] = v
		}
		for _, extra := range extras {
			v, err := extra.Sample(gc)
			if err != nil {
				return nil, err
			}
			part, ok := v.(schema.Row)
			if !ok {
				return nil, fmt.Errorf("dict: extra strategy produced %T, want schema.Row", v)
			}
			for name, val := range part {
				if _, exists := row[name]; exists {
					gc.Diags.Add(Diagnostic{
						Kind:    KindKeyCollision,
						Columns: []string{name},
						Message: fmt.Sprintf("column %q produced by more than one source, keeping the later value", name),
					})
				}
				row[name] = val
			}
		}
		return row, nil
	})
}

// List samples item until it has between minLen and maxLen rows, spending at
// most maxAttempts samples. Each entry of uniqueBy is a column tuple whose
// values must be unique across the produced rows; a tuple containing nil is
// exempt. Item errors wrapping ErrDiscard consume an attempt, any other
// error aborts. Coming up short of minLen is reported as a diagnostic naming
// label, not an error.
func List(label string, item Strategy, minLen, maxLen int, uniqueBy [][]string, maxAttempts int) Strategy {
	return Func(func(gc *Context) (any, error) {
		target := minLen
		if maxLen > minLen {
			target = minLen + gc.Rand.Intn(maxLen-minLen+1)
		}
		seen := make([]map[string]struct{}, len(uniqueBy))
		for i := range seen {
			seen[i] = make(map[string]struct{})
		}

		rows := make([]schema.Row, 0, target)
		for attempts := 0; attempts < maxAttempts && len(rows) < target; attempts++ {
			v, err := item.Sample(gc)
			if err != nil {
				if errors.Is(err, ErrDiscard) {
					continue
				}
				return nil, err
			}
			row, ok := v.(schema.Row)
			if !ok {
				return nil, fmt.Errorf("list: item strategy produced %T, want schema.Row", v)
			}

			duplicate := false
			keys := make([]string, len(uniqueBy))
			for i, cols := range uniqueBy {
				key, enforced := uniqueKey(row, cols)
				if !enforced {
					continue
				}
				if _, taken := seen[i][key]; taken {
					duplicate = true
					break
				}
				keys[i] = key
			}
			if duplicate {
				continue
			}
			for i, key := range keys {
				if key != "" {
					seen[i][key] = struct{}{}
				}
			}
			rows = append(rows, row)
		}

		if len(rows) < minLen {
			gc.Diags.Add(Diagnostic{
				Kind:    KindUnderMinimum,
				Table:   label,
				Message: fmt.Sprintf("%s: exhausted %d attempts with %d of %d required rows", label, maxAttempts, len(rows), minLen),
			})
		}
		return rows, nil
	})
}

// uniqueKey renders the values of cols into a hashable key. The second
// return is false when any value is nil, mirroring SQL unique semantics
// where NULL never collides.
func uniqueKey(row schema.Row, cols []string) (string, bool) {
	var b strings.Builder
	for _, col := range cols {
		v, ok := row[col]
		if !ok || v == nil {
			return "", false
		}
		fmt.Fprintf(&b, "%v\x1f", v)
	}
	return b.String(), true
}
