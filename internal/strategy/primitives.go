package strategy

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UUID produces uuid.UUID values drawn from the context's random source, so
// seeded runs stay reproducible.
func UUID() Strategy {
	return Func(func(gc *Context) (any, error) {
		u, err := uuid.NewRandomFromReader(gc.Rand)
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		return u, nil
	})
}

// Bool produces random booleans.
func Bool() Strategy {
	return Func(func(gc *Context) (any, error) {
		return gc.Faker.Bool(), nil
	})
}

// Int produces int64 values within the signed range of the given bit width.
// Widths outside 1..64 fall back to 32.
func Int(bits int) Strategy {
	return Func(func(gc *Context) (any, error) {
		if bits < 1 || bits > 64 {
			bits = 32
		}
		if bits >= 64 {
			return int64(gc.Rand.Uint64()), nil
		}
		max := int64(1)<<(bits-1) - 1
		min := -max - 1
		return min + gc.Rand.Int63n(max-min+1), nil
	})
}

// Decimal produces decimal.Decimal values with at most precision-scale
// integer digits and exactly scale fractional digits.
func Decimal(precision, scale int) Strategy {
	return Func(func(gc *Context) (any, error) {
		left := precision - scale
		if left < 1 {
			left = 1
		}
		var b strings.Builder
		if gc.Rand.Intn(2) == 0 {
			b.WriteByte('-')
		}
		nLeft := 1 + gc.Rand.Intn(left)
		b.WriteByte(byte('1' + gc.Rand.Intn(9)))
		for i := 1; i < nLeft; i++ {
			b.WriteByte(byte('0' + gc.Rand.Intn(10)))
		}
		if scale > 0 {
			b.WriteByte('.')
			for i := 0; i < scale; i++ {
				b.WriteByte(byte('0' + gc.Rand.Intn(10)))
			}
		}
		d, err := decimal.NewFromString(b.String())
		if err != nil {
			return nil, fmt.Errorf("decimal: %w", err)
		}
		return d, nil
	})
}

// Date produces a date within the last thirty years, truncated to midnight
// UTC.
func Date() Strategy {
	return Func(func(gc *Context) (any, error) {
		now := time.Now().UTC()
		d := gc.Faker.DateRange(now.AddDate(-30, 0, 0), now)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	})
}

// Timestamp produces a full timestamp within the last thirty years, in UTC.
func Timestamp() Strategy {
	return Func(func(gc *Context) (any, error) {
		now := time.Now().UTC()
		return gc.Faker.DateRange(now.AddDate(-30, 0, 0), now).UTC(), nil
	})
}

// TimeOfDay produces an HH:MM:SS clock string.
func TimeOfDay() Strategy {
	return Func(func(gc *Context) (any, error) {
		return fmt.Sprintf("%02d:%02d:%02d", gc.Rand.Intn(24), gc.Rand.Intn(60), gc.Rand.Intn(60)), nil
	})
}

// Chars produces letter strings of random length between 1 and maxLen.
// A non-positive maxLen means unbounded and uses 20.
func Chars(maxLen int) Strategy {
	return Func(func(gc *Context) (any, error) {
		if maxLen <= 0 {
			maxLen = 20
		}
		n := 1 + gc.Rand.Intn(maxLen)
		return gc.Faker.LetterN(uint(n)), nil
	})
}

// BitString produces strings of '0' and '1' of the given length, defaulting
// to 8 when the length is undeclared.
func BitString(length int) Strategy {
	return Func(func(gc *Context) (any, error) {
		if length <= 0 {
			length = 8
		}
		var b strings.Builder
		for i := 0; i < length; i++ {
			b.WriteByte(byte('0' + gc.Rand.Intn(2)))
		}
		return b.String(), nil
	})
}

// JSONBlob produces a small JSON object rendered as a string.
func JSONBlob() Strategy {
	return Func(func(gc *Context) (any, error) {
		doc := map[string]any{
			"name":   gc.Faker.Name(),
			"email":  gc.Faker.Email(),
			"count":  gc.Faker.Number(1, 1000),
			"active": gc.Faker.Bool(),
		}
		buf, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("json blob: %w", err)
		}
		return string(buf), nil
	})
}

type xmlRecord struct {
	XMLName xml.Name `xml:"record"`
	Name    string   `xml:"name"`
	City    string   `xml:"city"`
	Count   int      `xml:"count"`
}

// XMLBlob produces a small XML document rendered as a string.
func XMLBlob() Strategy {
	return Func(func(gc *Context) (any, error) {
		buf, err := xml.Marshal(xmlRecord{
			Name:  gc.Faker.Name(),
			City:  gc.Faker.City(),
			Count: gc.Faker.Number(1, 1000),
		})
		if err != nil {
			return nil, fmt.Errorf("xml blob: %w", err)
		}
		return string(buf), nil
	})
}

// Text-flavored strategies backed by the fake-data provider. Each returns a
// string value.

func Email() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Email(), nil })
}

func PersonName() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Name(), nil })
}

func CompanyName() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Company(), nil })
}

// CounterpartyName mixes person and company styles, as counterparty columns
// hold either.
func CounterpartyName() Strategy {
	return Func(func(gc *Context) (any, error) {
		if gc.Rand.Intn(2) == 0 {
			return gc.Faker.Company(), nil
		}
		return fmt.Sprintf("%s %s", gc.Faker.Name(), gc.Faker.CompanySuffix()), nil
	})
}

func StreetAddress() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Address().Address, nil })
}

func Street() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Street(), nil })
}

func City() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.City(), nil })
}

func Country() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Country(), nil })
}

func Zip() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Zip(), nil })
}

func Phone() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.Phone(), nil })
}

func Currency() Strategy {
	return Func(func(gc *Context) (any, error) { return gc.Faker.CurrencyShort(), nil })
}
