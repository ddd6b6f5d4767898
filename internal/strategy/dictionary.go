package strategy

import "strings"

// Rule binds a word set to the strategy used for unbounded text columns
// whose name contains every word.
type Rule struct {
	Words    []string
	Strategy Strategy
}

// DefaultRules is the built-in column-name dictionary. Matching is first
// rule wins, so more specific multi-word rules precede single-word ones.
func DefaultRules() []Rule {
	return []Rule{
		{Words: []string{"company", "name"}, Strategy: CompanyName()},
		{Words: []string{"counterparty", "name"}, Strategy: CounterpartyName()},
		{Words: []string{"customer", "name"}, Strategy: CounterpartyName()},
		{Words: []string{"supplier", "name"}, Strategy: CounterpartyName()},
		{Words: []string{"street_address"}, Strategy: StreetAddress()},
		{Words: []string{"phone_number"}, Strategy: Phone()},
		{Words: []string{"telephone"}, Strategy: Phone()},
		{Words: []string{"zip_code"}, Strategy: Zip()},
		{Words: []string{"postal_code"}, Strategy: Zip()},
		{Words: []string{"address"}, Strategy: StreetAddress()},
		{Words: []string{"name"}, Strategy: PersonName()},
		{Words: []string{"email"}, Strategy: Email()},
		{Words: []string{"city"}, Strategy: City()},
		{Words: []string{"country"}, Strategy: Country()},
		{Words: []string{"street"}, Strategy: Street()},
		{Words: []string{"currency"}, Strategy: Currency()},
	}
}

// Match returns the strategy of the first rule whose every word occurs in
// colName as a substring, or false when no rule applies.
func Match(rules []Rule, colName string) (Strategy, bool) {
	for _, r := range rules {
		matched := true
		for _, word := range r.Words {
			if !strings.Contains(colName, word) {
				matched = false
				break
			}
		}
		if matched && len(r.Words) > 0 {
			return r.Strategy, true
		}
	}
	return nil, false
}
