package schema

import (
	"fmt"
	"strings"
)

// CycleError reports that foreign-key dependencies form a cycle and no
// insertion order exists. Tables lists the unresolvable tables.
type CycleError struct {
	Tables []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("foreign key cycle involving tables: %s", strings.Join(e.Tables, ", "))
}

// SortTables orders table names so that every table appears after all tables
// its foreign keys reference. Tables without any foreign-key relationship are
// appended after the sorted portion. A dependency cycle, including a
// self-referencing foreign key, yields a CycleError.
func SortTables(tables []Table) ([]string, error) {
	// dependents[p] holds the tables whose foreign keys point at p.
	dependents := make(map[string]map[string]bool)
	indegree := make(map[string]int)
	inGraph := make(map[string]bool)

	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			inGraph[t.Name] = true
			inGraph[fk.ForeignTable] = true
			if dependents[fk.ForeignTable] == nil {
				dependents[fk.ForeignTable] = make(map[string]bool)
			}
			if !dependents[fk.ForeignTable][t.Name] {
				dependents[fk.ForeignTable][t.Name] = true
				indegree[t.Name]++
			}
		}
	}

	// Nodes are seeded in input order so the result is deterministic. A
	// referenced table missing from the input still participates as a node.
	known := make(map[string]bool, len(tables))
	var nodes []string
	for _, t := range tables {
		known[t.Name] = true
		if inGraph[t.Name] {
			nodes = append(nodes, t.Name)
		}
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if !known[fk.ForeignTable] {
				known[fk.ForeignTable] = true
				nodes = append(nodes, fk.ForeignTable)
			}
		}
	}

	var queue []string
	for _, name := range nodes {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var order []string
	emitted := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		emitted[name] = true
		for _, dep := range nodes {
			if dependents[name][dep] {
				indegree[dep]--
				if indegree[dep] == 0 {
					queue = append(queue, dep)
				}
			}
		}
	}

	if len(order) < len(nodes) {
		var stuck []string
		for _, name := range nodes {
			if !emitted[name] {
				stuck = append(stuck, name)
			}
		}
		return nil, &CycleError{Tables: stuck}
	}

	for _, t := range tables {
		if !inGraph[t.Name] {
			order = append(order, t.Name)
		}
	}

	// Referenced tables that were never introspected stay out of the result.
	input := make(map[string]bool, len(tables))
	for _, t := range tables {
		input[t.Name] = true
	}
	final := order[:0]
	for _, name := range order {
		if input[name] {
			final = append(final, name)
		}
	}
	return final, nil
}
