// Package plan implements the evaluation-plan tree of spec §4.6: a small
// set of node variants producing either a (relation, handles) pipeline or
// a materialised row list, plus the predicate-pushdown rule that rewrites
// a Select directly above a TableScan into an IndexLookup when an index
// covers exactly the predicate's constrained columns.
package plan

import "minidb/pkg/heap"

// Predicate is one `column = literal` term of a conjunction (spec §4.6:
// "the only predicate shape is a conjunction of column = literal terms").
type Predicate struct {
	Column string
	Value  heap.Value
}

// Conjunction is an AND of equality predicates. An empty conjunction
// matches every row (a SELECT with no WHERE clause).
type Conjunction []Predicate

// Matches reports whether row satisfies every term.
func (c Conjunction) Matches(row heap.Row) bool {
	for _, p := range c {
		v, ok := row[p.Column]
		if !ok || !v.Equal(p.Value) {
			return false
		}
	}
	return true
}

// ColumnSet returns the distinct set of columns the conjunction constrains.
func (c Conjunction) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(c))
	for _, p := range c {
		set[p.Column] = true
	}
	return set
}

// ValuesInOrder returns the conjunction's values for exactly the columns
// named by cols, in cols' order, and true — or false if the conjunction's
// column set is not exactly cols (a partial or superset match cannot be
// pushed into a lookup that needs every key column bound).
func (c Conjunction) ValuesInOrder(cols []string) ([]heap.Value, bool) {
	byCol := make(map[string]heap.Value, len(c))
	for _, p := range c {
		byCol[p.Column] = p.Value
	}
	if len(byCol) != len(cols) {
		return nil, false
	}
	values := make([]heap.Value, len(cols))
	for i, col := range cols {
		v, ok := byCol[col]
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}
