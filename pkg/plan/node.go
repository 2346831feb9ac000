package plan

import "minidb/pkg/heap"

// Node is an evaluation-plan node that resolves to a set of handles against
// a single underlying relation, per spec §4.6. TableScan, Select, and
// IndexLookup are pipeline nodes; Project sits at the root and materialises
// rows.
type Node interface {
	Handles() ([]heap.Handle, error)
}

// TableScan is the leaf pipeline node: every live handle in a relation.
type TableScan struct {
	Table *heap.Table
}

func (n *TableScan) Handles() ([]heap.Handle, error) { return n.Table.Select() }

// Select filters its child's handles by a conjunction of equality
// predicates, evaluated against the table's projected rows.
type Select struct {
	Conjunction Conjunction
	Table       *heap.Table
	Child       Node
}

func (n *Select) Handles() ([]heap.Handle, error) {
	handles, err := n.Child.Handles()
	if err != nil {
		return nil, err
	}
	if len(n.Conjunction) == 0 {
		return handles, nil
	}

	var out []heap.Handle
	for _, h := range handles {
		row, err := n.Table.Project(h)
		if err != nil {
			return nil, err
		}
		if n.Conjunction.Matches(row) {
			out = append(out, h)
		}
	}
	return out, nil
}

// IndexProbe is the lookup capability an index exposes to the optimizer,
// decoupling the plan tree from the btree package.
type IndexProbe struct {
	Name    string
	Columns []string
	Lookup  func(key []heap.Value) (heap.Handle, bool, error)
}

// IndexLookup resolves a fully-bound key directly through an index probe,
// replacing a full scan with a single point lookup.
type IndexLookup struct {
	Probe IndexProbe
	Key   []heap.Value
}

func (n *IndexLookup) Handles() ([]heap.Handle, error) {
	h, ok, err := n.Probe.Lookup(n.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []heap.Handle{h}, nil
}

// Project materialises rows for its child's handles, restricted to
// Columns, or every column when Columns is empty (spec §4.6: "Project
// (columns, child)").
type Project struct {
	Columns []string
	Table   *heap.Table
	Child   Node
}

// Rows evaluates the plan, returning the materialised result.
func (n *Project) Rows() ([]heap.Row, error) {
	handles, err := n.Child.Handles()
	if err != nil {
		return nil, err
	}

	rows := make([]heap.Row, 0, len(handles))
	for _, h := range handles {
		var row heap.Row
		if len(n.Columns) == 0 {
			row, err = n.Table.Project(h)
		} else {
			row, err = n.Table.ProjectColumns(h, n.Columns)
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
