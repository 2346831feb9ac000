package exec

import "minidb/pkg/heap"

// Result is the quadruple spec §4.8 calls QueryResult: a column schema, a
// materialised row list, and a status message. Any of Columns, Attrs, or
// Rows may be nil for a pure DDL result that carries only a message.
type Result struct {
	Columns []string
	Attrs   []heap.ColumnAttribute
	Rows    []heap.Row
	Message string
}
