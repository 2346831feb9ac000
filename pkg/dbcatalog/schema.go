// Package dbcatalog implements the self-describing schema catalog of spec
// §4.4: three bootstrap system tables (_tables, _columns, _indices) that
// resolve table names to live relations and index names to their key
// column sequence, lazily initialised on first access and never
// themselves catalog-visible.
package dbcatalog

import "minidb/pkg/heap"

// TablesName, ColumnsName, and IndicesName are the three schema tables.
// They are excluded from SHOW TABLES and can never be dropped (spec §3.2).
const (
	TablesName  = "_tables"
	ColumnsName = "_columns"
	IndicesName = "_indices"
)

// IsSchemaTable reports whether name is one of the three bootstrap system
// tables.
func IsSchemaTable(name string) bool {
	switch name {
	case TablesName, ColumnsName, IndicesName:
		return true
	default:
		return false
	}
}

// tablesSchema, columnsSchema, and indicesSchema are hardcoded because
// _tables and _columns describe every other table's schema but, being
// bootstrap singletons, cannot describe their own (spec §4.4).
var tablesSchema = heap.Schema{
	{Name: "table_name", Attr: heap.TextAttribute},
}

var columnsSchema = heap.Schema{
	{Name: "table_name", Attr: heap.TextAttribute},
	{Name: "column_name", Attr: heap.TextAttribute},
	{Name: "data_type", Attr: heap.TextAttribute},
}

var indicesSchema = heap.Schema{
	{Name: "table_name", Attr: heap.TextAttribute},
	{Name: "index_name", Attr: heap.TextAttribute},
	{Name: "seq_in_index", Attr: heap.IntAttribute},
	{Name: "column_name", Attr: heap.TextAttribute},
	{Name: "index_type", Attr: heap.TextAttribute},
	{Name: "is_unique", Attr: heap.BooleanAttribute},
}
