// Package exec implements the statement dispatcher of spec §4.7: CREATE
// and DROP for tables and indexes with journaled rollback, schema
// introspection, and INSERT/DELETE/SELECT built on the evaluation-plan
// tree of pkg/plan.
package exec

import (
	"fmt"

	"minidb/pkg/btree"
	"minidb/pkg/dbcatalog"
	"minidb/pkg/dberr"
	"minidb/pkg/dblog"
	"minidb/pkg/heap"
	"minidb/pkg/plan"
	"minidb/pkg/sql"
)

// Executor holds the process's catalog and the set of open index handles,
// threaded explicitly rather than reached for as ambient globals (spec §9).
type Executor struct {
	Catalog *dbcatalog.Catalog
	indexes map[string]*btree.Index // keyed by table + "." + index name
}

// New builds an Executor over an already-open catalog.
func New(cat *dbcatalog.Catalog) *Executor {
	return &Executor{Catalog: cat, indexes: make(map[string]*btree.Index)}
}

// Close closes every open index handle and the catalog.
func (e *Executor) Close() error {
	for _, ix := range e.indexes {
		_ = ix.Close()
	}
	return e.Catalog.Close()
}

func indexKey(table, index string) string { return table + "." + index }

// openIndex returns a cached open index or opens it from disk.
func (e *Executor) openIndex(table, index string) (*btree.Index, error) {
	key := indexKey(table, index)
	if ix, ok := e.indexes[key]; ok {
		return ix, nil
	}
	cols, err := e.Catalog.IndexColumns(table, index)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, dberr.Newf(dberr.Relation, "unknown index %s on table %s", index, table)
	}
	colNames := make([]string, len(cols))
	for i, c := range cols {
		colNames[i] = c.Column
	}
	ix, err := btree.Open(e.Catalog.IndexPath(table, index), table, index, colNames)
	if err != nil {
		return nil, err
	}
	e.indexes[key] = ix
	return ix, nil
}

func (e *Executor) evictIndex(table, index string) {
	delete(e.indexes, indexKey(table, index))
}

// Execute dispatches a parsed statement to the matching handler.
func (e *Executor) Execute(stmt sql.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *sql.CreateTable:
		return e.createTable(s)
	case *sql.DropTable:
		return e.dropTable(s)
	case *sql.CreateIndex:
		return e.createIndex(s)
	case *sql.DropIndex:
		return e.dropIndex(s)
	case *sql.Show:
		return e.show(s)
	case *sql.Insert:
		return e.insert(s)
	case *sql.Delete:
		return e.delete(s)
	case *sql.Select:
		return e.selectRows(s)
	default:
		return nil, dberr.Newf(dberr.Exec, "unrecognised statement type %T", stmt)
	}
}

func (e *Executor) createTable(s *sql.CreateTable) (*Result, error) {
	if dbcatalog.IsSchemaTable(s.Table) {
		return nil, dberr.Newf(dberr.Relation, "cannot create schema table %s", s.Table)
	}

	exists, err := e.Catalog.TableExists(s.Table)
	if err != nil {
		return nil, err
	}
	if exists {
		if s.IfNotExists {
			return &Result{Message: fmt.Sprintf("table %s already exists", s.Table)}, nil
		}
		return nil, dberr.Newf(dberr.Relation, "table %s already exists", s.Table)
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if seen[c.Name] {
			return nil, dberr.Newf(dberr.Relation, "duplicate column %s.%s", s.Table, c.Name)
		}
		seen[c.Name] = true
	}

	var journal Journal
	tableHandle, err := e.Catalog.InsertTableRow(s.Table)
	if err != nil {
		return nil, err
	}
	journal.Push(func() error { return e.Catalog.DeleteTableRow(tableHandle) })

	for _, c := range s.Columns {
		colHandle, err := e.Catalog.InsertColumnRow(s.Table, c.Name, c.Attr)
		if err != nil {
			journal.Unwind()
			return nil, err
		}
		journal.Push(func() error { return e.Catalog.DeleteColumnRow(colHandle) })
	}

	file, err := heap.Create(e.Catalog.TablePath(s.Table))
	if err != nil {
		journal.Unwind()
		return nil, err
	}
	if err := file.Close(); err != nil {
		journal.Unwind()
		return nil, err
	}

	dblog.Logger().Info("created table", "table", s.Table, "columns", len(s.Columns))
	return &Result{Message: fmt.Sprintf("created table %s", s.Table)}, nil
}

func (e *Executor) dropTable(s *sql.DropTable) (*Result, error) {
	if dbcatalog.IsSchemaTable(s.Table) {
		return nil, dberr.Newf(dberr.Relation, "cannot drop schema table %s", s.Table)
	}
	exists, err := e.Catalog.TableExists(s.Table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dberr.Newf(dberr.Relation, "unknown table %s", s.Table)
	}

	indexNames, err := e.Catalog.IndexNames(s.Table)
	if err != nil {
		return nil, err
	}

	for _, name := range indexNames {
		ix, err := e.openIndex(s.Table, name)
		if err != nil {
			return nil, err
		}
		if err := ix.Drop(); err != nil {
			return nil, err
		}
		e.evictIndex(s.Table, name)
	}

	for _, name := range indexNames {
		cols, err := e.Catalog.IndexColumns(s.Table, name)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			if err := e.Catalog.DeleteIndexRow(c.Handle); err != nil {
				return nil, err
			}
		}
	}

	// Physical file before catalog rows: a crash between the two leaves
	// the catalog, not the filesystem, as the authoritative record of
	// whether the table still exists (spec §5's DROP ordering guarantee).
	if err := e.Catalog.DropTableFile(s.Table); err != nil {
		return nil, err
	}
	if err := e.Catalog.DeleteColumnsOf(s.Table); err != nil {
		return nil, err
	}
	tableHandle, ok, err := e.Catalog.TableRowHandle(s.Table)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := e.Catalog.DeleteTableRow(tableHandle); err != nil {
			return nil, err
		}
	}

	dblog.Logger().Info("dropped table", "table", s.Table, "indexes", len(indexNames))
	return &Result{Message: fmt.Sprintf("dropped table %s", s.Table)}, nil
}

func (e *Executor) createIndex(s *sql.CreateIndex) (*Result, error) {
	exists, err := e.Catalog.TableExists(s.Table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dberr.Newf(dberr.Relation, "unknown table %s", s.Table)
	}

	unique := s.Using == "BTREE"

	var journal Journal
	for i, col := range s.Columns {
		h, err := e.Catalog.InsertIndexRow(s.Table, s.Index, int32(i+1), col, s.Using, unique)
		if err != nil {
			journal.Unwind()
			return nil, err
		}
		journal.Push(func() error { return e.Catalog.DeleteIndexRow(h) })
	}

	if s.Using != "BTREE" {
		journal.Unwind()
		return nil, dberr.Newf(dberr.Exec, "index type %s is not implemented", s.Using)
	}

	tbl, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		journal.Unwind()
		return nil, err
	}
	handles, err := tbl.Select()
	if err != nil {
		journal.Unwind()
		return nil, err
	}
	rows := make([]heap.Row, len(handles))
	for i, h := range handles {
		row, err := tbl.Project(h)
		if err != nil {
			journal.Unwind()
			return nil, err
		}
		rows[i] = row
	}

	ix, err := btree.Create(e.Catalog.IndexPath(s.Table, s.Index), s.Table, s.Index, s.Columns)
	if err != nil {
		journal.Unwind()
		return nil, err
	}
	if err := ix.BuildFromRows(rows, handles); err != nil {
		_ = ix.Drop()
		journal.Unwind()
		return nil, err
	}
	e.indexes[indexKey(s.Table, s.Index)] = ix

	dblog.Logger().Info("created index", "index", s.Index, "table", s.Table, "rows", len(rows))
	return &Result{Message: fmt.Sprintf("created index %s", s.Index)}, nil
}

func (e *Executor) dropIndex(s *sql.DropIndex) (*Result, error) {
	ix, err := e.openIndex(s.Table, s.Index)
	if err != nil {
		return nil, err
	}
	if err := ix.Drop(); err != nil {
		return nil, err
	}
	e.evictIndex(s.Table, s.Index)

	cols, err := e.Catalog.IndexColumns(s.Table, s.Index)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if err := e.Catalog.DeleteIndexRow(c.Handle); err != nil {
			return nil, err
		}
	}

	return &Result{Message: fmt.Sprintf("dropped index %s", s.Index)}, nil
}

func (e *Executor) show(s *sql.Show) (*Result, error) {
	switch s.Kind {
	case sql.ShowTables:
		return e.showTables()
	case sql.ShowColumns:
		return e.showColumns(s.Table)
	case sql.ShowIndex:
		return e.showIndex(s.Table)
	default:
		return nil, dberr.New(dberr.Exec, "unrecognised SHOW kind")
	}
}

func (e *Executor) showTables() (*Result, error) {
	names, err := e.Catalog.ListTables()
	if err != nil {
		return nil, err
	}
	rows := make([]heap.Row, len(names))
	for i, n := range names {
		rows[i] = heap.Row{"table_name": heap.NewText(n)}
	}
	return &Result{
		Columns: []string{"table_name"},
		Attrs:   []heap.ColumnAttribute{heap.TextAttribute},
		Rows:    rows,
		Message: fmt.Sprintf("successfully returned %d rows", len(rows)),
	}, nil
}

func (e *Executor) showColumns(table string) (*Result, error) {
	exists, err := e.Catalog.TableExists(table)
	if err != nil {
		return nil, err
	}
	if !exists && !dbcatalog.IsSchemaTable(table) {
		return nil, dberr.Newf(dberr.Relation, "unknown table %s", table)
	}

	schema, err := e.Catalog.ColumnsOf(table)
	if err != nil {
		return nil, err
	}
	rows := make([]heap.Row, len(schema))
	for i, col := range schema {
		rows[i] = heap.Row{
			"table_name":  heap.NewText(table),
			"column_name": heap.NewText(col.Name),
			"data_type":   heap.NewText(col.Attr.String()),
		}
	}
	return &Result{
		Columns: []string{"table_name", "column_name", "data_type"},
		Attrs:   []heap.ColumnAttribute{heap.TextAttribute, heap.TextAttribute, heap.TextAttribute},
		Rows:    rows,
		Message: fmt.Sprintf("successfully returned %d rows", len(rows)),
	}, nil
}

func (e *Executor) showIndex(table string) (*Result, error) {
	descriptors, err := e.Catalog.IndexDescriptors(table)
	if err != nil {
		return nil, err
	}
	return &Result{
		Columns: []string{"table_name", "index_name", "seq_in_index", "column_name", "index_type", "is_unique"},
		Attrs: []heap.ColumnAttribute{
			heap.TextAttribute, heap.TextAttribute, heap.IntAttribute,
			heap.TextAttribute, heap.TextAttribute, heap.BooleanAttribute,
		},
		Rows:    descriptors,
		Message: fmt.Sprintf("successfully returned %d rows", len(descriptors)),
	}, nil
}

func (e *Executor) insert(s *sql.Insert) (*Result, error) {
	tbl, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, err
	}

	cols := s.Columns
	if cols == nil {
		cols = tbl.Schema.ColumnNames()
	}
	if len(cols) != len(s.Values) {
		return nil, dberr.Newf(dberr.Relation, "insert into %s: %d columns but %d values", s.Table, len(cols), len(s.Values))
	}

	row := make(heap.Row, len(cols))
	for i, c := range cols {
		row[c] = s.Values[i].Value
	}

	handle, err := tbl.Insert(row)
	if err != nil {
		return nil, err
	}

	names, err := e.Catalog.IndexNames(s.Table)
	if err != nil {
		return nil, err
	}

	var updated []*btree.Index
	var updatedKeys [][]heap.Value
	for _, name := range names {
		ix, err := e.openIndex(s.Table, name)
		if err != nil {
			e.rollbackInsert(tbl, handle, updated, updatedKeys)
			return nil, err
		}
		key := keyColumnsFor(ix, row)
		if err := ix.Insert(key, handle); err != nil {
			e.rollbackInsert(tbl, handle, updated, updatedKeys)
			return nil, err
		}
		updated = append(updated, ix)
		updatedKeys = append(updatedKeys, key)
	}

	return &Result{Message: fmt.Sprintf("inserted 1 row into %s", s.Table)}, nil
}

// rollbackInsert is the best-effort compensating step of spec §4.7's
// INSERT contract: remove the row from every index already updated, then
// the row itself, swallowing any failure so it cannot mask the original.
func (e *Executor) rollbackInsert(tbl *heap.Table, handle heap.Handle, updated []*btree.Index, keys [][]heap.Value) {
	for i, ix := range updated {
		if err := ix.Delete(keys[i]); err != nil {
			dblog.Logger().Warn("rollback index delete failed", "index", ix.Name, "error", err)
		}
	}
	if err := tbl.Delete(handle); err != nil {
		dblog.Logger().Warn("rollback row delete failed", "error", err)
	}
}

func keyColumnsFor(ix *btree.Index, row heap.Row) []heap.Value {
	values := make([]heap.Value, len(ix.Columns))
	for i, c := range ix.Columns {
		values[i] = row[c]
	}
	return values
}

func (e *Executor) conditionsToConjunction(conds []sql.Condition) plan.Conjunction {
	conj := make(plan.Conjunction, len(conds))
	for i, c := range conds {
		conj[i] = plan.Predicate{Column: c.Column, Value: c.Value.Value}
	}
	return conj
}

func (e *Executor) indexProbes(table string) ([]plan.IndexProbe, error) {
	names, err := e.Catalog.IndexNames(table)
	if err != nil {
		return nil, err
	}
	probes := make([]plan.IndexProbe, 0, len(names))
	for _, name := range names {
		cols, err := e.Catalog.IndexColumns(table, name)
		if err != nil {
			return nil, err
		}
		colNames := make([]string, len(cols))
		for i, c := range cols {
			colNames[i] = c.Column
		}
		name := name
		probes = append(probes, plan.IndexProbe{
			Name:    name,
			Columns: colNames,
			Lookup: func(key []heap.Value) (heap.Handle, bool, error) {
				ix, err := e.openIndex(table, name)
				if err != nil {
					return heap.Handle{}, false, err
				}
				return ix.Lookup(key)
			},
		})
	}
	return probes, nil
}

func (e *Executor) buildScanPlan(table *heap.Table, where []sql.Condition, tableName string) (plan.Node, error) {
	var node plan.Node = &plan.TableScan{Table: table}
	conj := e.conditionsToConjunction(where)
	if len(conj) == 0 {
		return node, nil
	}

	sel := &plan.Select{Conjunction: conj, Table: table, Child: node}
	probes, err := e.indexProbes(tableName)
	if err != nil {
		return nil, err
	}
	return plan.Optimize(sel, probes), nil
}

func (e *Executor) delete(s *sql.Delete) (*Result, error) {
	tbl, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, err
	}

	node, err := e.buildScanPlan(tbl, s.Where, s.Table)
	if err != nil {
		return nil, err
	}
	handles, err := node.Handles()
	if err != nil {
		return nil, err
	}

	names, err := e.Catalog.IndexNames(s.Table)
	if err != nil {
		return nil, err
	}
	indexes := make([]*btree.Index, 0, len(names))
	for _, name := range names {
		ix, err := e.openIndex(s.Table, name)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, ix)
	}

	for _, h := range handles {
		row, err := tbl.Project(h)
		if err != nil {
			return nil, err
		}
		for _, ix := range indexes {
			if err := ix.Delete(keyColumnsFor(ix, row)); err != nil {
				dblog.Logger().Warn("index delete failed during DELETE", "index", ix.Name, "error", err)
			}
		}
		if err := tbl.Delete(h); err != nil {
			return nil, err
		}
	}

	return &Result{Message: fmt.Sprintf("deleted %d rows from %s", len(handles), s.Table)}, nil
}

func (e *Executor) selectRows(s *sql.Select) (*Result, error) {
	tbl, err := e.Catalog.GetTable(s.Table)
	if err != nil {
		return nil, err
	}

	node, err := e.buildScanPlan(tbl, s.Where, s.Table)
	if err != nil {
		return nil, err
	}

	proj := &plan.Project{Columns: s.Columns, Table: tbl, Child: node}
	rows, err := proj.Rows()
	if err != nil {
		return nil, err
	}

	cols := s.Columns
	if len(cols) == 0 {
		cols = tbl.Schema.ColumnNames()
	}
	attrs := make([]heap.ColumnAttribute, len(cols))
	for i, c := range cols {
		attr, _ := tbl.Schema.Attr(c)
		attrs[i] = attr
	}

	return &Result{
		Columns: cols,
		Attrs:   attrs,
		Rows:    rows,
		Message: fmt.Sprintf("successfully returned %d rows", len(rows)),
	}, nil
}
