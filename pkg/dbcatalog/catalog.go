package dbcatalog

import (
	"path/filepath"
	"sort"

	"minidb/pkg/dberr"
	"minidb/pkg/heap"
)

// Catalog is the process-wide, lazily-initialised schema authority: the
// three bootstrap system tables plus a cache of every user table opened so
// far. Spec §9 asks that catalog singletons not be ambient globals; callers
// thread a *Catalog through an explicit execution context instead of
// reaching for a package-level variable.
type Catalog struct {
	dir     string
	tables  *heap.Table
	columns *heap.Table
	indices *heap.Table
	cache   map[string]*heap.Table
}

// Open bootstraps the three system tables under dir, lazily creating their
// backing files if this is a fresh database directory.
func Open(dir string) (*Catalog, error) {
	tablesFile, err := heap.Open(filepath.Join(dir, TablesName+".db"))
	if err != nil {
		return nil, err
	}
	columnsFile, err := heap.Open(filepath.Join(dir, ColumnsName+".db"))
	if err != nil {
		return nil, err
	}
	indicesFile, err := heap.Open(filepath.Join(dir, IndicesName+".db"))
	if err != nil {
		return nil, err
	}

	return &Catalog{
		dir:     dir,
		tables:  heap.NewTable(TablesName, tablesSchema, tablesFile),
		columns: heap.NewTable(ColumnsName, columnsSchema, columnsFile),
		indices: heap.NewTable(IndicesName, indicesSchema, indicesFile),
		cache:   make(map[string]*heap.Table),
	}, nil
}

// Close releases every open table, system and cached alike.
func (c *Catalog) Close() error {
	for _, t := range c.cache {
		_ = t.Close()
	}
	if err := c.tables.Close(); err != nil {
		return err
	}
	if err := c.columns.Close(); err != nil {
		return err
	}
	return c.indices.Close()
}

// TablePath returns the on-disk path of a user table's heap file (spec
// §6.4: "<table>.db per user table").
func (c *Catalog) TablePath(name string) string {
	return filepath.Join(c.dir, name+".db")
}

// IndexPath returns the on-disk path of a B-tree index file (spec §6.4:
// "<table>-<index>.db per B-tree index").
func (c *Catalog) IndexPath(table, index string) string {
	return filepath.Join(c.dir, table+"-"+index+".db")
}

// TableExists reports whether name has a row in _tables.
func (c *Catalog) TableExists(name string) (bool, error) {
	handles, err := c.tables.Select()
	if err != nil {
		return false, err
	}
	for _, h := range handles {
		row, err := c.tables.Project(h)
		if err != nil {
			return false, err
		}
		if row["table_name"].Text == name {
			return true, nil
		}
	}
	return false, nil
}

// ListTables returns every user-visible table name, i.e. every _tables row
// (the three schema tables never have rows of their own, spec §3.2, but the
// schema-name filter is kept as defense in depth per spec §4.7's SHOW
// TABLES contract).
func (c *Catalog) ListTables() ([]string, error) {
	handles, err := c.tables.Select()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, h := range handles {
		row, err := c.tables.Project(h)
		if err != nil {
			return nil, err
		}
		name := row["table_name"].Text
		if !IsSchemaTable(name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// ColumnsOf reconstructs a user table's schema from its _columns rows,
// ordered by (block, record) handle — the order those rows were inserted
// in during CREATE TABLE, which is the declared column order (spec §4.4:
// "_tables.get_table(name) ... constructing it by reading its schema from
// _columns").
func (c *Catalog) ColumnsOf(name string) (heap.Schema, error) {
	switch name {
	case TablesName:
		return tablesSchema, nil
	case ColumnsName:
		return columnsSchema, nil
	case IndicesName:
		return indicesSchema, nil
	}

	handles, err := c.columns.Select()
	if err != nil {
		return nil, err
	}

	type match struct {
		h   heap.Handle
		row heap.Row
	}
	var matches []match
	for _, h := range handles {
		row, err := c.columns.Project(h)
		if err != nil {
			return nil, err
		}
		if row["table_name"].Text == name {
			matches = append(matches, match{h: h, row: row})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].h.Block != matches[j].h.Block {
			return matches[i].h.Block < matches[j].h.Block
		}
		return matches[i].h.Record < matches[j].h.Record
	})

	schema := make(heap.Schema, 0, len(matches))
	for _, m := range matches {
		attr, err := heap.ParseColumnAttribute(m.row["data_type"].Text)
		if err != nil {
			return nil, dberr.Wrap(err, "dbcatalog.ColumnsOf")
		}
		schema = append(schema, heap.Column{Name: m.row["column_name"].Text, Attr: attr})
	}
	return schema, nil
}

// GetTable returns a cached live table for name, opening and caching it on
// first access (spec §3.3: "reopened lazily on first access").
func (c *Catalog) GetTable(name string) (*heap.Table, error) {
	switch name {
	case TablesName:
		return c.tables, nil
	case ColumnsName:
		return c.columns, nil
	case IndicesName:
		return c.indices, nil
	}

	if t, ok := c.cache[name]; ok {
		return t, nil
	}

	schema, err := c.ColumnsOf(name)
	if err != nil {
		return nil, err
	}
	if len(schema) == 0 {
		return nil, dberr.Newf(dberr.Relation, "unknown table %s", name)
	}

	file, err := heap.Open(c.TablePath(name))
	if err != nil {
		return nil, err
	}
	t := heap.NewTable(name, schema, file)
	c.cache[name] = t
	return t, nil
}

// DropTableFile closes and deletes the heap file backing name, whether or
// not it was previously cached, and evicts it from the cache. It opens the
// file by path rather than going through GetTable, so it does not depend
// on the table's _columns rows being present.
func (c *Catalog) DropTableFile(name string) error {
	if t, ok := c.cache[name]; ok {
		delete(c.cache, name)
		return t.Drop()
	}
	file, err := heap.Open(c.TablePath(name))
	if err != nil {
		return err
	}
	return file.Drop()
}

// InsertTableRow adds name to _tables.
func (c *Catalog) InsertTableRow(name string) (heap.Handle, error) {
	return c.tables.Insert(heap.Row{"table_name": heap.NewText(name)})
}

// DeleteTableRow removes a _tables row by handle.
func (c *Catalog) DeleteTableRow(h heap.Handle) error {
	return c.tables.Delete(h)
}

// TableRowHandle finds the _tables row naming name.
func (c *Catalog) TableRowHandle(name string) (heap.Handle, bool, error) {
	handles, err := c.tables.Select()
	if err != nil {
		return heap.Handle{}, false, err
	}
	for _, h := range handles {
		row, err := c.tables.Project(h)
		if err != nil {
			return heap.Handle{}, false, err
		}
		if row["table_name"].Text == name {
			return h, true, nil
		}
	}
	return heap.Handle{}, false, nil
}

// DeleteColumnsOf removes every _columns row belonging to name.
func (c *Catalog) DeleteColumnsOf(name string) error {
	handles, err := c.columns.Select()
	if err != nil {
		return err
	}
	for _, h := range handles {
		row, err := c.columns.Project(h)
		if err != nil {
			return err
		}
		if row["table_name"].Text == name {
			if err := c.columns.Delete(h); err != nil {
				return err
			}
		}
	}
	return nil
}

// InsertColumnRow adds one column declaration to _columns.
func (c *Catalog) InsertColumnRow(table, column string, attr heap.ColumnAttribute) (heap.Handle, error) {
	return c.columns.Insert(heap.Row{
		"table_name":  heap.NewText(table),
		"column_name": heap.NewText(column),
		"data_type":   heap.NewText(attr.String()),
	})
}

// DeleteColumnRow removes a _columns row by handle.
func (c *Catalog) DeleteColumnRow(h heap.Handle) error {
	return c.columns.Delete(h)
}
