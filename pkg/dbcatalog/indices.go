package dbcatalog

import (
	"sort"

	"minidb/pkg/heap"
)

// IndexColumn is one row of _indices describing a single key column of an
// index, paired with the handle that names it for later deletion.
type IndexColumn struct {
	Handle    heap.Handle
	SeqInIdx  int32
	Column    string
	IndexType string
	Unique    bool
}

// InsertIndexRow adds one key-column row to _indices.
func (c *Catalog) InsertIndexRow(table, index string, seq int32, column, indexType string, unique bool) (heap.Handle, error) {
	return c.indices.Insert(heap.Row{
		"table_name":   heap.NewText(table),
		"index_name":   heap.NewText(index),
		"seq_in_index": heap.NewInt(seq),
		"column_name":  heap.NewText(column),
		"index_type":   heap.NewText(indexType),
		"is_unique":    heap.NewBool(unique),
	})
}

// DeleteIndexRow removes a _indices row by handle.
func (c *Catalog) DeleteIndexRow(h heap.Handle) error {
	return c.indices.Delete(h)
}

// IndexColumns returns every _indices row for (table, index), ordered by
// seq_in_index (spec §4.4: "constructed from the rows in _indices matching
// (table, index), ordered by seq_in_index").
func (c *Catalog) IndexColumns(table, index string) ([]IndexColumn, error) {
	handles, err := c.indices.Select()
	if err != nil {
		return nil, err
	}

	var cols []IndexColumn
	for _, h := range handles {
		row, err := c.indices.Project(h)
		if err != nil {
			return nil, err
		}
		if row["table_name"].Text != table || row["index_name"].Text != index {
			continue
		}
		cols = append(cols, IndexColumn{
			Handle:    h,
			SeqInIdx:  row["seq_in_index"].Int,
			Column:    row["column_name"].Text,
			IndexType: row["index_type"].Text,
			Unique:    row["is_unique"].Bool(),
		})
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].SeqInIdx < cols[j].SeqInIdx })
	return cols, nil
}

// IndexNames returns the distinct index names declared on table.
func (c *Catalog) IndexNames(table string) ([]string, error) {
	handles, err := c.indices.Select()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, h := range handles {
		row, err := c.indices.Project(h)
		if err != nil {
			return nil, err
		}
		if row["table_name"].Text != table {
			continue
		}
		name := row["index_name"].Text
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// IndexDescriptors returns every _indices row for table, ordered by
// (index_name, seq_in_index), for SHOW INDEX FROM t.
func (c *Catalog) IndexDescriptors(table string) ([]heap.Row, error) {
	handles, err := c.indices.Select()
	if err != nil {
		return nil, err
	}

	type entry struct {
		h   heap.Handle
		row heap.Row
	}
	var entries []entry
	for _, h := range handles {
		row, err := c.indices.Project(h)
		if err != nil {
			return nil, err
		}
		if row["table_name"].Text == table {
			entries = append(entries, entry{h: h, row: row})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		ni, nj := entries[i].row["index_name"].Text, entries[j].row["index_name"].Text
		if ni != nj {
			return ni < nj
		}
		return entries[i].row["seq_in_index"].Int < entries[j].row["seq_in_index"].Int
	})

	rows := make([]heap.Row, len(entries))
	for i, e := range entries {
		rows[i] = e.row
	}
	return rows, nil
}
