package heap

import (
	"minidb/pkg/block"
	"minidb/pkg/dberr"
	"minidb/pkg/page"
)

// Table implements the DbRelation contract of spec §4.3 for a user relation:
// row validation, marshalling, insertion with block overflow handling, and
// the handle-based select/project operations the plan tree evaluates
// against.
type Table struct {
	Name   string
	Schema Schema
	file   *File
}

// NewTable wraps an already-open heap File with the schema that describes
// its rows.
func NewTable(name string, schema Schema, file *File) *Table {
	return &Table{Name: name, Schema: schema, file: file}
}

// Close releases the underlying heap file.
func (t *Table) Close() error { return t.file.Close() }

// Drop closes and deletes the underlying heap file, for DROP TABLE.
func (t *Table) Drop() error { return t.file.Drop() }

// Path returns the filesystem path backing this relation.
func (t *Table) Path() string { return t.file.Path() }

// Validate builds a full row from a possibly-partial input by looking up
// every schema column in order, failing with a Relation error if any
// declared column is absent. NULLs and defaults are out of scope (spec
// §4.3): a missing column is always an error, never filled with a default.
func (t *Table) Validate(row Row) (Row, error) {
	full := make(Row, len(t.Schema))
	for _, col := range t.Schema {
		v, ok := row[col.Name]
		if !ok {
			return nil, dberr.Newf(dberr.Relation, "%s: missing value for column %s", t.Name, col.Name)
		}
		full[col.Name] = v
	}
	return full, nil
}

// Insert validates and marshals row, then appends it to the last block of
// the file, allocating a new block on a NoRoom failure and retrying exactly
// once — a second NoRoom on the fresh block is fatal, since an empty page
// that can't hold one record means the record itself is oversized.
func (t *Table) Insert(row Row) (Handle, error) {
	full, err := t.Validate(row)
	if err != nil {
		return Handle{}, err
	}

	data, err := Marshal(t.Schema, full)
	if err != nil {
		return Handle{}, err
	}

	blockID, p, err := t.lastPageOrNew()
	if err != nil {
		return Handle{}, err
	}

	recID, err := p.Add(data)
	if err != nil {
		if !dberr.Is(err, dberr.NoRoom) {
			return Handle{}, err
		}
		blockID, p, err = t.file.GetNew()
		if err != nil {
			return Handle{}, err
		}
		recID, err = p.Add(data)
		if err != nil {
			return Handle{}, dberr.Wrap(err, "Table.Insert")
		}
	}

	if err := t.file.PutPage(blockID, p); err != nil {
		return Handle{}, err
	}

	return Handle{Block: blockID, Record: recID}, nil
}

// lastPageOrNew returns the relation's last block, allocating the first
// block if the file is still empty.
func (t *Table) lastPageOrNew() (block.ID, *page.Page, error) {
	last, err := t.file.LastBlockID()
	if err != nil {
		return 0, nil, err
	}
	if last == 0 {
		return t.file.GetNew()
	}
	p, err := t.file.GetPage(last)
	if err != nil {
		return 0, nil, err
	}
	return last, p, nil
}

// Select returns a handle for every live record in every block of the
// relation. Predicate filtering is the plan tree's Select node's job (spec
// §4.3); this always returns the unfiltered set.
func (t *Table) Select() ([]Handle, error) {
	ids, err := t.file.BlockIDs()
	if err != nil {
		return nil, err
	}

	var handles []Handle
	for _, id := range ids {
		p, err := t.file.GetPage(id)
		if err != nil {
			return nil, err
		}
		for _, rid := range p.Ids() {
			handles = append(handles, Handle{Block: id, Record: rid})
		}
	}
	return handles, nil
}

// Project returns the full row named by handle.
func (t *Table) Project(h Handle) (Row, error) {
	p, err := t.file.GetPage(h.Block)
	if err != nil {
		return nil, err
	}
	data, ok := p.Get(h.Record)
	if !ok {
		return nil, dberr.Newf(dberr.Relation, "%s: handle %v names a deleted record", t.Name, h)
	}
	return Unmarshal(t.Schema, data)
}

// Delete tombstones the record named by handle. The block is rewritten in
// place; the record id is never reused, so other handles into the same
// block stay valid (spec §3.1).
func (t *Table) Delete(h Handle) error {
	p, err := t.file.GetPage(h.Block)
	if err != nil {
		return err
	}
	p.Del(h.Record)
	return t.file.PutPage(h.Block, p)
}

// ProjectColumns returns only the requested columns of the row named by
// handle, in the order cols names them. A column not present in the
// relation's schema is a RelationError rather than a silently blank cell.
func (t *Table) ProjectColumns(h Handle, cols []string) (Row, error) {
	full, err := t.Project(h)
	if err != nil {
		return nil, err
	}
	out := make(Row, len(cols))
	for _, c := range cols {
		v, ok := full[c]
		if !ok {
			return nil, dberr.Newf(dberr.Relation, "unknown column %s.%s", t.Name, c)
		}
		out[c] = v
	}
	return out, nil
}
