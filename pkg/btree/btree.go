// Package btree implements the unique B-tree index described in spec §4.5:
// point lookup and insert on an ordered key built from one or more columns
// of the indexed relation, with an update-in-place leaf layer and
// root-split propagation on overflow. Delete removes a single leaf entry
// without rebalancing; range scans are out of scope. A duplicate key on
// Insert is rejected as a uniqueness violation.
package btree

import (
	"bytes"
	"encoding/binary"
	"sort"

	"minidb/pkg/block"
	"minidb/pkg/dberr"
	"minidb/pkg/heap"
)

// metaBlock is always block 1: it holds nothing but the current root's
// block id, rewritten every time a split grows the tree a level.
const metaBlock block.ID = 1

// Index is one open unique B-tree index file.
type Index struct {
	Name    string
	Table   string
	Columns []string
	file    *block.File
}

// Create makes a brand-new, empty index file for the named columns.
func Create(path, table, name string, columns []string) (*Index, error) {
	f, err := block.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.AllocateNew(); err != nil {
		return nil, err
	}
	ix := &Index{Name: name, Table: table, Columns: columns, file: f}
	if err := ix.setRoot(0); err != nil {
		return nil, err
	}
	return ix, nil
}

// Open reopens an existing index file.
func Open(path, table, name string, columns []string) (*Index, error) {
	f, err := block.Open(path)
	if err != nil {
		return nil, err
	}
	return &Index{Name: name, Table: table, Columns: columns, file: f}, nil
}

// Close releases the underlying file.
func (ix *Index) Close() error { return ix.file.Close() }

// Drop closes and deletes the underlying file.
func (ix *Index) Drop() error { return ix.file.Drop() }

func (ix *Index) rootID() (block.ID, error) {
	data, err := ix.file.Get(metaBlock)
	if err != nil {
		return 0, err
	}
	return block.ID(binary.BigEndian.Uint32(data[:4])), nil
}

func (ix *Index) setRoot(id block.ID) error {
	buf := make([]byte, block.BlockSize)
	binary.BigEndian.PutUint32(buf[:4], uint32(id))
	return ix.file.Put(metaBlock, buf)
}

func (ix *Index) loadNode(id block.ID) (*node, error) {
	data, err := ix.file.Get(id)
	if err != nil {
		return nil, err
	}
	return decodeNode(data)
}

func (ix *Index) writeNode(id block.ID, n *node) error {
	return ix.file.Put(id, n.toBlock())
}

func (ix *Index) allocate() (block.ID, error) {
	return ix.file.AllocateNew()
}

// findChildIndex returns the index of the child whose subtree may contain
// key, per the "child[i] holds the minimum key of its subtree" convention.
func findChildIndex(n *node, key []byte) int {
	idx := 0
	for i := 1; i < len(n.children); i++ {
		if bytes.Compare(n.children[i].key, key) <= 0 {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// Lookup finds the handle stored under key's encoding; key holds one value
// per entry of Columns, in the order Columns names them.
func (ix *Index) Lookup(key []heap.Value) (heap.Handle, bool, error) {
	root, err := ix.rootID()
	if err != nil {
		return heap.Handle{}, false, err
	}
	if root == 0 {
		return heap.Handle{}, false, nil
	}

	encoded := encodeKey(key)
	id := root
	for {
		n, err := ix.loadNode(id)
		if err != nil {
			return heap.Handle{}, false, err
		}
		if n.leaf {
			pos := sort.Search(len(n.entries), func(i int) bool {
				return bytes.Compare(n.entries[i].key, encoded) >= 0
			})
			if pos < len(n.entries) && bytes.Equal(n.entries[pos].key, encoded) {
				return n.entries[pos].h, true, nil
			}
			return heap.Handle{}, false, nil
		}
		id = n.children[findChildIndex(n, encoded)].block
	}
}

// Insert adds key -> h to the tree, splitting nodes bottom-up as needed. It
// fails with a Relation error if key is already present.
func (ix *Index) Insert(key []heap.Value, h heap.Handle) error {
	encoded := encodeKey(key)

	root, err := ix.rootID()
	if err != nil {
		return err
	}
	if root == 0 {
		id, err := ix.allocate()
		if err != nil {
			return err
		}
		n := newLeaf()
		n.entries = append(n.entries, leafEntry{key: encoded, h: h})
		if err := ix.writeNode(id, n); err != nil {
			return err
		}
		return ix.setRoot(id)
	}

	split, sepKey, rightID, err := ix.insertRec(root, encoded, h)
	if err != nil {
		return err
	}
	if !split {
		return nil
	}

	newRootID, err := ix.allocate()
	if err != nil {
		return err
	}
	newRoot := newInternal()
	newRoot.children = []childPtr{{block: root}, {key: sepKey, block: rightID}}
	if err := ix.writeNode(newRootID, newRoot); err != nil {
		return err
	}
	return ix.setRoot(newRootID)
}

func (ix *Index) insertRec(id block.ID, key []byte, h heap.Handle) (split bool, sepKey []byte, rightID block.ID, err error) {
	n, err := ix.loadNode(id)
	if err != nil {
		return false, nil, 0, err
	}

	if n.leaf {
		pos := sort.Search(len(n.entries), func(i int) bool {
			return bytes.Compare(n.entries[i].key, key) >= 0
		})
		if pos < len(n.entries) && bytes.Equal(n.entries[pos].key, key) {
			return false, nil, 0, dberr.New(dberr.Relation, "duplicate key violates unique index")
		}

		entries := make([]leafEntry, 0, len(n.entries)+1)
		entries = append(entries, n.entries[:pos]...)
		entries = append(entries, leafEntry{key: key, h: h})
		entries = append(entries, n.entries[pos:]...)
		n.entries = entries

		if n.fits() {
			return false, nil, 0, ix.writeNode(id, n)
		}

		mid := len(n.entries) / 2
		left := &node{leaf: true, entries: n.entries[:mid]}
		right := &node{leaf: true, entries: n.entries[mid:]}
		if err := ix.writeNode(id, left); err != nil {
			return false, nil, 0, err
		}
		newID, err := ix.allocate()
		if err != nil {
			return false, nil, 0, err
		}
		if err := ix.writeNode(newID, right); err != nil {
			return false, nil, 0, err
		}
		return true, right.entries[0].key, newID, nil
	}

	idx := findChildIndex(n, key)
	childSplit, childSepKey, childRightID, err := ix.insertRec(n.children[idx].block, key, h)
	if err != nil || !childSplit {
		return false, nil, 0, err
	}

	children := make([]childPtr, 0, len(n.children)+1)
	children = append(children, n.children[:idx+1]...)
	children = append(children, childPtr{key: childSepKey, block: childRightID})
	children = append(children, n.children[idx+1:]...)
	n.children = children

	if n.fits() {
		return false, nil, 0, ix.writeNode(id, n)
	}

	mid := len(n.children) / 2
	leftChildren := n.children[:mid]
	rightChildren := append([]childPtr{}, n.children[mid:]...)
	promoted := rightChildren[0].key
	rightChildren[0] = childPtr{block: rightChildren[0].block}

	left := &node{leaf: false, children: leftChildren}
	right := &node{leaf: false, children: rightChildren}
	if err := ix.writeNode(id, left); err != nil {
		return false, nil, 0, err
	}
	newID, err := ix.allocate()
	if err != nil {
		return false, nil, 0, err
	}
	if err := ix.writeNode(newID, right); err != nil {
		return false, nil, 0, err
	}
	return true, promoted, newID, nil
}

// Delete removes the entry stored under key's encoding, if present. It
// never merges or rebalances nodes on underflow — the executor's only use
// of Delete is to keep an index consistent with DELETE FROM removing the
// row a key pointed at, and an underfull leaf is still correct for point
// lookup and insert, just not space-optimal. Range queries and
// delete-by-handle, which would need that rebalancing to stay efficient,
// remain out of scope per spec §4.5.
func (ix *Index) Delete(key []heap.Value) error {
	root, err := ix.rootID()
	if err != nil {
		return err
	}
	if root == 0 {
		return nil
	}

	encoded := encodeKey(key)
	id := root
	for {
		n, err := ix.loadNode(id)
		if err != nil {
			return err
		}
		if n.leaf {
			pos := sort.Search(len(n.entries), func(i int) bool {
				return bytes.Compare(n.entries[i].key, encoded) >= 0
			})
			if pos >= len(n.entries) || !bytes.Equal(n.entries[pos].key, encoded) {
				return nil
			}
			n.entries = append(n.entries[:pos], n.entries[pos+1:]...)
			return ix.writeNode(id, n)
		}
		id = n.children[findChildIndex(n, encoded)].block
	}
}

// BuildFromRows populates a freshly created index by inserting the key
// built from each row's Columns values, mapped to its handle — used when an
// index is declared over a table that already has data (spec §4.5: "an
// index created on a populated table is built from the table's existing
// rows").
func (ix *Index) BuildFromRows(rows []heap.Row, handles []heap.Handle) error {
	for i, row := range rows {
		if err := ix.Insert(keyColumns(row, ix.Columns), handles[i]); err != nil {
			return err
		}
	}
	return nil
}
