package btree

import (
	"bytes"
	"encoding/binary"

	"minidb/pkg/block"
	"minidb/pkg/dberr"
	"minidb/pkg/heap"
	"minidb/pkg/page"
)

const (
	nodeLeaf     byte = 1
	nodeInternal byte = 2
)

// leafEntry pairs an encoded key with the handle it resolves to.
type leafEntry struct {
	key []byte
	h   heap.Handle
}

// childPtr is one slot of an internal node. child[0] carries no key (every
// key in its subtree is less than child[1].key); child[i] for i>0 carries
// the minimum key of its subtree, mirroring the separator convention used
// by conventional B+Tree internal pages.
type childPtr struct {
	key   []byte
	block block.ID
}

// node is the in-memory form of one btree block: either a sorted run of
// leaf entries or a sorted run of child pointers.
type node struct {
	leaf     bool
	entries  []leafEntry
	children []childPtr
}

func newLeaf() *node     { return &node{leaf: true} }
func newInternal() *node { return &node{leaf: false} }

// encode serializes n sequentially (header, then each entry back to back).
// The result is not padded (toBlock pads it to block.BlockSize); encode
// itself never errors — callers check the unpadded length against
// block.BlockSize to decide whether a split is needed before ever writing a
// node out.
func (n *node) encode() []byte {
	var buf bytes.Buffer
	if n.leaf {
		buf.WriteByte(nodeLeaf)
		writeUint16(&buf, uint16(len(n.entries)))
		for _, e := range n.entries {
			writeUint16(&buf, uint16(len(e.key)))
			buf.Write(e.key)
			writeUint32(&buf, uint32(e.h.Block))
			writeUint16(&buf, uint16(e.h.Record))
		}
	} else {
		buf.WriteByte(nodeInternal)
		writeUint16(&buf, uint16(len(n.children)))
		for i, c := range n.children {
			if i > 0 {
				writeUint16(&buf, uint16(len(c.key)))
				buf.Write(c.key)
			}
			writeUint32(&buf, uint32(c.block))
		}
	}
	return buf.Bytes()
}

// fits reports whether n's encoding, plus its zero-padding to a full
// block, is small enough to write out as a single block.
func (n *node) fits() bool {
	return len(n.encode()) <= block.BlockSize
}

// toBlock pads n's encoding out to exactly block.BlockSize bytes.
func (n *node) toBlock() []byte {
	raw := n.encode()
	if len(raw) > block.BlockSize {
		panic("btree: node overflowed a block; caller must split before writing")
	}
	out := make([]byte, block.BlockSize)
	copy(out, raw)
	return out
}

func decodeNode(data []byte) (*node, error) {
	if len(data) != block.BlockSize {
		return nil, dberr.Newf(dberr.Relation, "btree: node data must be %d bytes, got %d", block.BlockSize, len(data))
	}
	r := bytes.NewReader(data)
	kind, _ := r.ReadByte()
	count := readUint16(r)

	switch kind {
	case nodeLeaf:
		n := newLeaf()
		for i := uint16(0); i < count; i++ {
			klen := readUint16(r)
			key := make([]byte, klen)
			_, _ = r.Read(key)
			blk := readUint32(r)
			rec := readUint16(r)
			n.entries = append(n.entries, leafEntry{key: key, h: heap.Handle{Block: block.ID(blk), Record: page.RecordID(rec)}})
		}
		return n, nil
	case nodeInternal:
		n := newInternal()
		for i := uint16(0); i < count; i++ {
			var key []byte
			if i > 0 {
				klen := readUint16(r)
				key = make([]byte, klen)
				_, _ = r.Read(key)
			}
			blk := readUint32(r)
			n.children = append(n.children, childPtr{key: key, block: block.ID(blk)})
		}
		return n, nil
	default:
		return nil, dberr.Newf(dberr.Relation, "btree: unrecognised node tag %d", kind)
	}
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint16(r *bytes.Reader) uint16 {
	var b [2]byte
	_, _ = r.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func readUint32(r *bytes.Reader) uint32 {
	var b [4]byte
	_, _ = r.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}
