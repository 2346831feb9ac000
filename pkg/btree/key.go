package btree

import (
	"bytes"
	"encoding/binary"

	"minidb/pkg/heap"
)

// encodeKey concatenates the length-prefixed encoding of each value in a
// key tuple into a single comparable byte string. The encoding only needs
// to be a consistent total order for the tree's own bookkeeping: the tree
// supports point lookup, insert and delete only, never a range scan, so the
// ordering it induces is never exposed to a caller.
func encodeKey(values []heap.Value) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		var raw []byte
		switch v.Attr {
		case heap.IntAttribute:
			raw = make([]byte, 4)
			binary.BigEndian.PutUint32(raw, uint32(v.Int)^0x80000000)
		case heap.BooleanAttribute:
			raw = []byte{0}
			if v.Bool() {
				raw[0] = 1
			}
		case heap.TextAttribute:
			raw = []byte(v.Text)
		}
		var lenPrefix [2]byte
		binary.BigEndian.PutUint16(lenPrefix[:], uint16(len(raw)))
		buf.Write(lenPrefix[:])
		buf.Write(raw)
	}
	return buf.Bytes()
}

// keyColumns extracts the values of cols from row, in cols' order, for use
// as an index key.
func keyColumns(row heap.Row, cols []string) []heap.Value {
	values := make([]heap.Value, len(cols))
	for i, c := range cols {
		values[i] = row[c]
	}
	return values
}
