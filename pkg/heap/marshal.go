package heap

import (
	"encoding/binary"

	"minidb/pkg/dberr"
)

// Marshal serializes row into its on-disk record bytes, walking the schema
// in declared order so the reader never needs a per-row type tag (spec
// §4.3). Every schema column must be present in row; missing columns are a
// Relation error, not a NULL — NULLs are out of scope.
func Marshal(schema Schema, row Row) ([]byte, error) {
	var out []byte
	for _, col := range schema {
		v, ok := row[col.Name]
		if !ok {
			return nil, dberr.Newf(dberr.Relation, "row missing column %s", col.Name)
		}
		switch col.Attr {
		case IntAttribute, BooleanAttribute:
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(v.Int))
			out = append(out, buf...)
		case TextAttribute:
			lenBuf := make([]byte, 2)
			binary.LittleEndian.PutUint16(lenBuf, uint16(len(v.Text)))
			out = append(out, lenBuf...)
			out = append(out, []byte(v.Text)...)
		}
	}
	return out, nil
}

// Unmarshal inverts Marshal, reading data back into a Row using schema as
// the reader definition.
func Unmarshal(schema Schema, data []byte) (Row, error) {
	row := make(Row, len(schema))
	pos := 0
	for _, col := range schema {
		switch col.Attr {
		case IntAttribute:
			if pos+4 > len(data) {
				return nil, dberr.New(dberr.Relation, "truncated record: expected INT column")
			}
			row[col.Name] = NewInt(int32(binary.LittleEndian.Uint32(data[pos : pos+4])))
			pos += 4
		case BooleanAttribute:
			if pos+4 > len(data) {
				return nil, dberr.New(dberr.Relation, "truncated record: expected BOOLEAN column")
			}
			row[col.Name] = NewBool(binary.LittleEndian.Uint32(data[pos:pos+4]) != 0)
			pos += 4
		case TextAttribute:
			if pos+2 > len(data) {
				return nil, dberr.New(dberr.Relation, "truncated record: expected TEXT length prefix")
			}
			n := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
			pos += 2
			if pos+n > len(data) {
				return nil, dberr.New(dberr.Relation, "truncated record: expected TEXT body")
			}
			row[col.Name] = NewText(string(data[pos : pos+n]))
			pos += n
		}
	}
	return row, nil
}
