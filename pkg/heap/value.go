// Package heap implements the row-level relation abstraction of spec §4.3:
// marshalling rows to and from the slotted-page record format, and the
// HeapFile/HeapTable pair that turns a sequence of blocks into an insertable,
// scannable relation.
package heap

import (
	"fmt"
)

// ColumnAttribute is the data type of one column: INT, TEXT, or BOOLEAN.
// Booleans are marshalled identically to INT (a 4-byte integer holding 0 or
// 1) per spec §3.1.
type ColumnAttribute int

const (
	IntAttribute ColumnAttribute = iota
	TextAttribute
	BooleanAttribute
)

func (a ColumnAttribute) String() string {
	switch a {
	case IntAttribute:
		return "INT"
	case TextAttribute:
		return "TEXT"
	case BooleanAttribute:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// ParseColumnAttribute maps the grammar's column-type spellings (spec §6.2,
// including the original's INTEGER synonym for INT) onto a ColumnAttribute.
func ParseColumnAttribute(s string) (ColumnAttribute, error) {
	switch s {
	case "INT", "INTEGER":
		return IntAttribute, nil
	case "TEXT":
		return TextAttribute, nil
	case "BOOLEAN":
		return BooleanAttribute, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// Value is the tagged union of the three types this engine supports: a
// 32-bit integer, a boolean (stored as 0/1), and variable-length ASCII text.
// Every Value carries its own ColumnAttribute tag rather than relying on the
// caller to remember it.
type Value struct {
	Attr ColumnAttribute
	Int  int32
	Text string
}

// NewInt builds an INT value.
func NewInt(v int32) Value { return Value{Attr: IntAttribute, Int: v} }

// NewBool builds a BOOLEAN value, stored internally as an integer 0/1.
func NewBool(v bool) Value {
	i := int32(0)
	if v {
		i = 1
	}
	return Value{Attr: BooleanAttribute, Int: i}
}

// NewText builds a TEXT value.
func NewText(v string) Value { return Value{Attr: TextAttribute, Text: v} }

// Bool reports the boolean value of a BOOLEAN Value.
func (v Value) Bool() bool { return v.Int != 0 }

// Equal reports whether two values carry the same type and content. Values
// of different types are never equal, even 0 (INT) vs false (BOOLEAN) — the
// engine never implicitly coerces across column types.
func (v Value) Equal(other Value) bool {
	if v.Attr != other.Attr {
		return false
	}
	switch v.Attr {
	case TextAttribute:
		return v.Text == other.Text
	default:
		return v.Int == other.Int
	}
}

// String renders a Value the way QueryResult rendering (spec §4.8) expects:
// INT as decimal, TEXT quoted, BOOLEAN as true/false.
func (v Value) String() string {
	switch v.Attr {
	case TextAttribute:
		return fmt.Sprintf("%q", v.Text)
	case BooleanAttribute:
		if v.Bool() {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%d", v.Int)
	}
}

// Column is one (name, type) pair in a relation schema.
type Column struct {
	Name string
	Attr ColumnAttribute
}

// Schema is the ordered sequence of a relation's columns (spec §3.1).
type Schema []Column

// ColumnNames returns the schema's column names in declared order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Attr looks up a column's data type by name.
func (s Schema) Attr(name string) (ColumnAttribute, bool) {
	for _, c := range s {
		if c.Name == name {
			return c.Attr, true
		}
	}
	return 0, false
}

// Has reports whether name is a declared column of this schema.
func (s Schema) Has(name string) bool {
	_, ok := s.Attr(name)
	return ok
}

// Row is an unordered mapping from column identifier to Value (spec §3.1).
// Insertion order carries no meaning; projection order is dictated by the
// column list supplied to the operation that produced the Row.
type Row map[string]Value
