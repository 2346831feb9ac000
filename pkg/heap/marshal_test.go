package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	schema := Schema{
		{Name: "id", Attr: IntAttribute},
		{Name: "active", Attr: BooleanAttribute},
		{Name: "name", Attr: TextAttribute},
	}
	row := Row{
		"id":     NewInt(42),
		"active": NewBool(true),
		"name":   NewText("hello world"),
	}

	data, err := Marshal(schema, row)
	require.NoError(t, err)

	got, err := Unmarshal(schema, data)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestMarshalFailsOnMissingColumn(t *testing.T) {
	schema := Schema{{Name: "id", Attr: IntAttribute}}
	_, err := Marshal(schema, Row{})
	assert.Error(t, err)
}

func TestMarshalEmptyText(t *testing.T) {
	schema := Schema{{Name: "name", Attr: TextAttribute}}
	row := Row{"name": NewText("")}

	data, err := Marshal(schema, row)
	require.NoError(t, err)

	got, err := Unmarshal(schema, data)
	require.NoError(t, err)
	assert.Equal(t, row, got)
}
