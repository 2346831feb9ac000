package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, schema Schema) *Table {
	dir := t.TempDir()
	f, err := Create(filepath.Join(dir, "t.db"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return NewTable("t", schema, f)
}

func TestInsertSelectProjectRoundTrip(t *testing.T) {
	schema := Schema{{Name: "id", Attr: IntAttribute}, {Name: "data", Attr: TextAttribute}}
	tbl := newTestTable(t, schema)

	h1, err := tbl.Insert(Row{"id": NewInt(1), "data": NewText("one")})
	require.NoError(t, err)
	h2, err := tbl.Insert(Row{"id": NewInt(2), "data": NewText("two")})
	require.NoError(t, err)

	handles, err := tbl.Select()
	require.NoError(t, err)
	assert.Len(t, handles, 2)

	row1, err := tbl.Project(h1)
	require.NoError(t, err)
	assert.Equal(t, NewInt(1), row1["id"])
	assert.Equal(t, NewText("one"), row1["data"])

	row2, err := tbl.Project(h2)
	require.NoError(t, err)
	assert.Equal(t, NewText("two"), row2["data"])
}

func TestInsertRejectsMissingColumn(t *testing.T) {
	schema := Schema{{Name: "id", Attr: IntAttribute}, {Name: "data", Attr: TextAttribute}}
	tbl := newTestTable(t, schema)

	_, err := tbl.Insert(Row{"id": NewInt(1)})
	assert.Error(t, err)
}

func TestInsertSpillsToNewBlockOnOverflow(t *testing.T) {
	schema := Schema{{Name: "data", Attr: TextAttribute}}
	tbl := newTestTable(t, schema)

	big := make([]byte, 500)
	for i := range big {
		big[i] = 'x'
	}

	var handles []Handle
	for i := 0; i < 20; i++ {
		h, err := tbl.Insert(Row{"data": NewText(string(big))})
		require.NoError(t, err)
		handles = append(handles, h)
	}

	last, err := tbl.file.LastBlockID()
	require.NoError(t, err)
	assert.Greater(t, int(last), 1)

	for _, h := range handles {
		row, err := tbl.Project(h)
		require.NoError(t, err)
		assert.Len(t, row["data"].Text, 500)
	}
}

func TestDeleteTombstonesRecordAndKeepsOthersStable(t *testing.T) {
	schema := Schema{{Name: "id", Attr: IntAttribute}}
	tbl := newTestTable(t, schema)

	h1, err := tbl.Insert(Row{"id": NewInt(1)})
	require.NoError(t, err)
	h2, err := tbl.Insert(Row{"id": NewInt(2)})
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(h1))

	_, err = tbl.Project(h1)
	assert.Error(t, err)

	row2, err := tbl.Project(h2)
	require.NoError(t, err)
	assert.Equal(t, NewInt(2), row2["id"])

	handles, err := tbl.Select()
	require.NoError(t, err)
	assert.Equal(t, []Handle{h2}, handles)
}

func TestProjectColumnsFiltersFields(t *testing.T) {
	schema := Schema{{Name: "id", Attr: IntAttribute}, {Name: "data", Attr: TextAttribute}}
	tbl := newTestTable(t, schema)

	h, err := tbl.Insert(Row{"id": NewInt(7), "data": NewText("seven")})
	require.NoError(t, err)

	row, err := tbl.ProjectColumns(h, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, Row{"id": NewInt(7)}, row)
}
