package dbcatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/heap"
)

func TestBootstrapCreatesEmptyCatalog(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()

	names, err := cat.ListTables()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateTableRowsRoundTripThroughColumnsOf(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.InsertTableRow("foo")
	require.NoError(t, err)
	_, err = cat.InsertColumnRow("foo", "id", heap.IntAttribute)
	require.NoError(t, err)
	_, err = cat.InsertColumnRow("foo", "data", heap.TextAttribute)
	require.NoError(t, err)

	names, err := cat.ListTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, names)

	schema, err := cat.ColumnsOf("foo")
	require.NoError(t, err)
	assert.Equal(t, heap.Schema{
		{Name: "id", Attr: heap.IntAttribute},
		{Name: "data", Attr: heap.TextAttribute},
	}, schema)
}

func TestGetTableCachesAndFailsForUnknownTable(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.GetTable("nonexistent")
	assert.Error(t, err)

	_, err = cat.InsertTableRow("foo")
	require.NoError(t, err)
	_, err = cat.InsertColumnRow("foo", "id", heap.IntAttribute)
	require.NoError(t, err)

	_, err = heap.Create(cat.TablePath("foo"))
	require.NoError(t, err)

	t1, err := cat.GetTable("foo")
	require.NoError(t, err)
	t2, err := cat.GetTable("foo")
	require.NoError(t, err)
	assert.Same(t, t1, t2)
}

func TestIndexColumnsOrderedBySeq(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.InsertIndexRow("g", "fx", 2, "y", "BTREE", true)
	require.NoError(t, err)
	_, err = cat.InsertIndexRow("g", "fx", 1, "x", "BTREE", true)
	require.NoError(t, err)

	cols, err := cat.IndexColumns("g", "fx")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "x", cols[0].Column)
	assert.Equal(t, "y", cols[1].Column)
}

func TestIndexNamesDistinct(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cat.Close()

	_, _ = cat.InsertIndexRow("g", "fx", 1, "x", "BTREE", true)
	_, _ = cat.InsertIndexRow("g", "fx", 2, "y", "BTREE", true)
	_, _ = cat.InsertIndexRow("g", "gy", 1, "y", "BTREE", true)

	names, err := cat.IndexNames("g")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fx", "gy"}, names)
}
