package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/block"
	"minidb/pkg/heap"
)

func newTestIndex(t *testing.T) *Index {
	dir := t.TempDir()
	ix, err := Create(filepath.Join(dir, "idx.db"), "widgets", "widgets_id_idx", []string{"id"})
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func intKey(n int32) []heap.Value { return []heap.Value{heap.NewInt(n)} }

func TestInsertLookupRoundTrip(t *testing.T) {
	ix := newTestIndex(t)

	h := heap.Handle{Block: 1, Record: 1}
	require.NoError(t, ix.Insert(intKey(42), h))

	got, ok, err := ix.Lookup(intKey(42))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h, got)

	_, ok, err = ix.Lookup(intKey(7))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	ix := newTestIndex(t)

	require.NoError(t, ix.Insert(intKey(1), heap.Handle{Block: 1, Record: 1}))
	err := ix.Insert(intKey(1), heap.Handle{Block: 1, Record: 2})
	assert.Error(t, err)
}

func TestInsertManyKeysTriggersSplitAndStaysLookupable(t *testing.T) {
	ix := newTestIndex(t)

	const n = 400
	for i := 0; i < n; i++ {
		h := heap.Handle{Block: block.ID(i + 1), Record: 1}
		require.NoError(t, ix.Insert(intKey(int32(i)), h))
	}

	for i := 0; i < n; i++ {
		got, ok, err := ix.Lookup(intKey(int32(i)))
		require.NoError(t, err)
		require.True(t, ok, fmt.Sprintf("key %d missing after %d inserts", i, n))
		assert.Equal(t, block.ID(i+1), got.Block)
	}
}

func TestDeleteRemovesEntryAndLeavesOthersLookupable(t *testing.T) {
	ix := newTestIndex(t)

	require.NoError(t, ix.Insert(intKey(1), heap.Handle{Block: 1, Record: 1}))
	require.NoError(t, ix.Insert(intKey(2), heap.Handle{Block: 1, Record: 2}))

	require.NoError(t, ix.Delete(intKey(1)))

	_, ok, err := ix.Lookup(intKey(1))
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := ix.Lookup(intKey(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, heap.Handle{Block: 1, Record: 2}, got)
}

func TestBuildFromRowsIndexesExistingData(t *testing.T) {
	ix := newTestIndex(t)

	rows := []heap.Row{
		{"id": heap.NewInt(1)},
		{"id": heap.NewInt(2)},
		{"id": heap.NewInt(3)},
	}
	handles := []heap.Handle{
		{Block: 1, Record: 1},
		{Block: 1, Record: 2},
		{Block: 1, Record: 3},
	}
	require.NoError(t, ix.BuildFromRows(rows, handles))

	got, ok, err := ix.Lookup(intKey(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, handles[1], got)
}
