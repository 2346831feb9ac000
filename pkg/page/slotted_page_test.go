package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGetRoundTrip(t *testing.T) {
	p := New()

	id1, err := p.Add([]byte("hello"))
	require.NoError(t, err)
	id2, err := p.Add([]byte("world!!"))
	require.NoError(t, err)

	got1, ok := p.Get(id1)
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got1)

	got2, ok := p.Get(id2)
	require.True(t, ok)
	assert.Equal(t, []byte("world!!"), got2)
}

func TestIdsAscendingExcludesTombstones(t *testing.T) {
	p := New()
	id1, _ := p.Add([]byte("a"))
	id2, _ := p.Add([]byte("bb"))
	id3, _ := p.Add([]byte("ccc"))

	p.Del(id2)

	assert.Equal(t, []RecordID{id1, id3}, p.Ids())

	_, ok := p.Get(id2)
	assert.False(t, ok)
}

func TestDelPreservesOtherHandles(t *testing.T) {
	p := New()
	id1, _ := p.Add([]byte("first"))
	id2, _ := p.Add([]byte("second"))
	id3, _ := p.Add([]byte("third"))

	p.Del(id1)

	got2, ok := p.Get(id2)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got2)

	got3, ok := p.Get(id3)
	require.True(t, ok)
	assert.Equal(t, []byte("third"), got3)
}

func TestPutShrinkAndGrow(t *testing.T) {
	p := New()
	id1, _ := p.Add([]byte("12345"))
	id2, _ := p.Add([]byte("second"))

	require.NoError(t, p.Put(id1, []byte("1")))
	got1, ok := p.Get(id1)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), got1)

	got2, ok := p.Get(id2)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got2)

	require.NoError(t, p.Put(id1, []byte("grown-bigger-now")))
	got1, ok = p.Get(id1)
	require.True(t, ok)
	assert.Equal(t, []byte("grown-bigger-now"), got1)

	got2, ok = p.Get(id2)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got2)
}

func TestAddFailsWithNoRoom(t *testing.T) {
	p := New()
	big := make([]byte, 5000)
	_, err := p.Add(big)
	assert.Error(t, err)
}

func TestBytesRoundTripsThroughLoad(t *testing.T) {
	p := New()
	id, _ := p.Add([]byte("persisted"))

	loaded, err := Load(p.Bytes())
	require.NoError(t, err)

	got, ok := loaded.Get(id)
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), got)
}

func TestManyAddsAndDeletesKeepHandlesStable(t *testing.T) {
	p := New()
	var ids []RecordID
	for i := 0; i < 50; i++ {
		id, err := p.Add([]byte{byte(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for i := 0; i < 50; i += 2 {
		p.Del(ids[i])
	}

	for i := 1; i < 50; i += 2 {
		got, ok := p.Get(ids[i])
		require.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, got)
	}
}
