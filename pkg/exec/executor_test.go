package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/dbcatalog"
	"minidb/pkg/heap"
	"minidb/pkg/sql"
)

func newTestExecutor(t *testing.T) *Executor {
	cat, err := dbcatalog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return New(cat)
}

func run(t *testing.T, e *Executor, stmt string) *Result {
	s, err := sql.Parse(stmt)
	require.NoError(t, err, stmt)
	res, err := e.Execute(s)
	require.NoError(t, err, stmt)
	return res
}

func TestCreateDropTableCycle(t *testing.T) {
	e := newTestExecutor(t)

	run(t, e, `CREATE TABLE foo (id INT, data TEXT)`)
	res := run(t, e, `SHOW TABLES`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, heap.NewText("foo"), res.Rows[0]["table_name"])

	run(t, e, `DROP TABLE foo`)
	res = run(t, e, `SHOW TABLES`)
	assert.Empty(t, res.Rows)
}

func TestCreateTableRejectsDuplicateColumn(t *testing.T) {
	e := newTestExecutor(t)

	s, err := sql.Parse(`CREATE TABLE goo (x INT, x TEXT)`)
	require.NoError(t, err)
	_, err = e.Execute(s)
	assert.Error(t, err)

	res := run(t, e, `SHOW TABLES`)
	assert.Empty(t, res.Rows)
}

func TestIndexBuildAndPointLookup(t *testing.T) {
	e := newTestExecutor(t)

	run(t, e, `CREATE TABLE foo (id INT, data TEXT)`)
	run(t, e, `INSERT INTO foo VALUES (1, "one")`)
	run(t, e, `INSERT INTO foo VALUES (2, "two")`)
	run(t, e, `CREATE INDEX fx ON foo (id)`)

	res := run(t, e, `SELECT * FROM foo WHERE id = 2`)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, heap.NewInt(2), res.Rows[0]["id"])
	assert.Equal(t, heap.NewText("two"), res.Rows[0]["data"])
}

func TestShowIndexShape(t *testing.T) {
	e := newTestExecutor(t)

	run(t, e, `CREATE TABLE g (x INT, y INT, z INT)`)
	run(t, e, `CREATE INDEX fx ON g (x, y)`)

	res := run(t, e, `SHOW INDEX FROM g`)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, heap.NewText("x"), res.Rows[0]["column_name"])
	assert.Equal(t, heap.NewInt(1), res.Rows[0]["seq_in_index"])
	assert.Equal(t, heap.NewText("y"), res.Rows[1]["column_name"])
	assert.Equal(t, heap.NewInt(2), res.Rows[1]["seq_in_index"])
}

func TestDeleteRemovesRowAndIndexEntry(t *testing.T) {
	e := newTestExecutor(t)

	run(t, e, `CREATE TABLE foo (id INT, data TEXT)`)
	run(t, e, `INSERT INTO foo VALUES (1, "one")`)
	run(t, e, `INSERT INTO foo VALUES (2, "two")`)
	run(t, e, `INSERT INTO foo VALUES (3, "three")`)
	run(t, e, `CREATE INDEX fx ON foo (id)`)

	res := run(t, e, `DELETE FROM foo WHERE id = 2`)
	assert.Contains(t, res.Message, "deleted 1 rows")

	res = run(t, e, `SELECT * FROM foo WHERE id = 2`)
	assert.Empty(t, res.Rows)
}

func TestCreateTableIfNotExistsIsIdempotent(t *testing.T) {
	e := newTestExecutor(t)

	run(t, e, `CREATE TABLE foo (id INT)`)
	res := run(t, e, `CREATE TABLE IF NOT EXISTS foo (id INT)`)
	assert.Contains(t, res.Message, "already exists")
}

func TestCannotDropSchemaTable(t *testing.T) {
	e := newTestExecutor(t)

	s, err := sql.Parse(`DROP TABLE _tables`)
	require.NoError(t, err)
	_, err = e.Execute(s)
	assert.Error(t, err)
}
