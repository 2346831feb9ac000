package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/heap"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE foo (id INT, data TEXT)`)
	require.NoError(t, err)
	ct, ok := stmt.(*CreateTable)
	require.True(t, ok)
	assert.Equal(t, "foo", ct.Table)
	assert.False(t, ct.IfNotExists)
	assert.Equal(t, []ColumnDef{
		{Name: "id", Attr: heap.IntAttribute},
		{Name: "data", Attr: heap.TextAttribute},
	}, ct.Columns)
}

func TestParseCreateTableIfNotExists(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE IF NOT EXISTS foo (id INTEGER)`)
	require.NoError(t, err)
	ct := stmt.(*CreateTable)
	assert.True(t, ct.IfNotExists)
	assert.Equal(t, heap.IntAttribute, ct.Columns[0].Attr)
}

func TestParseCreateIndexWithUsing(t *testing.T) {
	stmt, err := Parse(`CREATE INDEX fx ON foo USING BTREE (id)`)
	require.NoError(t, err)
	ci := stmt.(*CreateIndex)
	assert.Equal(t, "fx", ci.Index)
	assert.Equal(t, "foo", ci.Table)
	assert.Equal(t, "BTREE", ci.Using)
	assert.Equal(t, []string{"id"}, ci.Columns)
}

func TestParseDropIndexRequiresFromTable(t *testing.T) {
	stmt, err := Parse(`DROP INDEX fx FROM foo`)
	require.NoError(t, err)
	di := stmt.(*DropIndex)
	assert.Equal(t, "fx", di.Index)
	assert.Equal(t, "foo", di.Table)
}

func TestParseShowVariants(t *testing.T) {
	stmt, err := Parse(`SHOW TABLES`)
	require.NoError(t, err)
	assert.Equal(t, ShowTables, stmt.(*Show).Kind)

	stmt, err = Parse(`SHOW COLUMNS FROM foo`)
	require.NoError(t, err)
	show := stmt.(*Show)
	assert.Equal(t, ShowColumns, show.Kind)
	assert.Equal(t, "foo", show.Table)

	stmt, err = Parse(`SHOW INDEX FROM foo`)
	require.NoError(t, err)
	assert.Equal(t, ShowIndex, stmt.(*Show).Kind)
}

func TestParseInsertWithExplicitColumns(t *testing.T) {
	stmt, err := Parse(`INSERT INTO foo (id, data) VALUES (1, "one")`)
	require.NoError(t, err)
	ins := stmt.(*Insert)
	assert.Equal(t, []string{"id", "data"}, ins.Columns)
	assert.Equal(t, heap.NewInt(1), ins.Values[0].Value)
	assert.Equal(t, heap.NewText("one"), ins.Values[1].Value)
}

func TestParseInsertPositional(t *testing.T) {
	stmt, err := Parse(`INSERT INTO foo VALUES (1, "one")`)
	require.NoError(t, err)
	ins := stmt.(*Insert)
	assert.Nil(t, ins.Columns)
	assert.Len(t, ins.Values, 2)
}

func TestParseDeleteWithWhereConjunction(t *testing.T) {
	stmt, err := Parse(`DELETE FROM foo WHERE id = 2 AND data = "two"`)
	require.NoError(t, err)
	del := stmt.(*Delete)
	assert.Equal(t, "foo", del.Table)
	require.Len(t, del.Where, 2)
	assert.Equal(t, "id", del.Where[0].Column)
	assert.Equal(t, "data", del.Where[1].Column)
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM foo WHERE id = 1`)
	require.NoError(t, err)
	sel := stmt.(*Select)
	assert.Nil(t, sel.Columns)
	assert.Equal(t, "foo", sel.Table)
	require.Len(t, sel.Where, 1)
	assert.Equal(t, heap.NewInt(1), sel.Where[0].Value.Value)
}

func TestParseSelectColumnList(t *testing.T) {
	stmt, err := Parse(`SELECT id, data FROM foo`)
	require.NoError(t, err)
	sel := stmt.(*Select)
	assert.Equal(t, []string{"id", "data"}, sel.Columns)
	assert.Nil(t, sel.Where)
}

func TestParseRejectsUnsupportedGrammar(t *testing.T) {
	_, err := Parse(`SELECT * FROM foo WHERE id > 1`)
	assert.Error(t, err)

	_, err = Parse(`UPDATE foo SET id = 1`)
	assert.Error(t, err)
}
