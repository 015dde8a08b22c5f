package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/expr"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

func TestParse_CreateTable(t *testing.T) {
	cmd, err := Parse(`create table users (id INT primary key, email text unique not null, active BOOL);`)
	require.NoError(t, err)

	assert.Equal(t, &CreateTable{Schema: schema.TableSchema{
		Name: "users",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "email", Type: schema.TypeString, Unique: true, NotNull: true},
			{Name: "active", Type: schema.TypeBoolean},
		},
	}}, cmd)
}

func TestParse_Insert(t *testing.T) {
	cmd, err := Parse(`INSERT INTO t (id, name, ok, note) VALUES (-1.5e2, 'it''s', TRUE, null)`)
	require.NoError(t, err)
	assert.Equal(t, &Insert{
		Table:   "t",
		Columns: []string{"id", "name", "ok", "note"},
		Values:  []value.Value{value.Number(-150), value.String("it's"), value.Bool(true), value.Null()},
	}, cmd)

	cmd, err = Parse(`INSERT INTO t VALUES (1, '')`)
	require.NoError(t, err)
	ins := cmd.(*Insert)
	assert.Nil(t, ins.Columns)
	assert.Equal(t, []value.Value{value.Number(1), value.String("")}, ins.Values)
}

func TestParse_Select(t *testing.T) {
	cmd, err := Parse(`SELECT * FROM t`)
	require.NoError(t, err)
	assert.Equal(t, &Select{Table: "t"}, cmd)

	cmd, err = Parse(`select id, name from t where score >= 10`)
	require.NoError(t, err)
	assert.Equal(t, &Select{
		Table:   "t",
		Columns: []string{"id", "name"},
		Where:   &expr.Predicate{Column: "score", Op: expr.OpGe, Value: value.Number(10)},
	}, cmd)

	cmd, err = Parse(`SELECT * FROM t WHERE name <> 'x'`)
	require.NoError(t, err)
	assert.Equal(t, expr.OpNe, cmd.(*Select).Where.Op)
}

func TestParse_Join(t *testing.T) {
	want := &Join{LeftTable: "A", LeftColumn: "id", RightTable: "B", RightColumn: "aId"}

	for _, sql := range []string{
		`SELECT * FROM A JOIN B ON A.id = B.aId`,
		`SELECT * FROM A INNER JOIN B ON A.id = B.aId;`,
		`select * from A inner join B on B.aId = A.id`,
	} {
		t.Run(sql, func(t *testing.T) {
			cmd, err := Parse(sql)
			require.NoError(t, err)
			assert.Equal(t, want, cmd)
		})
	}
}

func TestParse_UpdateDeleteShowDescribe(t *testing.T) {
	cmd, err := Parse(`UPDATE t SET a = 1, b = 'two' WHERE id = 3`)
	require.NoError(t, err)
	assert.Equal(t, &Update{
		Table: "t",
		Set:   schema.Row{"a": value.Number(1), "b": value.String("two")},
		Where: expr.Eq("id", value.Number(3)),
	}, cmd)

	cmd, err = Parse(`DELETE FROM t`)
	require.NoError(t, err)
	assert.Equal(t, &Delete{Table: "t"}, cmd)

	cmd, err = Parse(`DELETE FROM t WHERE flag = false`)
	require.NoError(t, err)
	assert.Equal(t, &Delete{Table: "t", Where: expr.Eq("flag", value.Bool(false))}, cmd)

	cmd, err = Parse(`show tables`)
	require.NoError(t, err)
	assert.Equal(t, &ShowTables{}, cmd)

	cmd, err = Parse(`DESCRIBE users;`)
	require.NoError(t, err)
	assert.Equal(t, &Describe{Table: "users"}, cmd)
}

func TestParse_KeywordPrefixedIdentifiers(t *testing.T) {
	cmd, err := Parse(`SELECT created_at, selection FROM tables_x WHERE order_id = 1`)
	require.NoError(t, err)
	sel := cmd.(*Select)
	assert.Equal(t, "tables_x", sel.Table)
	assert.Equal(t, []string{"created_at", "selection"}, sel.Columns)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"empty", "   "},
		{"unknown statement", "DROP TABLE t"},
		{"unknown type", "CREATE TABLE t (id DATE PRIMARY KEY)"},
		{"no columns", "CREATE TABLE t ()"},
		{"unquoted string", "INSERT INTO t VALUES (hello)"},
		{"double quoted string", `INSERT INTO t VALUES ("hello")`},
		{"infinite number", "INSERT INTO t VALUES (1e999)"},
		{"join with projection", "SELECT id FROM a JOIN b ON a.id = b.id"},
		{"join with where", "SELECT * FROM a JOIN b ON a.id = b.id WHERE x = 1"},
		{"join on foreign table", "SELECT * FROM a JOIN b ON c.id = b.id"},
		{"compound where", "SELECT * FROM t WHERE a = 1 AND b = 2"},
		{"set twice", "UPDATE t SET a = 1, a = 2"},
		{"duplicate insert column", "INSERT INTO t (a, a) VALUES (1, 2)"},
		{"trailing garbage", "SHOW TABLES; SHOW TABLES"},
		{"missing from", "SELECT *"},
		{"bad character", "SELECT * FROM t WHERE a = @"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err), "got %v", err)
		})
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want value.Value
	}{
		{"'a b'", value.String("a b")},
		{"42", value.Number(42)},
		{"-0.5", value.Number(-0.5)},
		{"True", value.Bool(true)},
		{"NULL", value.Null()},
	}
	for _, tt := range tests {
		got, err := ParseLiteral(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLiteral("abc")
	assert.True(t, errs.IsInvalidInput(err))
}
