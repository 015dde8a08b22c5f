package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/engine"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

func setup(t *testing.T) (*Joiner, *engine.Engine) {
	t.Helper()
	cat := catalog.New(nil)

	_, err := cat.CreateTable(schema.TableSchema{
		Name: "A",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "name", Type: schema.TypeString},
		},
	})
	require.NoError(t, err)
	_, err = cat.CreateTable(schema.TableSchema{
		Name: "B",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "aId", Type: schema.TypeNumber},
		},
	})
	require.NoError(t, err)

	return New(cat), engine.New(cat)
}

func insert(t *testing.T, e *engine.Engine, table string, row schema.Row) {
	t.Helper()
	_, err := e.Insert(table, row)
	require.NoError(t, err)
}

func TestInnerJoin(t *testing.T) {
	j, e := setup(t)
	insert(t, e, "A", schema.Row{"id": value.Number(1), "name": value.String("a")})
	insert(t, e, "A", schema.Row{"id": value.Number(2), "name": value.String("b")})
	insert(t, e, "B", schema.Row{"id": value.Number(10), "aId": value.Number(1)})
	insert(t, e, "B", schema.Row{"id": value.Number(11), "aId": value.Number(1)})
	insert(t, e, "B", schema.Row{"id": value.Number(12), "aId": value.Number(2)})

	rows, err := j.InnerJoin("A", "id", "B", "aId")
	require.NoError(t, err)

	pair := func(aID float64, name string, bID float64) schema.Row {
		return schema.Row{
			"A.id":   value.Number(aID),
			"A.name": value.String(name),
			"B.id":   value.Number(bID),
			"B.aId":  value.Number(aID),
		}
	}
	assert.Equal(t, []schema.Row{
		pair(1, "a", 10),
		pair(1, "a", 11),
		pair(2, "b", 12),
	}, rows)
}

func TestInnerJoin_NullsAndKindsNeverMatch(t *testing.T) {
	j, e := setup(t)
	insert(t, e, "A", schema.Row{"id": value.Number(1), "name": value.Null()})
	insert(t, e, "A", schema.Row{"id": value.Number(2), "name": value.String("2")})
	insert(t, e, "B", schema.Row{"id": value.Number(2), "aId": value.Null()})
	insert(t, e, "B", schema.Row{"id": value.Number(3)})

	rows, err := j.InnerJoin("A", "name", "B", "aId")
	require.NoError(t, err)
	assert.Empty(t, rows, "null on both sides is not a match")

	rows, err = j.InnerJoin("A", "name", "B", "id")
	require.NoError(t, err)
	assert.Empty(t, rows, "string '2' does not equal number 2")
}

func TestInnerJoin_EmptySideYieldsNoRows(t *testing.T) {
	j, e := setup(t)
	insert(t, e, "A", schema.Row{"id": value.Number(1), "name": value.String("a")})

	rows, err := j.InnerJoin("A", "id", "B", "aId")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestInnerJoin_OmitsAbsentColumns(t *testing.T) {
	j, e := setup(t)
	insert(t, e, "A", schema.Row{"id": value.Number(1)})
	insert(t, e, "B", schema.Row{"id": value.Number(5), "aId": value.Number(1)})

	rows, err := j.InnerJoin("A", "id", "B", "aId")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "A.name")
}

func TestInnerJoin_Errors(t *testing.T) {
	j, _ := setup(t)

	_, err := j.InnerJoin("ghost", "id", "B", "aId")
	assert.True(t, errs.IsNotFound(err))

	_, err = j.InnerJoin("A", "id", "ghost", "aId")
	assert.True(t, errs.IsNotFound(err))

	_, err = j.InnerJoin("A", "nope", "B", "aId")
	assert.True(t, errs.IsValidation(err))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "A", e.Table)
	assert.Equal(t, "nope", e.Column)

	_, err = j.InnerJoin("A", "id", "B", "nope")
	assert.True(t, errs.IsValidation(err))
}

func TestInnerJoin_RejectsSelfJoin(t *testing.T) {
	j, e := setup(t)
	insert(t, e, "A", schema.Row{"id": value.Number(1), "name": value.String("a")})

	rows, err := j.InnerJoin("A", "id", "A", "id")
	assert.Nil(t, rows)
	assert.True(t, errs.IsValidation(err))

	var je *errs.Error
	require.ErrorAs(t, err, &je)
	assert.Equal(t, "A", je.Table)
}
