package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/index"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	s := &schema.TableSchema{
		Name: "items",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "sku", Type: schema.TypeString, Unique: true},
			{Name: "qty", Type: schema.TypeNumber},
		},
	}
	require.NoError(t, s.Normalize())
	return New(s)
}

func item(id float64, sku string) schema.Row {
	return schema.Row{"id": value.Number(id), "sku": value.String(sku)}
}

func TestNew_CreatesIndexes(t *testing.T) {
	tbl := newTestTable(t)

	_, ok := tbl.Index("id")
	assert.True(t, ok)
	_, ok = tbl.Index("sku")
	assert.True(t, ok)
	_, ok = tbl.Index("qty")
	assert.False(t, ok)

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, index.RowID(0), tbl.NextID())
}

func TestInsert_IndexesUnderStorageID(t *testing.T) {
	tbl := newTestTable(t)

	a := tbl.Insert(item(1, "a"))
	b := tbl.Insert(item(2, "b"))
	assert.NotEqual(t, a, b)

	idx, _ := tbl.Index("sku")
	assert.Equal(t, []index.RowID{b}, idx.Lookup(value.String("b")))

	row, ok := tbl.Get(b)
	require.True(t, ok)
	assert.Equal(t, value.Number(2), row["id"])
}

func TestDelete_DoesNotShiftOtherRows(t *testing.T) {
	tbl := newTestTable(t)

	ids := []index.RowID{
		tbl.Insert(item(1, "a")),
		tbl.Insert(item(2, "b")),
		tbl.Insert(item(3, "c")),
	}

	require.True(t, tbl.Delete(ids[1]))
	fourth := tbl.Insert(item(4, "d"))
	assert.NotContains(t, ids, fourth, "ids are never reused")

	pk, _ := tbl.Index("id")
	for n, sku := range map[float64]string{1: "a", 3: "c", 4: "d"} {
		hits := pk.Lookup(value.Number(n))
		require.Len(t, hits, 1)
		row, ok := tbl.Get(hits[0])
		require.True(t, ok)
		assert.Equal(t, value.String(sku), row["sku"])
	}
	assert.Empty(t, pk.Lookup(value.Number(2)))
	assert.False(t, tbl.Delete(ids[1]))
}

func TestReplace_MovesIndexEntries(t *testing.T) {
	tbl := newTestTable(t)
	id := tbl.Insert(item(1, "old"))

	require.True(t, tbl.Replace(id, item(1, "new")))

	idx, _ := tbl.Index("sku")
	assert.False(t, idx.Contains(value.String("old")))
	assert.Equal(t, []index.RowID{id}, idx.Lookup(value.String("new")))
	assert.False(t, tbl.Replace(99, item(9, "x")))
}

func TestAll_FollowsInsertionOrder(t *testing.T) {
	tbl := newTestTable(t)
	for i, sku := range []string{"c", "a", "b"} {
		tbl.Insert(item(float64(i), sku))
	}

	var skus []string
	for _, row := range tbl.All() {
		s, _ := row["sku"].AsString()
		skus = append(skus, s)
	}
	assert.Equal(t, []string{"c", "a", "b"}, skus)
}

func TestRestore(t *testing.T) {
	src := newTestTable(t)
	src.Insert(item(1, "a"))
	gone := src.Insert(item(2, "b"))
	src.Insert(item(3, "c"))
	src.Delete(gone)

	restored, err := Restore(src.Schema().Clone(), src.Records(), nil, src.NextID())
	require.NoError(t, err)

	assert.Equal(t, src.Records(), restored.Records())
	assert.Equal(t, src.NextID(), restored.NextID())

	srcIdx, _ := src.Index("sku")
	gotIdx, _ := restored.Index("sku")
	assert.Equal(t, srcIdx.Entries(), gotIdx.Entries())
}

func TestRestore_BumpsCounterAndRejectsDuplicates(t *testing.T) {
	src := newTestTable(t)
	records := []Record{{ID: 7, Row: item(1, "a")}}

	restored, err := Restore(src.Schema().Clone(), records, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, index.RowID(8), restored.NextID())

	records = append(records, Record{ID: 7, Row: item(2, "b")})
	_, err = Restore(src.Schema().Clone(), records, nil, 0)
	assert.True(t, errs.IsStorage(err))
}

func TestRestore_VerifiesPersistedIndexes(t *testing.T) {
	src := newTestTable(t)
	src.Insert(item(1, "a"))
	src.Insert(item(2, "b"))

	good, _ := src.Index("sku")
	restored, err := Restore(src.Schema().Clone(), src.Records(), map[string]*index.Index{
		"sku": index.FromEntries("sku", good.Entries()),
	}, src.NextID())
	require.NoError(t, err)
	got, _ := restored.Index("sku")
	assert.Equal(t, good.Entries(), got.Entries())

	stale := index.New("sku")
	stale.Insert(value.String("a"), 1)
	stale.Insert(value.String("zzz"), 2)
	_, err = Restore(src.Schema().Clone(), src.Records(), map[string]*index.Index{"sku": stale}, src.NextID())
	require.Error(t, err)
	assert.True(t, errs.IsStorage(err))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "sku", e.Column)
}
