package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/value"
)

// flakyStore wraps a MemoryStore and fails the next save or delete on demand.
type flakyStore struct {
	*snapshot.MemoryStore
	failSave   bool
	failDelete bool
	saves      int
}

func (f *flakyStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	if f.failSave {
		return errors.New("disk full")
	}
	f.saves++
	return f.MemoryStore.Save(ctx, s)
}

func (f *flakyStore) Delete(ctx context.Context, name string) error {
	if f.failDelete {
		return errors.New("disk gone")
	}
	return f.MemoryStore.Delete(ctx, name)
}

func usersSchema() schema.TableSchema {
	return schema.TableSchema{
		Name: "users",
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "email", Type: schema.TypeString, Unique: true},
		},
	}
}

func TestCreateTable(t *testing.T) {
	store := &flakyStore{MemoryStore: snapshot.NewMemoryStore()}
	c := New(store)

	tbl, err := c.CreateTable(usersSchema())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Schema().PrimaryKey().NotNull)

	_, ok := tbl.Index("email")
	assert.True(t, ok)

	assert.Equal(t, 1, store.saves, "creation is persisted")
	_, found, err := store.Load(context.Background(), "users")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCreateTable_Duplicate(t *testing.T) {
	c := New(nil)
	_, err := c.CreateTable(usersSchema())
	require.NoError(t, err)

	_, err = c.CreateTable(usersSchema())
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateTable(err))
}

func TestCreateTable_InvalidSchema(t *testing.T) {
	c := New(nil)
	bad := usersSchema()
	bad.Columns[0].PrimaryKey = false

	_, err := c.CreateTable(bad)
	assert.True(t, errs.IsValidation(err))
	assert.False(t, c.TableExists("users"))
}

func TestCreateTable_DoesNotMutateInput(t *testing.T) {
	c := New(nil)
	s := usersSchema()
	_, err := c.CreateTable(s)
	require.NoError(t, err)
	assert.False(t, s.Columns[0].NotNull)
}

func TestCreateTable_SaveFailureUnregisters(t *testing.T) {
	store := &flakyStore{MemoryStore: snapshot.NewMemoryStore(), failSave: true}
	c := New(store)

	_, err := c.CreateTable(usersSchema())
	require.Error(t, err)
	assert.True(t, errs.IsStorage(err))
	assert.False(t, c.TableExists("users"))
}

func TestGetTable_NotFound(t *testing.T) {
	c := New(nil)
	_, err := c.GetTable("ghost")
	assert.True(t, errs.IsNotFound(err))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "ghost", e.Table)
}

func TestDropTable(t *testing.T) {
	store := &flakyStore{MemoryStore: snapshot.NewMemoryStore()}
	c := New(store)
	_, err := c.CreateTable(usersSchema())
	require.NoError(t, err)

	require.NoError(t, c.DropTable("users"))
	assert.False(t, c.TableExists("users"))

	names, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.True(t, errs.IsNotFound(c.DropTable("users")))
}

func TestDropTable_StoreFailureKeepsTable(t *testing.T) {
	store := &flakyStore{MemoryStore: snapshot.NewMemoryStore()}
	c := New(store)
	_, err := c.CreateTable(usersSchema())
	require.NoError(t, err)

	store.failDelete = true
	err = c.DropTable("users")
	assert.True(t, errs.IsStorage(err))
	assert.True(t, c.TableExists("users"))
}

func TestListTables_Sorted(t *testing.T) {
	c := New(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		s := usersSchema()
		s.Name = name
		_, err := c.CreateTable(s)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, c.ListTables())
}

func TestDescribe_ReturnsCopy(t *testing.T) {
	c := New(nil)
	_, err := c.CreateTable(usersSchema())
	require.NoError(t, err)

	s, err := c.Describe("users")
	require.NoError(t, err)
	s.Columns[0].Name = "changed"

	again, err := c.Describe("users")
	require.NoError(t, err)
	assert.Equal(t, "id", again.Columns[0].Name)

	_, err = c.Describe("ghost")
	assert.True(t, errs.IsNotFound(err))
}

func TestOpen_RestoresTables(t *testing.T) {
	store := snapshot.NewMemoryStore()
	first := New(store)
	tbl, err := first.CreateTable(usersSchema())
	require.NoError(t, err)

	tbl.Insert(schema.Row{"id": value.Number(1), "email": value.String("a@x")})
	gone := tbl.Insert(schema.Row{"id": value.Number(2), "email": value.String("b@x")})
	tbl.Delete(gone)
	require.NoError(t, first.SaveTable("users"))

	second, err := Open(context.Background(), store)
	require.NoError(t, err)

	restored, err := second.GetTable("users")
	require.NoError(t, err)
	assert.Equal(t, tbl.Records(), restored.Records())
	assert.Equal(t, tbl.NextID(), restored.NextID())

	idx, ok := restored.Index("email")
	require.True(t, ok)
	assert.True(t, idx.Contains(value.String("a@x")))
	assert.False(t, idx.Contains(value.String("b@x")))
}

func TestSaveTable_UnknownTable(t *testing.T) {
	c := New(nil)
	assert.True(t, errs.IsNotFound(c.SaveTable("ghost")))
}
