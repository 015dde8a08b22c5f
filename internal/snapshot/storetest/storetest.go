// Package storetest holds the behaviour every snapshot.Store backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/table"
	"github.com/koustreak/relcore/internal/value"
)

// Fixture builds a snapshot of a small table named name with a deleted row,
// so the id counter is ahead of the row count.
func Fixture(t *testing.T, name string) *snapshot.Snapshot {
	t.Helper()
	s := &schema.TableSchema{
		Name: name,
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.TypeNumber, PrimaryKey: true},
			{Name: "email", Type: schema.TypeString, Unique: true},
			{Name: "admin", Type: schema.TypeBoolean},
		},
	}
	require.NoError(t, s.Normalize())

	tbl := table.New(s)
	tbl.Insert(schema.Row{"id": value.Number(1), "email": value.String("a@x"), "admin": value.Bool(true)})
	gone := tbl.Insert(schema.Row{"id": value.Number(2), "email": value.String("b@x")})
	tbl.Insert(schema.Row{"id": value.Number(3), "email": value.Null(), "admin": value.Null()})
	tbl.Delete(gone)

	return snapshot.Capture(tbl)
}

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) snapshot.Store) {
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		store := open(t)
		s, found, err := store.Load(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, s)
	})

	t.Run("save and load", func(t *testing.T) {
		store := open(t)
		want := Fixture(t, "users")
		require.NoError(t, store.Save(ctx, want))

		got, found, err := store.Load(ctx, "users")
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, want.Schema, got.Schema)
		assert.Equal(t, want.Rows, got.Rows)
		assert.Equal(t, want.Indexes, got.Indexes)
		assert.Equal(t, want.NextID, got.NextID)
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := open(t)
		first := Fixture(t, "users")
		require.NoError(t, store.Save(ctx, first))

		second := Fixture(t, "users")
		second.Rows = second.Rows[:1]
		second.NextID = 42
		require.NoError(t, store.Save(ctx, second))

		got, found, err := store.Load(ctx, "users")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, got.Rows, 1)
		assert.EqualValues(t, 42, got.NextID)
	})

	t.Run("list and delete", func(t *testing.T) {
		store := open(t)
		for _, name := range []string{"b_table", "a_table"} {
			require.NoError(t, store.Save(ctx, Fixture(t, name)))
		}

		names, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a_table", "b_table"}, names)

		require.NoError(t, store.Delete(ctx, "a_table"))
		require.NoError(t, store.Delete(ctx, "never_saved"))

		names, err = store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b_table"}, names)

		_, found, err := store.Load(ctx, "a_table")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("restores the table", func(t *testing.T) {
		store := open(t)
		want := Fixture(t, "users")
		require.NoError(t, store.Save(ctx, want))

		got, _, err := store.Load(ctx, "users")
		require.NoError(t, err)

		tbl, err := got.Restore()
		require.NoError(t, err)
		assert.Equal(t, want.Rows, tbl.Records())
		assert.Equal(t, want.NextID, tbl.NextID())
	})
}
