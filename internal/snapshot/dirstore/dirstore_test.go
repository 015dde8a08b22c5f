package dirstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/snapshot/storetest"
)

func TestStore(t *testing.T) {
	for _, format := range []snapshot.Format{snapshot.FormatJSON, snapshot.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			storetest.Run(t, func(t *testing.T) snapshot.Store {
				store, err := Open(t.TempDir(), format)
				require.NoError(t, err)
				return store
			})
		})
	}
}

func TestStore_FileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, snapshot.FormatYAML)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), storetest.Fixture(t, "users")))

	_, err = os.Stat(filepath.Join(dir, "users.yaml"))
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	names, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, snapshot.FormatJSON)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	_, _, err = store.Load(context.Background(), "broken")
	assert.True(t, errs.IsStorage(err))
}

func TestStore_CancelledContext(t *testing.T) {
	store, err := Open(t.TempDir(), snapshot.FormatJSON)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Save(ctx, storetest.Fixture(t, "users")))
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open("", snapshot.FormatJSON)
	assert.True(t, errs.IsInvalidInput(err))
}
