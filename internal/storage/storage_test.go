package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/database"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/snapshot/dirstore"
)

func TestOpen_LocalDrivers(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		cfg    func(t *testing.T) config.StorageConfig
		assert func(t *testing.T, s snapshot.Store)
	}{
		{
			name: "memory",
			cfg:  func(t *testing.T) config.StorageConfig { return config.StorageConfig{Driver: "memory", Format: "json"} },
			assert: func(t *testing.T, s snapshot.Store) {
				assert.IsType(t, &snapshot.MemoryStore{}, s)
			},
		},
		{
			name: "dir",
			cfg: func(t *testing.T) config.StorageConfig {
				return config.StorageConfig{Driver: "dir", Format: "yaml", Dir: t.TempDir()}
			},
			assert: func(t *testing.T, s snapshot.Store) {
				assert.IsType(t, &dirstore.Store{}, s)
			},
		},
		{
			name: "sqlite",
			cfg: func(t *testing.T) config.StorageConfig {
				return config.StorageConfig{Driver: "sqlite", Format: "json", DSN: filepath.Join(t.TempDir(), "r.db")}
			},
			assert: func(t *testing.T, s snapshot.Store) {
				assert.IsType(t, &database.SnapshotStore{}, s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg(t), nil)
			require.NoError(t, err)
			defer store.Close()
			tt.assert(t, store)

			names, err := store.ListAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestOpen_Rejects(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "tape", Format: "json"}, nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Open(context.Background(), config.StorageConfig{Driver: "memory", Format: "xml"}, nil)
	assert.True(t, errs.IsInvalidInput(err))
}
