// Package dirstore keeps one snapshot file per table in a local directory.
package dirstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/snapshot"
)

// Store writes <dir>/<table>.<ext>.
type Store struct {
	dir    string
	format snapshot.Format
}

// Open creates dir if needed.
func Open(dir string, format snapshot.Format) (*Store, error) {
	if dir == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "dirstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mapError(err, "create snapshot directory")
	}
	return &Store{dir: dir, format: format}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+"."+s.format.Ext())
}

// Save writes to a temp file and renames it over the old snapshot, so a
// crash never leaves a half-written file behind.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return mapError(err, "save snapshot")
	}
	data, err := snapshot.Encode(snap, s.format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+snap.Name()+".*.tmp")
	if err != nil {
		return mapError(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return mapError(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return mapError(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), s.path(snap.Name())); err != nil {
		return mapError(err, "rename snapshot")
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (*snapshot.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, mapError(err, "load snapshot")
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err, "read snapshot")
	}
	snap, err := snapshot.Decode(data, s.format)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return mapError(err, "delete snapshot")
	}
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return mapError(err, "delete snapshot")
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapError(err, "list snapshots")
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, mapError(err, "list snapshots")
	}
	suffix := "." + s.format.Ext()
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), suffix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Close() error { return nil }

// mapError converts filesystem errors to errs kinds.
func mapError(err error, msg string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	default:
		return errs.Wrap(errs.ErrKindStorage, msg, err)
	}
}
