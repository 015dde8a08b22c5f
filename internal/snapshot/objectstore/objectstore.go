// Package objectstore persists snapshots as objects in a filestore bucket,
// one object per table under a key prefix.
package objectstore

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/filestore"
	"github.com/koustreak/relcore/internal/snapshot"
)

// Store adapts a filestore.Store to snapshot.Store.
type Store struct {
	files  filestore.Store
	bucket string
	prefix string
	format snapshot.Format
}

// New wraps files. Snapshots are written to bucket/prefix/<table>.<ext>.
// The bucket is created if missing.
func New(ctx context.Context, files filestore.Store, bucket, prefix string, format snapshot.Format) (*Store, error) {
	if bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "objectstore: bucket is required")
	}
	if err := files.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Store{files: files, bucket: bucket, prefix: prefix, format: format}, nil
}

func (s *Store) key(name string) string {
	return s.prefix + name + "." + s.format.Ext()
}

func (s *Store) contentType() string {
	if s.format == snapshot.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap, s.format)
	if err != nil {
		return err
	}
	_, err = s.files.PutObject(ctx, s.bucket, s.key(snap.Name()), bytes.NewReader(data), int64(len(data)), s.contentType())
	return err
}

func (s *Store) Load(ctx context.Context, name string) (*snapshot.Snapshot, bool, error) {
	obj, err := s.files.GetObject(ctx, s.bucket, s.key(name))
	if errs.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrKindStorage, "read snapshot object", err).WithTable(name)
	}
	snap, err := snapshot.Decode(data, s.format)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	return s.files.RemoveObject(ctx, s.bucket, s.key(name))
}

func (s *Store) ListAll(ctx context.Context) ([]string, error) {
	objects, err := s.files.ListObjects(ctx, s.bucket, filestore.ListOptions{Prefix: s.prefix})
	if err != nil {
		return nil, err
	}
	ext := "." + s.format.Ext()
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		base := path.Base(obj.Key)
		if name, ok := strings.CutSuffix(base, ext); ok && strings.TrimPrefix(obj.Key, s.prefix) == base {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the underlying filestore.
func (s *Store) Close() error {
	return s.files.Close()
}
