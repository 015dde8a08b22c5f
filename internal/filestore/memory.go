package filestore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/relcore/internal/errs"
)

// MemStore is an in-process Store. It backs tests and local runs that want
// the object-store code path without a server.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memObject
}

type memObject struct {
	data []byte
	info ObjectInfo
}

// NewMemStore creates an empty store with no buckets.
func NewMemStore() *MemStore {
	return &MemStore{buckets: make(map[string]map[string]memObject)}
}

func (m *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemStore) Close() error { return nil }

func (m *MemStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]memObject)
	}
	return nil
}

func (m *MemStore) bucket(name string) (map[string]memObject, error) {
	b, ok := m.buckets[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", name)
	}
	return b, nil
}

func (m *MemStore) ListObjects(_ context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}

	var out []ObjectInfo
	for key, obj := range b {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if !opts.Recursive && strings.Contains(key[len(opts.Prefix):], "/") {
			continue
		}
		out = append(out, obj.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *MemStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (*ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "put object", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStorage, "read upload body", err)
	}
	sum := md5.Sum(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: time.Now().UTC(),
	}
	b[key] = memObject{data: data, info: info}
	return &info, nil
}

func (m *MemStore) GetObject(_ context.Context, bucket, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[key]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %q does not exist", key)
	}
	info := obj.info
	return &memReader{Reader: bytes.NewReader(obj.data), info: &info}, nil
}

func (m *MemStore) StatObject(_ context.Context, bucket, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := b[key]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %q does not exist", key)
	}
	info := obj.info
	return &info, nil
}

func (m *MemStore) RemoveObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.bucket(bucket)
	if err != nil {
		return err
	}
	delete(b, key)
	return nil
}

type memReader struct {
	*bytes.Reader
	info *ObjectInfo
}

func (r *memReader) Close() error { return nil }

func (r *memReader) Info() *ObjectInfo { return r.info }
