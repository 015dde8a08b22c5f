// Package snapshot defines the persisted form of a table and the keyed store
// the catalog writes it through.
//
// A Snapshot holds everything needed to rebuild a table exactly: schema,
// records with their ids, index contents and the id counter.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/index"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/table"
)

// Snapshot is the serialized state of one table.
type Snapshot struct {
	Schema  *schema.TableSchema      `json:"schema" yaml:"schema"`
	Rows    []table.Record           `json:"rows" yaml:"rows"`
	Indexes map[string][]index.Entry `json:"indexes" yaml:"indexes"`
	NextID  index.RowID              `json:"nextId" yaml:"nextId"`
	SavedAt time.Time                `json:"savedAt" yaml:"savedAt"`
}

// Capture copies the state of t.
func Capture(t *table.Table) *Snapshot {
	s := &Snapshot{
		Schema:  t.Schema().Clone(),
		Rows:    t.Records(),
		Indexes: make(map[string][]index.Entry),
		NextID:  t.NextID(),
		SavedAt: time.Now().UTC(),
	}
	for _, col := range t.Schema().IndexedColumns() {
		if idx, ok := t.Index(col); ok {
			s.Indexes[col] = idx.Entries()
		}
	}
	return s
}

// Name is the table name, which is also the store key.
func (s *Snapshot) Name() string {
	if s.Schema == nil {
		return ""
	}
	return s.Schema.Name
}

// Restore rebuilds a live table.
func (s *Snapshot) Restore() (*table.Table, error) {
	if s.Schema == nil {
		return nil, errs.New(errs.ErrKindStorage, "snapshot has no schema")
	}
	indexes := make(map[string]*index.Index, len(s.Indexes))
	for col, entries := range s.Indexes {
		indexes[col] = index.FromEntries(col, entries)
	}
	return table.Restore(s.Schema.Clone(), s.Rows, indexes, s.NextID)
}

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q", s)
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Encode serializes s.
func Encode(s *Snapshot, f Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(s)
	default:
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStorage, "encode snapshot", err).WithTable(s.Name())
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte, f Format) (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindStorage, "decode snapshot", err)
	}
	if s.Schema == nil {
		return nil, errs.New(errs.ErrKindStorage, "decode snapshot: missing schema")
	}
	return &s, nil
}

// Store is the keyed persistence backend, one entry per table name.
//
// Load reports found=false with a nil error for an unknown name. Delete of an
// unknown name is not an error.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, name string) (*Snapshot, bool, error)
	Delete(ctx context.Context, name string) error
	ListAll(ctx context.Context) ([]string, error)
	Close() error
}
