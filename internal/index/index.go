// Package index implements the equality hash index kept for primary-key and
// unique columns.
//
// An Index maps a value to the set of row identifiers holding it. It answers
// membership and exact lookups only; there is no ordered or range access.
// Null values are never stored.
package index

import (
	"iter"
	"slices"
	"sort"

	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

// RowID identifies a row for the lifetime of its table. IDs are allocated
// from a per-table counter and never reused.
type RowID uint64

// Index is a value -> row id set map for one column.
type Index struct {
	column  string
	entries map[value.Value]map[RowID]struct{}
}

// New creates an empty index for column.
func New(column string) *Index {
	return &Index{
		column:  column,
		entries: make(map[value.Value]map[RowID]struct{}),
	}
}

// Build scans rows and returns a fresh index over column.
func Build(column string, rows iter.Seq2[RowID, schema.Row]) *Index {
	idx := New(column)
	for id, row := range rows {
		if v, ok := row[column]; ok {
			idx.Insert(v, id)
		}
	}
	return idx
}

// Column returns the indexed column name.
func (i *Index) Column() string { return i.column }

// Insert adds id under v. Null values are ignored.
func (i *Index) Insert(v value.Value, id RowID) {
	if v.IsNull() {
		return
	}
	set, ok := i.entries[v]
	if !ok {
		set = make(map[RowID]struct{}, 1)
		i.entries[v] = set
	}
	set[id] = struct{}{}
}

// Remove deletes id from v's set, dropping the entry once it is empty.
func (i *Index) Remove(v value.Value, id RowID) {
	set, ok := i.entries[v]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(i.entries, v)
	}
}

// Lookup returns the ids holding v in ascending order. It never fails; an
// absent value yields an empty slice.
func (i *Index) Lookup(v value.Value) []RowID {
	set := i.entries[v]
	ids := make([]RowID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Contains reports whether any row holds v.
func (i *Index) Contains(v value.Value) bool {
	return len(i.entries[v]) > 0
}

// Equal reports whether o covers the same column with the same entries.
func (i *Index) Equal(o *Index) bool {
	if o == nil || i.column != o.column || len(i.entries) != len(o.entries) {
		return false
	}
	for v, set := range i.entries {
		other := o.entries[v]
		if len(other) != len(set) {
			return false
		}
		for id := range set {
			if _, ok := other[id]; !ok {
				return false
			}
		}
	}
	return true
}

// Len returns the number of distinct values.
func (i *Index) Len() int { return len(i.entries) }

// Entry is one value and its row ids, as exported for snapshots.
type Entry struct {
	Value value.Value `json:"value" yaml:"value"`
	IDs   []RowID     `json:"ids" yaml:"ids"`
}

// Entries lists every value with its ids, ordered by value.
func (i *Index) Entries() []Entry {
	out := make([]Entry, 0, len(i.entries))
	for v := range i.entries {
		out = append(out, Entry{Value: v, IDs: i.Lookup(v)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Value.Less(out[b].Value) })
	return out
}

// FromEntries rebuilds an index from exported entries.
func FromEntries(column string, entries []Entry) *Index {
	idx := New(column)
	for _, e := range entries {
		for _, id := range e.IDs {
			idx.Insert(e.Value, id)
		}
	}
	return idx
}
