// Package table couples row storage with index maintenance.
//
// Rows live in a B-tree keyed by RowID, so iteration follows insertion order
// and deleting a row never moves another one. Every index entry refers to
// the same RowID used as the storage key.
//
// A Table performs no validation; the engine checks rows before handing them
// over.
package table

import (
	"iter"

	"github.com/google/btree"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/index"
	"github.com/koustreak/relcore/internal/schema"
)

const btreeDegree = 32

// Record is a stored row with its identifier.
type Record struct {
	ID  index.RowID `json:"id" yaml:"id"`
	Row schema.Row  `json:"row" yaml:"row"`
}

func lessRecord(a, b *Record) bool { return a.ID < b.ID }

// Table is the in-memory state of one table.
type Table struct {
	schema  *schema.TableSchema
	rows    *btree.BTreeG[*Record]
	indexes map[string]*index.Index
	nextID  index.RowID
}

// New creates an empty table for a normalized schema, with one index per
// primary-key or unique column.
func New(s *schema.TableSchema) *Table {
	t := &Table{
		schema:  s,
		rows:    btree.NewG(btreeDegree, lessRecord),
		indexes: make(map[string]*index.Index),
	}
	for _, col := range s.IndexedColumns() {
		t.indexes[col] = index.New(col)
	}
	return t
}

// Restore rebuilds a table from persisted state. Indexes are always rebuilt
// from the records; a persisted index that disagrees with them is a storage
// error. The counter is moved past the highest stored id if needed.
func Restore(s *schema.TableSchema, records []Record, indexes map[string]*index.Index, nextID index.RowID) (*Table, error) {
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	t := New(s)
	for _, rec := range records {
		if _, exists := t.rows.Get(&Record{ID: rec.ID}); exists {
			return nil, errs.Newf(errs.ErrKindStorage, "duplicate row id %d in snapshot", rec.ID).WithTable(s.Name)
		}
		t.rows.ReplaceOrInsert(&Record{ID: rec.ID, Row: rec.Row.Clone()})
		if rec.ID >= nextID {
			nextID = rec.ID + 1
		}
	}
	t.nextID = nextID

	for _, col := range s.IndexedColumns() {
		built := index.Build(col, t.All())
		if stored, ok := indexes[col]; ok && stored != nil {
			if stored.Column() != col || !built.Equal(stored) {
				return nil, errs.New(errs.ErrKindStorage, "persisted index does not match rows").
					WithTable(s.Name).WithColumn(col)
			}
		}
		t.indexes[col] = built
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.schema.Name }

// Schema returns the live schema. Callers must not modify it.
func (t *Table) Schema() *schema.TableSchema { return t.schema }

// Len returns the number of stored rows.
func (t *Table) Len() int { return t.rows.Len() }

// NextID returns the id the next insert will receive.
func (t *Table) NextID() index.RowID { return t.nextID }

// Get returns the row stored under id.
func (t *Table) Get(id index.RowID) (schema.Row, bool) {
	rec, ok := t.rows.Get(&Record{ID: id})
	if !ok {
		return nil, false
	}
	return rec.Row, true
}

// All iterates rows in ascending id order. The table must not be modified
// during iteration.
func (t *Table) All() iter.Seq2[index.RowID, schema.Row] {
	return func(yield func(index.RowID, schema.Row) bool) {
		t.rows.Ascend(func(rec *Record) bool {
			return yield(rec.ID, rec.Row)
		})
	}
}

// Records returns a copy of every record in id order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, t.rows.Len())
	t.rows.Ascend(func(rec *Record) bool {
		out = append(out, Record{ID: rec.ID, Row: rec.Row.Clone()})
		return true
	})
	return out
}

// Index returns the index on column, if the column is indexed.
func (t *Table) Index(column string) (*index.Index, bool) {
	idx, ok := t.indexes[column]
	return idx, ok
}

// Insert stores row under a fresh id and indexes it.
func (t *Table) Insert(row schema.Row) index.RowID {
	id := t.nextID
	t.nextID++
	t.rows.ReplaceOrInsert(&Record{ID: id, Row: row})
	t.indexRow(id, row)
	return id
}

// Replace swaps the row stored under id, moving its index entries.
// It reports false when id is not stored.
func (t *Table) Replace(id index.RowID, row schema.Row) bool {
	rec, ok := t.rows.Get(&Record{ID: id})
	if !ok {
		return false
	}
	t.unindexRow(id, rec.Row)
	rec.Row = row
	t.indexRow(id, row)
	return true
}

// Delete removes the row stored under id and its index entries.
func (t *Table) Delete(id index.RowID) bool {
	rec, ok := t.rows.Delete(&Record{ID: id})
	if !ok {
		return false
	}
	t.unindexRow(id, rec.Row)
	return true
}

func (t *Table) indexRow(id index.RowID, row schema.Row) {
	for col, idx := range t.indexes {
		if v, ok := row[col]; ok {
			idx.Insert(v, id)
		}
	}
}

func (t *Table) unindexRow(id index.RowID, row schema.Row) {
	for col, idx := range t.indexes {
		if v, ok := row[col]; ok {
			idx.Remove(v, id)
		}
	}
}
