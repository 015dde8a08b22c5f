package engine

import (
	"github.com/koustreak/relcore/internal/expr"
	"github.com/koustreak/relcore/internal/index"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/table"
	"github.com/koustreak/relcore/internal/value"
)

type candidateSet struct {
	records   []table.Record
	scanned   int
	usedIndex bool
}

// candidates picks the rows a statement applies to, in id order. An
// equality predicate on an indexed column with a non-null literal is served
// from the index; everything else is a full scan. A predicate on a column
// the table does not have matches nothing.
func candidates(t *table.Table, where *expr.Predicate) (candidateSet, error) {
	if where != nil {
		if err := where.Validate(); err != nil {
			return candidateSet{}, err
		}
		if !t.Schema().HasColumn(where.Column) {
			return candidateSet{}, nil
		}
	}

	if key, ok := where.IndexKey(); ok {
		if idx, indexed := t.Index(where.Column); indexed {
			ids := idx.Lookup(key)
			set := candidateSet{records: make([]table.Record, 0, len(ids)), usedIndex: true}
			for _, id := range ids {
				row, ok := t.Get(id)
				if !ok {
					continue
				}
				set.scanned++
				set.records = append(set.records, table.Record{ID: id, Row: row})
			}
			return set, nil
		}
	}

	var set candidateSet
	for id, row := range t.All() {
		set.scanned++
		if where.Match(row) {
			set.records = append(set.records, table.Record{ID: id, Row: row})
		}
	}
	return set, nil
}

// checkUpdateConstraints evaluates uniqueness against the state the update
// would produce. A new value collides when a row outside the update already
// holds it, or when two updated rows would end up with it. A row keeping
// its own value never collides with itself.
func checkUpdateConstraints(t *table.Table, updates schema.Row, merged []table.Record) error {
	updating := make(map[index.RowID]struct{}, len(merged))
	for _, rec := range merged {
		updating[rec.ID] = struct{}{}
	}

	s := t.Schema()
	for _, col := range s.IndexedColumns() {
		if _, touched := updates[col]; !touched {
			continue
		}
		idx, _ := t.Index(col)

		seen := make(map[value.Value]struct{}, len(merged))
		for _, rec := range merged {
			v, ok := rec.Row[col]
			if !ok || v.IsNull() {
				continue
			}
			if _, dup := seen[v]; dup {
				return duplicateValue(s.Name, col, v)
			}
			seen[v] = struct{}{}

			for _, holder := range idx.Lookup(v) {
				if _, moving := updating[holder]; !moving {
					return duplicateValue(s.Name, col, v)
				}
			}
		}
	}
	return nil
}
