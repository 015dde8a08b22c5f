// Package join implements the inner equi-join between two catalog tables.
package join

import (
	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/table"
)

// Joiner runs joins over one catalog.
type Joiner struct {
	catalog *catalog.Catalog
}

// New returns a Joiner over c.
func New(c *catalog.Catalog) *Joiner {
	return &Joiner{catalog: c}
}

// Key names a column in a joined row: "<table>.<column>".
func Key(tableName, column string) string {
	return tableName + "." + column
}

// InnerJoin pairs every left row with every right row whose join values are
// equal. Comparison is strict: values of different kinds never match and a
// null never matches anything, including another null. Output is ordered by
// left row, then right row, both in insertion order. Joining a table with
// itself is rejected, since both sides would share one key prefix.
func (j *Joiner) InnerJoin(leftTable, leftColumn, rightTable, rightColumn string) ([]schema.Row, error) {
	left, err := j.side(leftTable, leftColumn)
	if err != nil {
		return nil, err
	}
	right, err := j.side(rightTable, rightColumn)
	if err != nil {
		return nil, err
	}
	if leftTable == rightTable {
		return nil, errs.New(errs.ErrKindValidation, "self-join is not supported").WithTable(leftTable)
	}

	leftRecs := left.Records()
	rightRecs := right.Records()

	out := make([]schema.Row, 0)
	for _, l := range leftRecs {
		lv, ok := l.Row[leftColumn]
		if !ok || lv.IsNull() {
			continue
		}
		for _, r := range rightRecs {
			rv, ok := r.Row[rightColumn]
			if !ok || rv.IsNull() || !lv.Equal(rv) {
				continue
			}
			out = append(out, combine(leftTable, l.Row, rightTable, r.Row))
		}
	}
	return out, nil
}

func (j *Joiner) side(name, column string) (*table.Table, error) {
	t, err := j.catalog.GetTable(name)
	if err != nil {
		return nil, err
	}
	if !t.Schema().HasColumn(column) {
		return nil, errs.New(errs.ErrKindValidation, "unknown join column").
			WithTable(name).WithColumn(column)
	}
	return t, nil
}

// combine namespaces the keys present on each row.
func combine(leftTable string, l schema.Row, rightTable string, r schema.Row) schema.Row {
	row := make(schema.Row, len(l)+len(r))
	for k, v := range l {
		row[Key(leftTable, k)] = v
	}
	for k, v := range r {
		row[Key(rightTable, k)] = v
	}
	return row
}
