package schema

import (
	"sort"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/value"
)

// Row maps column names to values. A missing key is different from an
// explicit null.
type Row map[string]value.Value

// Clone returns a shallow copy; values are immutable so this is a full copy.
func (r Row) Clone() Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Project keeps only the listed keys that are present on r.
// A nil or empty list returns a copy of the whole row.
func (r Row) Project(columns []string) Row {
	if len(columns) == 0 {
		return r.Clone()
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

// Merge returns a copy of r with every key of updates applied on top.
func (r Row) Merge(updates Row) Row {
	out := r.Clone()
	for k, v := range updates {
		out[k] = v
	}
	return out
}

// ValidateRow checks row against s. With requireAll set every NotNull
// column must be present as a key, which is what insert needs; update
// passes false because existing fields persist.
func (s *TableSchema) ValidateRow(row Row, requireAll bool) error {
	unknown := make([]string, 0)
	for name := range row {
		if !s.HasColumn(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errs.New(errs.ErrKindValidation, "unknown column").
			WithTable(s.Name).WithColumn(unknown[0])
	}

	for _, col := range s.Columns {
		v, present := row[col.Name]
		if !present {
			if requireAll && col.NotNull {
				return errs.New(errs.ErrKindValidation, "missing required column").
					WithTable(s.Name).WithColumn(col.Name)
			}
			continue
		}
		if v.IsNull() {
			if col.NotNull {
				return errs.New(errs.ErrKindValidation, "null value in not-null column").
					WithTable(s.Name).WithColumn(col.Name)
			}
			continue
		}
		if !col.Type.Accepts(v) {
			return errs.Newf(errs.ErrKindValidation, "type mismatch: expected %s, got %s", col.Type, v.Kind()).
				WithTable(s.Name).WithColumn(col.Name).WithValue(v)
		}
		if !v.IsFinite() {
			return errs.New(errs.ErrKindValidation, "number must be finite").
				WithTable(s.Name).WithColumn(col.Name).WithValue(v)
		}
	}
	return nil
}
