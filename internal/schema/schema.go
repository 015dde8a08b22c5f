// Package schema holds table definitions and the row shape rules that every
// insert and update is checked against.
package schema

import (
	"regexp"
	"strings"

	"github.com/koustreak/relcore/internal/errs"
)

// identifier is the shape of table and column names. Table names double as
// snapshot keys and file names, so path separators and leading dots are out.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Normalize validates s and promotes the primary-key column to NotNull.
// It modifies s in place.
func (s *TableSchema) Normalize() error {
	if strings.TrimSpace(s.Name) == "" {
		return errs.New(errs.ErrKindValidation, "table name must not be empty")
	}
	if !identifier.MatchString(s.Name) {
		return errs.Newf(errs.ErrKindValidation, "invalid table name %q", s.Name)
	}
	if len(s.Columns) == 0 {
		return errs.New(errs.ErrKindValidation, "table must have at least one column").WithTable(s.Name)
	}

	seen := make(map[string]struct{}, len(s.Columns))
	primaryKeys := 0
	for i := range s.Columns {
		col := &s.Columns[i]
		if strings.TrimSpace(col.Name) == "" {
			return errs.New(errs.ErrKindValidation, "column name must not be empty").WithTable(s.Name)
		}
		if !identifier.MatchString(col.Name) {
			return errs.Newf(errs.ErrKindValidation, "invalid column name %q", col.Name).WithTable(s.Name)
		}
		if _, dup := seen[col.Name]; dup {
			return errs.New(errs.ErrKindValidation, "duplicate column name").
				WithTable(s.Name).WithColumn(col.Name)
		}
		seen[col.Name] = struct{}{}

		if !col.Type.Valid() {
			return errs.Newf(errs.ErrKindValidation, "unknown column type %q", string(col.Type)).
				WithTable(s.Name).WithColumn(col.Name)
		}
		if col.PrimaryKey {
			primaryKeys++
			col.NotNull = true
		}
	}

	switch {
	case primaryKeys == 0:
		return errs.New(errs.ErrKindValidation, "table must declare a primary key").WithTable(s.Name)
	case primaryKeys > 1:
		return errs.Newf(errs.ErrKindValidation, "table declares %d primary keys, expected exactly one", primaryKeys).
			WithTable(s.Name)
	}
	return nil
}

// Column looks up a column by name.
func (s *TableSchema) Column(name string) (ColumnDefinition, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// HasColumn reports whether name is a declared column.
func (s *TableSchema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// PrimaryKey returns the primary-key column of a normalized schema.
func (s *TableSchema) PrimaryKey() ColumnDefinition {
	for _, c := range s.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return ColumnDefinition{}
}

// IndexedColumns returns the primary-key and unique column names in
// declaration order.
func (s *TableSchema) IndexedColumns() []string {
	var cols []string
	for _, c := range s.Columns {
		if c.Indexed() {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// ColumnNames returns every column name in declaration order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy.
func (s *TableSchema) Clone() *TableSchema {
	cp := &TableSchema{Name: s.Name, Columns: make([]ColumnDefinition, len(s.Columns))}
	copy(cp.Columns, s.Columns)
	return cp
}
