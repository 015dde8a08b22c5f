// Package parser turns the RelCore SQL subset into commands.
//
// Eight statement forms are accepted:
//
//	CREATE TABLE t (col TYPE [PRIMARY KEY] [UNIQUE] [NOT NULL], ...)
//	INSERT INTO t [(c1, c2, ...)] VALUES (lit, ...)
//	SELECT * | c1, c2 FROM t [WHERE col op lit]
//	SELECT * FROM a [INNER] JOIN b ON a.x = b.y
//	UPDATE t SET c = lit [, c = lit]* [WHERE col op lit]
//	DELETE FROM t [WHERE col op lit]
//	SHOW TABLES
//	DESCRIBE t
//
// Keywords are case-insensitive and a trailing semicolon is optional. Every
// failure is reported as errs.ErrKindInvalidInput.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/expr"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

// Command is a parsed statement.
type Command interface {
	command()
}

// CreateTable defines a new table.
type CreateTable struct {
	Schema schema.TableSchema
}

// Insert adds one row. Columns is nil when the statement gave no column
// list, in which case Values map onto the schema columns in order.
type Insert struct {
	Table   string
	Columns []string
	Values  []value.Value
}

// Select reads rows. Columns is nil for *.
type Select struct {
	Table   string
	Columns []string
	Where   *expr.Predicate
}

// Join is SELECT * FROM Left JOIN Right ON Left.LeftColumn = Right.RightColumn.
type Join struct {
	LeftTable   string
	LeftColumn  string
	RightTable  string
	RightColumn string
}

// Update assigns Set on rows matching Where.
type Update struct {
	Table string
	Set   schema.Row
	Where *expr.Predicate
}

// Delete removes rows matching Where.
type Delete struct {
	Table string
	Where *expr.Predicate
}

// ShowTables lists table names.
type ShowTables struct{}

// Describe returns a table schema.
type Describe struct {
	Table string
}

func (*CreateTable) command() {}
func (*Insert) command()      {}
func (*Select) command()      {}
func (*Join) command()        {}
func (*Update) command()      {}
func (*Delete) command()      {}
func (*ShowTables) command()  {}
func (*Describe) command()    {}

// Parse parses a single statement.
func Parse(sql string) (Command, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "empty statement")
	}
	ast, err := scriptParser.ParseString("", sql)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "syntax error", err)
	}

	st := ast.Stmt
	switch {
	case st.Create != nil:
		return convertCreate(st.Create)
	case st.Insert != nil:
		return convertInsert(st.Insert)
	case st.Select != nil:
		return convertSelect(st.Select)
	case st.Update != nil:
		return convertUpdate(st.Update)
	case st.Delete != nil:
		return convertDelete(st.Delete)
	case st.Show != nil:
		return &ShowTables{}, nil
	case st.Describe != nil:
		return &Describe{Table: st.Describe.Table}, nil
	}
	return nil, errs.New(errs.ErrKindInvalidInput, "unrecognised statement")
}

// ParseLiteral parses one literal: a quoted string, a number, true, false
// or null.
func ParseLiteral(s string) (value.Value, error) {
	lit, err := literalParser.ParseString("", s)
	if err != nil {
		return value.Value{}, errs.Wrap(errs.ErrKindInvalidInput, "invalid literal", err)
	}
	return lit.value()
}

func convertCreate(c *createStmt) (Command, error) {
	s := schema.TableSchema{Name: c.Table}
	for _, col := range c.Columns {
		typ, ok := schema.ParseColumnType(col.Type)
		if !ok {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown column type %q", col.Type).
				WithTable(c.Table).WithColumn(col.Name)
		}
		def := schema.ColumnDefinition{Name: col.Name, Type: typ}
		for _, k := range col.Constraints {
			def.PrimaryKey = def.PrimaryKey || k.PrimaryKey
			def.Unique = def.Unique || k.Unique
			def.NotNull = def.NotNull || k.NotNull
		}
		s.Columns = append(s.Columns, def)
	}
	return &CreateTable{Schema: s}, nil
}

func convertInsert(in *insertStmt) (Command, error) {
	if err := uniqueNames(in.Table, in.Columns); err != nil {
		return nil, err
	}
	values := make([]value.Value, len(in.Values))
	for i, lit := range in.Values {
		v, err := lit.value()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Insert{Table: in.Table, Columns: in.Columns, Values: values}, nil
}

func convertSelect(sel *selectStmt) (Command, error) {
	if sel.Join != nil {
		if !sel.Projection.Star {
			return nil, errs.New(errs.ErrKindInvalidInput, "JOIN only supports SELECT *")
		}
		if sel.Where != nil {
			return nil, errs.New(errs.ErrKindInvalidInput, "JOIN does not take a WHERE clause")
		}
		return convertJoin(sel.Table, sel.Join)
	}

	where, err := convertWhere(sel.Where)
	if err != nil {
		return nil, err
	}
	var columns []string
	if !sel.Projection.Star {
		columns = sel.Projection.Columns
	}
	return &Select{Table: sel.Table, Columns: columns, Where: where}, nil
}

// convertJoin accepts the ON sides in either order as long as they name the
// two joined tables.
func convertJoin(from string, j *joinClause) (Command, error) {
	switch {
	case j.LeftTable == from && j.RightTable == j.Table:
		return &Join{LeftTable: from, LeftColumn: j.LeftColumn, RightTable: j.Table, RightColumn: j.RightColumn}, nil
	case j.LeftTable == j.Table && j.RightTable == from:
		return &Join{LeftTable: from, LeftColumn: j.RightColumn, RightTable: j.Table, RightColumn: j.LeftColumn}, nil
	}
	return nil, errs.Newf(errs.ErrKindInvalidInput,
		"ON clause must compare %s and %s columns", from, j.Table)
}

func convertUpdate(u *updateStmt) (Command, error) {
	set := make(schema.Row, len(u.Set))
	for _, a := range u.Set {
		if _, dup := set[a.Column]; dup {
			return nil, errs.New(errs.ErrKindInvalidInput, "column assigned more than once").
				WithTable(u.Table).WithColumn(a.Column)
		}
		v, err := a.Value.value()
		if err != nil {
			return nil, err
		}
		set[a.Column] = v
	}
	where, err := convertWhere(u.Where)
	if err != nil {
		return nil, err
	}
	return &Update{Table: u.Table, Set: set, Where: where}, nil
}

func convertDelete(d *deleteStmt) (Command, error) {
	where, err := convertWhere(d.Where)
	if err != nil {
		return nil, err
	}
	return &Delete{Table: d.Table, Where: where}, nil
}

func convertWhere(w *whereClause) (*expr.Predicate, error) {
	if w == nil {
		return nil, nil
	}
	op, err := expr.ParseOp(w.Op)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid operator", err)
	}
	v, err := w.Value.value()
	if err != nil {
		return nil, err
	}
	return &expr.Predicate{Column: w.Column, Op: op, Value: v}, nil
}

func uniqueNames(table string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return errs.New(errs.ErrKindInvalidInput, "column listed more than once").
				WithTable(table).WithColumn(n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (l *literal) value() (value.Value, error) {
	switch {
	case l.Null:
		return value.Null(), nil
	case l.True:
		return value.Bool(true), nil
	case l.False:
		return value.Bool(false), nil
	case l.String != nil:
		return value.String(unquote(*l.String)), nil
	case l.Number != nil:
		n, err := strconv.ParseFloat(*l.Number, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return value.Value{}, errs.Newf(errs.ErrKindInvalidInput, "invalid number %s", *l.Number)
		}
		return value.Number(n), nil
	}
	return value.Value{}, errs.New(errs.ErrKindInvalidInput, "missing literal")
}

// unquote strips the surrounding quotes and collapses '' to '.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(s, "''", "'")
}
