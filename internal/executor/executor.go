// Package executor runs parsed statements against a catalog.
package executor

import (
	"fmt"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/engine"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/join"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/parser"
	"github.com/koustreak/relcore/internal/schema"
)

// ResultKind says which Result fields are populated.
type ResultKind string

const (
	ResultRows     ResultKind = "rows"     // Columns, Rows
	ResultAffected ResultKind = "affected" // AffectedRows
	ResultTables   ResultKind = "tables"   // Tables
	ResultSchema   ResultKind = "schema"   // Schema
)

// Result is the outcome of one statement.
type Result struct {
	Kind         ResultKind          `json:"kind"`
	Columns      []string            `json:"columns,omitempty"`
	Rows         []schema.Row        `json:"rows,omitempty"`
	AffectedRows int                 `json:"affectedRows"`
	Tables       []string            `json:"tables,omitempty"`
	Schema       *schema.TableSchema `json:"schema,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// Executor dispatches commands to the catalog, engine and joiner that share
// one catalog. It is not safe for concurrent use.
type Executor struct {
	catalog *catalog.Catalog
	engine  *engine.Engine
	joiner  *join.Joiner
	log     *logger.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used by the executor and its engine.
func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) { e.log = logger.OrNop(l) }
}

// New creates an executor over c.
func New(c *catalog.Catalog, opts ...Option) *Executor {
	e := &Executor{catalog: c, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.engine = engine.New(c, engine.WithLogger(e.log))
	e.joiner = join.New(c)
	e.log = e.log.Component("executor")
	return e
}

// Catalog returns the catalog the executor runs against.
func (e *Executor) Catalog() *catalog.Catalog { return e.catalog }

// Engine returns the engine the executor runs against.
func (e *Executor) Engine() *engine.Engine { return e.engine }

// Joiner returns the joiner the executor runs against.
func (e *Executor) Joiner() *join.Joiner { return e.joiner }

// ExecSQL parses and runs one statement.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	cmd, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Exec(cmd)
}

// Exec runs cmd.
func (e *Executor) Exec(cmd parser.Command) (*Result, error) {
	res, err := e.exec(cmd)
	if err != nil {
		e.log.DebugWith("statement failed", map[string]interface{}{
			"command": fmt.Sprintf("%T", cmd),
			"kind":    errs.KindOf(err).String(),
		})
		return nil, err
	}
	return res, nil
}

func (e *Executor) exec(cmd parser.Command) (*Result, error) {
	switch c := cmd.(type) {
	case *parser.CreateTable:
		t, err := e.catalog.CreateTable(c.Schema)
		if err != nil {
			return nil, err
		}
		return &Result{
			Kind:    ResultSchema,
			Schema:  t.Schema().Clone(),
			Message: fmt.Sprintf("table %s created", t.Name()),
		}, nil

	case *parser.Insert:
		return e.insert(c)

	case *parser.Select:
		return e.selectRows(c)

	case *parser.Join:
		return e.join(c)

	case *parser.Update:
		n, err := e.engine.Update(c.Table, c.Set, c.Where)
		if err != nil {
			return nil, err
		}
		return affected(n, "updated"), nil

	case *parser.Delete:
		n, err := e.engine.Delete(c.Table, c.Where)
		if err != nil {
			return nil, err
		}
		return affected(n, "deleted"), nil

	case *parser.ShowTables:
		return &Result{Kind: ResultTables, Tables: e.catalog.ListTables()}, nil

	case *parser.Describe:
		s, err := e.catalog.Describe(c.Table)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: ResultSchema, Schema: s}, nil
	}
	return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported command %T", cmd)
}

func (e *Executor) insert(c *parser.Insert) (*Result, error) {
	s, err := e.catalog.Describe(c.Table)
	if err != nil {
		return nil, err
	}

	columns := c.Columns
	if columns == nil {
		columns = s.ColumnNames()
	}
	if len(columns) != len(c.Values) {
		return nil, errs.Newf(errs.ErrKindValidation, "%d values for %d columns", len(c.Values), len(columns)).
			WithTable(c.Table)
	}

	row := make(schema.Row, len(columns))
	for i, col := range columns {
		row[col] = c.Values[i]
	}
	if _, err := e.engine.Insert(c.Table, row); err != nil {
		return nil, err
	}
	return affected(1, "inserted"), nil
}

func (e *Executor) selectRows(c *parser.Select) (*Result, error) {
	rs, err := e.engine.Select(c.Table, c.Columns, c.Where)
	if err != nil {
		return nil, err
	}
	columns := c.Columns
	if columns == nil {
		s, err := e.catalog.Describe(c.Table)
		if err != nil {
			return nil, err
		}
		columns = s.ColumnNames()
	}
	return &Result{Kind: ResultRows, Columns: columns, Rows: rs.Rows}, nil
}

func (e *Executor) join(c *parser.Join) (*Result, error) {
	rows, err := e.joiner.InnerJoin(c.LeftTable, c.LeftColumn, c.RightTable, c.RightColumn)
	if err != nil {
		return nil, err
	}

	var columns []string
	for _, name := range []string{c.LeftTable, c.RightTable} {
		s, err := e.catalog.Describe(name)
		if err != nil {
			return nil, err
		}
		for _, col := range s.ColumnNames() {
			columns = append(columns, join.Key(name, col))
		}
	}
	return &Result{Kind: ResultRows, Columns: columns, Rows: rows}, nil
}

func affected(n int, verb string) *Result {
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	return &Result{
		Kind:         ResultAffected,
		AffectedRows: n,
		Message:      fmt.Sprintf("%d %s %s", n, noun, verb),
	}
}
