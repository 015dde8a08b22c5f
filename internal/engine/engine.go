// Package engine runs insert, select, update and delete against catalog
// tables.
//
// Every mutating call validates fully before touching the table, so a failed
// statement leaves no partial effect, and persists the table once before
// returning.
package engine

import (
	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/expr"
	"github.com/koustreak/relcore/internal/index"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/table"
)

// Engine is the query engine over one catalog. Like the catalog it is not
// safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	log     *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = logger.OrNop(l).Component("engine") }
}

// New creates an engine over c.
func New(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: c, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResultSet is the output of Select.
type ResultSet struct {
	Rows  []schema.Row
	Count int

	// Scanned is how many stored rows were examined.
	Scanned int
	// UsedIndex is true when an equality index chose the candidates.
	UsedIndex bool
}

// Insert validates row, checks primary-key and unique constraints, then
// stores and persists it.
func (e *Engine) Insert(tableName string, row schema.Row) (index.RowID, error) {
	t, err := e.catalog.GetTable(tableName)
	if err != nil {
		return 0, err
	}
	s := t.Schema()

	if err := s.ValidateRow(row, true); err != nil {
		return 0, err
	}
	for _, col := range s.IndexedColumns() {
		v, ok := row[col]
		if !ok || v.IsNull() {
			continue
		}
		idx, _ := t.Index(col)
		if idx.Contains(v) {
			return 0, duplicateValue(s.Name, col, v)
		}
	}

	id := t.Insert(row.Clone())
	e.log.DebugWith("row inserted", map[string]interface{}{"table": s.Name, "id": uint64(id)})

	if err := e.catalog.SaveTable(s.Name); err != nil {
		return id, err
	}
	return id, nil
}

// Select returns the rows matching where, projected onto columns.
// Empty columns means every column; a listed column a row lacks is left out
// of that row.
func (e *Engine) Select(tableName string, columns []string, where *expr.Predicate) (*ResultSet, error) {
	t, err := e.catalog.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	matches, err := candidates(t, where)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{
		Rows:      make([]schema.Row, 0, len(matches.records)),
		Scanned:   matches.scanned,
		UsedIndex: matches.usedIndex,
	}
	for _, rec := range matches.records {
		rs.Rows = append(rs.Rows, rec.Row.Project(columns))
	}
	rs.Count = len(rs.Rows)
	return rs, nil
}

// Update merges updates into every row matching where. All merged rows are
// validated and constraint-checked before any is written; on success each
// row keeps its id and the table is persisted once. Zero matches is not an
// error and writes nothing.
func (e *Engine) Update(tableName string, updates schema.Row, where *expr.Predicate) (int, error) {
	t, err := e.catalog.GetTable(tableName)
	if err != nil {
		return 0, err
	}
	s := t.Schema()

	if len(updates) == 0 {
		return 0, errs.New(errs.ErrKindValidation, "update sets no columns").WithTable(s.Name)
	}
	if err := s.ValidateRow(updates, false); err != nil {
		return 0, err
	}

	matches, err := candidates(t, where)
	if err != nil {
		return 0, err
	}
	if len(matches.records) == 0 {
		return 0, nil
	}

	merged := make([]table.Record, len(matches.records))
	for i, rec := range matches.records {
		row := rec.Row.Merge(updates)
		if err := s.ValidateRow(row, false); err != nil {
			return 0, err
		}
		merged[i] = table.Record{ID: rec.ID, Row: row}
	}
	if err := checkUpdateConstraints(t, updates, merged); err != nil {
		return 0, err
	}

	for _, rec := range merged {
		t.Replace(rec.ID, rec.Row)
	}
	e.log.DebugWith("rows updated", map[string]interface{}{"table": s.Name, "count": len(merged)})

	if err := e.catalog.SaveTable(s.Name); err != nil {
		return len(merged), err
	}
	return len(merged), nil
}

// Delete removes every row matching where and persists once if any row
// was removed.
func (e *Engine) Delete(tableName string, where *expr.Predicate) (int, error) {
	t, err := e.catalog.GetTable(tableName)
	if err != nil {
		return 0, err
	}

	matches, err := candidates(t, where)
	if err != nil {
		return 0, err
	}
	if len(matches.records) == 0 {
		return 0, nil
	}

	for _, rec := range matches.records {
		t.Delete(rec.ID)
	}
	e.log.DebugWith("rows deleted", map[string]interface{}{"table": tableName, "count": len(matches.records)})

	if err := e.catalog.SaveTable(tableName); err != nil {
		return len(matches.records), err
	}
	return len(matches.records), nil
}

func duplicateValue(tableName, column string, v any) error {
	return errs.New(errs.ErrKindConstraint, "duplicate value violates unique constraint").
		WithTable(tableName).WithColumn(column).WithValue(v)
}
