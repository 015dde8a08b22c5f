// Package catalog owns the set of live tables and writes each one through
// to the snapshot store.
//
// A Catalog is not safe for concurrent use. Callers serialize access; the
// HTTP server does so with one mutex per catalog.
package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/logger"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/snapshot"
	"github.com/koustreak/relcore/internal/table"
)

const defaultPersistTimeout = 5 * time.Second

// Catalog is the table manager.
type Catalog struct {
	tables  map[string]*table.Table
	store   snapshot.Store
	log     *logger.Logger
	timeout time.Duration
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(c *Catalog) { c.log = logger.OrNop(l).Component("catalog") }
}

// WithPersistTimeout bounds each store call.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates an empty catalog. A nil store keeps snapshots in memory.
func New(store snapshot.Store, opts ...Option) *Catalog {
	if store == nil {
		store = snapshot.NewMemoryStore()
	}
	c := &Catalog{
		tables:  make(map[string]*table.Table),
		store:   store,
		log:     logger.Nop(),
		timeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates a catalog and restores every table the store holds.
func Open(ctx context.Context, store snapshot.Store, opts ...Option) (*Catalog, error) {
	c := New(store, opts...)

	names, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		snap, found, err := c.store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		t, err := snap.Restore()
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindStorage, "restore table", err).WithTable(name)
		}
		c.tables[t.Name()] = t
		c.log.DebugWith("table restored", map[string]interface{}{"table": name, "rows": t.Len()})
	}

	c.log.InfoWith("catalog opened", map[string]interface{}{"tables": len(c.tables)})
	return c, nil
}

// CreateTable validates s, registers an empty table and persists it.
// If the write fails the table is not registered.
func (c *Catalog) CreateTable(s schema.TableSchema) (*table.Table, error) {
	if _, exists := c.tables[s.Name]; exists {
		return nil, errs.DuplicateTable(s.Name)
	}

	def := s.Clone()
	if err := def.Normalize(); err != nil {
		return nil, err
	}

	t := table.New(def)
	c.tables[def.Name] = t
	if err := c.SaveTable(def.Name); err != nil {
		delete(c.tables, def.Name)
		return nil, err
	}

	c.log.InfoWith("table created", map[string]interface{}{
		"table":   def.Name,
		"columns": len(def.Columns),
	})
	return t, nil
}

// GetTable returns the live table.
func (c *Catalog) GetTable(name string) (*table.Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, errs.NotFound(name)
	}
	return t, nil
}

// DropTable removes the table from the store, then from memory.
func (c *Catalog) DropTable(name string) error {
	if _, ok := c.tables[name]; !ok {
		return errs.NotFound(name)
	}

	ctx, cancel := c.persistContext()
	defer cancel()
	if err := c.store.Delete(ctx, name); err != nil {
		return c.storageError("delete snapshot", name, err)
	}

	delete(c.tables, name)
	c.log.InfoWith("table dropped", map[string]interface{}{"table": name})
	return nil
}

// ListTables returns table names in sorted order.
func (c *Catalog) ListTables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableExists reports whether name is registered.
func (c *Catalog) TableExists(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// Describe returns a copy of the table's schema.
func (c *Catalog) Describe(name string) (*schema.TableSchema, error) {
	t, err := c.GetTable(name)
	if err != nil {
		return nil, err
	}
	return t.Schema().Clone(), nil
}

// SaveTable snapshots the table and writes it to the store.
func (c *Catalog) SaveTable(name string) error {
	t, err := c.GetTable(name)
	if err != nil {
		return err
	}

	ctx, cancel := c.persistContext()
	defer cancel()

	start := time.Now()
	if err := c.store.Save(ctx, snapshot.Capture(t)); err != nil {
		return c.storageError("save snapshot", name, err)
	}

	c.log.DebugWith("table persisted", map[string]interface{}{
		"table":   name,
		"rows":    t.Len(),
		"elapsed": time.Since(start).String(),
	})
	return nil
}

// Close closes the snapshot store.
func (c *Catalog) Close() error {
	return c.store.Close()
}

func (c *Catalog) persistContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// storageError files a backend failure under ErrKindStorage; the backend's
// own kind stays reachable through the cause.
func (c *Catalog) storageError(msg, table string, err error) error {
	c.log.ErrorWith(msg+" failed", err, map[string]interface{}{"table": table})
	return errs.Wrap(errs.ErrKindStorage, msg, err).WithTable(table)
}
