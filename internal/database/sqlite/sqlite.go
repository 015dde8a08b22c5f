// Package sqlite stores table snapshots in a SQLite file through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/koustreak/relcore/internal/database"
	"github.com/koustreak/relcore/internal/errs"
)

// New opens the database file named by cfg.DSN (a path, ":memory:", or a
// file: URI) and pings it.
func New(ctx context.Context, cfg *database.Config) (*database.StdDB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite: DSN is required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "open sqlite", err)
	}

	d := database.NewStdDB(db, cfg, mapErrorFunc)
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Open connects and returns a snapshot store over the file.
func Open(ctx context.Context, cfg *database.Config) (*database.SnapshotStore, error) {
	d, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := database.NewSnapshotStore(ctx, d, database.DialectSQLite)
	if err != nil {
		d.Close()
		return nil, err
	}
	return store, nil
}
