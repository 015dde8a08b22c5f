// Package mysql stores table snapshots in MySQL through database/sql and
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/relcore/internal/database"
	"github.com/koustreak/relcore/internal/errs"
)

// New opens a MySQL connection pool using the provided Config.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*database.StdDB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	d := database.NewStdDB(db, cfg, mapErrorFunc)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

// Open connects and returns a snapshot store over the pool.
func Open(ctx context.Context, cfg *database.Config) (*database.SnapshotStore, error) {
	d, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := database.NewSnapshotStore(ctx, d, database.DialectMySQL)
	if err != nil {
		d.Close()
		return nil, err
	}
	return store, nil
}

// normalizeDSN parses dsn and turns on the options the store depends on.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql DSN", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
