package database

import (
	"context"
	"database/sql"
)

// ErrorMapper translates a native driver error into an errs error.
// It is only called with non-nil errors.
type ErrorMapper func(err error, msg string) error

// StdDB implements DB over database/sql. The mysql and sqlite packages use
// it with their own ErrorMapper.
type StdDB struct {
	db     *sql.DB
	mapErr  ErrorMapper
}

// NewStdDB wraps db and applies the pool settings from cfg.
func NewStdDB(db *sql.DB, cfg *Config, mapErr ErrorMapper) *StdDB {
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	return &StdDB{db: db, mapErr: mapErr}
}

func (d *StdDB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return d.mapErr(err, "ping failed")
	}
	return nil
}

func (d *StdDB) Close() {
	_ = d.db.Close()
}

func (d *StdDB) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return d.mapErr(err, "exec failed")
	}
	return nil
}

func (d *StdDB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.mapErr(err, "query failed")
	}
	return &stdRows{rows: rows, mapErr: d.mapErr}, nil
}

func (d *StdDB) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &stdRow{row: d.db.QueryRowContext(ctx, query, args...), mapErr: d.mapErr}
}

// --- database/sql type wrappers ---

type stdRows struct {
	rows   *sql.Rows
	mapErr ErrorMapper
}

func (r *stdRows) Next() bool { return r.rows.Next() }
func (r *stdRows) Close()     { _ = r.rows.Close() }

func (r *stdRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.mapErr(err, "scan failed")
	}
	return nil
}

func (r *stdRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.mapErr(err, "error iterating rows")
	}
	return nil
}

type stdRow struct {
	row    *sql.Row
	mapErr ErrorMapper
}

func (r *stdRow) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		return r.mapErr(err, "scan failed")
	}
	return nil
}
