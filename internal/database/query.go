package database

import (
	"fmt"
	"strings"
)

// SnapshotTable is the table every SQL backend keeps snapshots in.
const SnapshotTable = "relcore_snapshots"

// Dialect controls placeholder style, identifier quoting and upsert syntax.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and backtick quoting.
	DialectMySQL

	// DialectSQLite uses ? placeholders.
	DialectSQLite
)

// DialectFor returns the dialect of a driver.
func DialectFor(d Driver) Dialect {
	switch d {
	case DriverMySQL:
		return DialectMySQL
	case DriverSQLite:
		return DialectSQLite
	default:
		return DialectPostgres
	}
}

// Statements holds the SQL a snapshot store issues, rendered for one dialect.
type Statements struct {
	CreateTable string
	Upsert      string // args: name, body, saved_at
	Select      string // args: name
	Delete      string // args: name
	ListNames   string
}

// BuildStatements renders the snapshot statements for d against table.
// Identifiers are quoted; values are always passed as args.
func BuildStatements(d Dialect, table string) Statements {
	t := d.quoteIdent(table)
	name, body, savedAt := d.quoteIdent("name"), d.quoteIdent("body"), d.quoteIdent("saved_at")

	var create, upsert string
	switch d {
	case DialectMySQL:
		create = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s VARCHAR(255) NOT NULL PRIMARY KEY, %s LONGTEXT NOT NULL, %s DATETIME(6) NOT NULL)",
			t, name, body, savedAt)
		upsert = fmt.Sprintf(
			"INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE %s = VALUES(%s), %s = VALUES(%s)",
			t, name, body, savedAt, body, body, savedAt, savedAt)
	default:
		tsType := "TIMESTAMPTZ"
		if d == DialectSQLite {
			tsType = "TIMESTAMP"
		}
		create = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s TEXT NOT NULL PRIMARY KEY, %s TEXT NOT NULL, %s %s NOT NULL)",
			t, name, body, savedAt, tsType)
		upsert = fmt.Sprintf(
			"INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s) ON CONFLICT (%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s",
			t, name, body, savedAt, d.placeholder(1), d.placeholder(2), d.placeholder(3),
			name, body, body, savedAt, savedAt)
	}

	return Statements{
		CreateTable: create,
		Upsert:      upsert,
		Select:      fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", body, t, name, d.placeholder(1)),
		Delete:      fmt.Sprintf("DELETE FROM %s WHERE %s = %s", t, name, d.placeholder(1)),
		ListNames:   fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", name, t, name),
	}
}

// placeholder returns the correct parameter placeholder for the dialect.
// Postgres: $1, $2, …   MySQL and SQLite: ? (index is ignored)
func (d Dialect) placeholder(idx int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

// quoteIdent quotes a SQL identifier: backticks for MySQL, ANSI double
// quotes elsewhere.
func (d Dialect) quoteIdent(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
