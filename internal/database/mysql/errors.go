package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/relcore/internal/errs"
)

// mapError translates go-sql-driver errors into *errs.Error.
// err must be non-nil.
func mapError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func mapErrorFunc(err error, msg string) error {
	return mapError(err, msg)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case 1044, 1045, 1142, 1227:
		return errs.ErrKindPermissionDenied
	case 1040, 1049, 1203, 2002, 2003, 2006, 2013:
		return errs.ErrKindConnectionFailed
	case 1062:
		return errs.ErrKindConstraint
	case 1205, 3024:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindStorage
	}
}
