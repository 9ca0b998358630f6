package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"stockingest/internal/apperr"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// classify maps a driver error to StoreUnavailable when the database file
// cannot be used at all and to StoreWrite otherwise.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return apperr.StoreUnavailable(op, err, "sqlite unavailable")
	}
	return apperr.StoreWrite(op, err, "statement failed")
}

func isUnavailable(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_READONLY:
			return true
		}
		return false
	}

	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded)
}
