package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by the read helpers when no row has the given id.
var ErrNotFound = errors.New("not found")

// IsForeignKeyViolation reports whether err is a SQLite foreign key failure,
// e.g. deleting a node that still has edges.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// IsConstraintViolation reports whether err is any SQLite constraint failure
// (NOT NULL, CHECK, UNIQUE, foreign key).
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}
