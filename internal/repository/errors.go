// Package repository implements raw SQL data access for the application.
// This file defines sentinel error values reused across repositories so that
// handlers can map storage failures onto the HTTP error taxonomy without
// ever inspecting vendor-specific error codes themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when registering with an email that already
// has an account.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrGenreExists is returned when creating a genre whose name is taken.
// Handlers translate this into HTTP 409.
var ErrGenreExists = errors.New("genre already exists")

// ErrUserNotFound is returned when a referenced user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrGenreNotFound is returned when a referenced genre row does not exist.
var ErrGenreNotFound = errors.New("genre not found")

// ErrPublicationNotFound is returned when a referenced publication row does
// not exist.
var ErrPublicationNotFound = errors.New("publication not found")

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation.  The
// vendor error type is switched on here, once, so the rest of the codebase
// only ever sees the typed sentinels above.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
