package database

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

// IsNoRows reports whether err means a select matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint or a
// unique index. (2067) is SQLITE_CONSTRAINT_UNIQUE.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "(2067)")
}
