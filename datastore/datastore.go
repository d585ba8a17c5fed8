// Package datastore holds the SQL repositories behind the API: accounts,
// the plan catalogue, memberships, favorites and notifications.
//
// Queries are written with '?' placeholders and rebound for the active
// driver, so the same code runs on SQLite and Postgres.
package datastore

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyJoined      = errors.New("plan already joined")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidTransition  = errors.New("invalid membership status transition")
	ErrFavoriteConflict   = errors.New("favorite changed concurrently")
)

// isUniqueViolation recognises unique/primary-key violations from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, case-folded.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// decrementClamped is the SQL expression for col - 1 floored at zero.
func decrementClamped(col string) string {
	return col + " = CASE WHEN " + col + " > 0 THEN " + col + " - 1 ELSE 0 END"
}
