package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "rating-user-service/pkg/errors"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const (
	sqliteUniqueFailed = "UNIQUE constraint failed"
	sqliteCheckFailed  = "CHECK constraint failed: "
)

// translateWriteError maps driver constraint violations onto application errors.
// Errors it does not recognise are returned as nil.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return conflictFor(pgErr.ConstraintName + " " + pgErr.Message)
		case pgCheckViolation:
			return pkgerrors.NewIntegrityError(pgErr.ConstraintName, err)
		}
		return nil
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, sqliteUniqueFailed):
		return conflictFor(msg)
	case strings.Contains(msg, sqliteCheckFailed):
		return pkgerrors.NewIntegrityError(sqliteConstraintName(msg), err)
	}
	return nil
}

// conflictFor picks the conflict error matching the column or index named in s.
func conflictFor(s string) error {
	switch {
	case strings.Contains(s, "username"):
		return pkgerrors.ErrUsernameTaken
	case strings.Contains(s, "email"):
		return pkgerrors.ErrEmailTaken
	}
	return pkgerrors.NewConflictError("", "user already registered")
}

func sqliteConstraintName(msg string) string {
	_, rest, found := strings.Cut(msg, sqliteCheckFailed)
	if !found {
		return ""
	}
	if i := strings.IndexAny(rest, " ("); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
