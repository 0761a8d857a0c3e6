package db

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsNoRows reports whether a QueryRow found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports a unique constraint violation, optionally on a
// specific constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	return hasCode(err, pgerrcode.UniqueViolation, constraint...)
}

// IsForeignKeyViolation reports a violated foreign key, optionally on a
// specific constraint.
func IsForeignKeyViolation(err error, constraint ...string) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation, constraint...)
}

func hasCode(err error, code string, constraint ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
