package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes translated into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if code := pgCode(err); code == pgUniqueViolation {
		return duplicateErr
	}

	return err
}

// Constraints maps integrity-constraint violations to domain errors.
// Nil targets leave the corresponding violation unmapped.
type Constraints struct {
	ForeignKey error
	Check      error
}

// MapConstraint translates foreign key (23503) and check (23514) violations
// using c, then falls through to MapError for everything else.
func MapConstraint(err error, notFoundErr, duplicateErr error, c Constraints) error {
	if err == nil {
		return nil
	}

	switch pgCode(err) {
	case pgForeignKeyViolation:
		if c.ForeignKey != nil {
			return c.ForeignKey
		}
	case pgCheckViolation:
		if c.Check != nil {
			return c.Check
		}
	}

	return MapError(err, notFoundErr, duplicateErr)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
