package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// mapError translates driver errors into core errors. notFound is returned
// for pgx.ErrNoRows.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			if pgErr.ConstraintName == "tickets_number_key" {
				return apperrors.ErrConcurrencyConflict
			}
			return apperrors.NewConflictError(apperrors.ErrConflict, "record already exists")
		case foreignKeyViolation:
			return apperrors.NewBadRequestError(apperrors.ErrBadRequest, "referenced record does not exist")
		case serializationFailure, deadlockDetected:
			return apperrors.ErrTransient
		}
	}
	return err
}

// isForeignKeyViolation reports whether a referenced row is missing.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// isRetryable reports whether the server aborted the transaction and the
// unit of work may be run again.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}
