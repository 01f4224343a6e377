package errors

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps pgx and Postgres errors onto AppError. Unrecognised errors are returned as is.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgerrcode.UniqueViolation:
		appErr := Wrap(pgErr, ErrCodeConflict, "This value already exists.")
		appErr.Field = pgErr.ColumnName
		if appErr.Field == "" {
			if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				appErr.Field = m[1]
			}
		}
		return appErr
	case pgErr.Code == pgerrcode.CheckViolation, pgErr.Code == pgerrcode.NotNullViolation,
		pgerrcode.IsDataException(pgErr.Code):
		appErr := Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
		appErr.Field = pgErr.ColumnName
		return appErr
	case pgerrcode.IsConnectionException(pgErr.Code), pgerrcode.IsInsufficientResources(pgErr.Code),
		pgErr.Code == pgerrcode.UndefinedTable:
		return Unavailable(pgErr, "The audit database is unavailable.")
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}
