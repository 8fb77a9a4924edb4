package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tidewater/internal/core/apperror"
)

// SQLSTATE codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// TranslateError maps driver errors to application errors. AppErrors and
// unrecognised errors pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return apperror.NewConcurrentModification(pgErr.TableName, pgErr.Code).WithCause(err)
	case pgUniqueViolation:
		return apperror.NewConflict("record already exists").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("referenced record does not exist or is still in use").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "constraint violated: "+pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
