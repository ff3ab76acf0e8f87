// Package pgerr translates driver errors into the errs taxonomy shared by
// all repositories.
package pgerr

import (
	"errors"
	"fmt"

	"replenishment/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Translate maps a missing row to ObjectNotFound and a unique violation to
// Conflict. Other errors are returned unchanged.
func Translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NewObjectNotFoundErrorWithCause(entity, id, err)
	case IsUniqueViolation(err):
		return errs.NewConflictErrorWithCause(entity, id, err)
	default:
		return err
	}
}

// VersionMismatch is returned by version checked updates that matched no row
// although the row exists.
func VersionMismatch(entity string, id any, version int64) error {
	return errs.NewConflictErrorWithCause(entity, id,
		fmt.Errorf("row was modified concurrently, expected version %d", version))
}
