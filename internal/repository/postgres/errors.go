package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/commune-hq/commune/internal/repository"
)

// translateErr maps postgres constraint violations onto the repository
// sentinels, keeping the constraint name so services can tell which
// uniqueness rule was hit.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrForeignKey, pgErr.ConstraintName)
		}
	}
	return err
}
