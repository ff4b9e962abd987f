package postgres

import (
	"errors"

	"github.com/beldeveloper/cidash/internal/app/errtype"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const codeForeignKeyViolation = "23503"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// classify converts driver errors into the application error kinds.
func classify(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errtype.NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return errtype.BadInput("Referenced entity does not exist", errtype.FieldError{
			Field:   pgErr.ColumnName,
			Message: pgErr.Detail,
		})
	}
	return err
}
