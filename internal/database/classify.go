package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// objectExistsCodes are the SQLSTATE codes treated as "already exists".
var objectExistsCodes = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	pgerrcode.DuplicateTable:    true,
	pgerrcode.DuplicateObject:   true,
	pgerrcode.DuplicateColumn:   true,
	pgerrcode.DuplicateSchema:   true,
	pgerrcode.DuplicateFunction: true,
	pgerrcode.DuplicateDatabase: true,
	pgerrcode.DuplicateAlias:    true,
	pgerrcode.UniqueViolation:   true,
}

// ClassifyExecError wraps err with ErrObjectExists when it is a PostgreSQL
// error whose SQLSTATE reports an already-existing object. Other errors,
// including nil, are returned unchanged.
func ClassifyExecError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if objectExistsCodes[pgErr.Code] {
		return fmt.Errorf("%w: %w", ErrObjectExists, err)
	}

	return err
}

// IsObjectExists reports whether err was classified as ErrObjectExists.
func IsObjectExists(err error) bool {
	return errors.Is(err, ErrObjectExists)
}
