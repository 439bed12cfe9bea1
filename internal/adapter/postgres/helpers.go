package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation is the Postgres SQLSTATE raised when a text
// parameter cannot be cast to its column type, e.g. a malformed uuid.
const invalidTextRepresentation = "22P02"

// isBadUUID reports whether err is Postgres rejecting a malformed uuid
// parameter. Task and offer ids arrive as raw path segments; an id that
// cannot even be cast to uuid can never reference an existing row, so
// callers treat it the same as an unknown id.
func isBadUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// orEmpty returns items unchanged if non-nil, or an empty slice if nil.
// Useful to ensure JSON serialization produces [] instead of null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
