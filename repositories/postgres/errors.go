package postgres

import (
	"database/sql"
	"errors"

	"github.com/hackerwear/storefront/repositories"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// translateError maps driver errors onto repository sentinels and wraps the
// result in a PersistenceError tagged with op.
func translateError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.NewPersistenceError(op, repositories.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repositories.NewPersistenceError(op, errors.Join(repositories.ErrDuplicate, err))
	}

	return repositories.NewPersistenceError(op, err)
}
