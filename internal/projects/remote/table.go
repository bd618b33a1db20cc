package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// Table is the query surface of the remote projects table.
type Table interface {
	// FindID returns the id of the row matching title and creator, or "" when
	// there is none.
	FindID(ctx context.Context, title, creatorID string) (string, error)
	// CreatorOf returns the creator of the row with the given id, or "" when
	// there is none.
	CreatorOf(ctx context.Context, id string) (string, error)
	// Insert creates the row and returns the id the store assigned.
	Insert(ctx context.Context, row Row) (string, error)
	// Update overwrites the mutable columns of the row with the given id.
	Update(ctx context.Context, id string, row Row) error
	// List returns every row ordered by created_at descending.
	List(ctx context.Context) ([]Row, error)
	// Ping is a cheap reachability probe for health checks.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health output.
	Name() string
}

// IsUniqueViolation reports whether err is a uniqueness violation from
// Postgres, whichever driver or transport produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}

	// postgrest-go flattens errors to "(code) message"
	return strings.Contains(err.Error(), "("+uniqueViolationCode+")")
}
