/**
 * @description
 * Data access layer for the tracker service. A single Repository wraps the
 * pgx connection pool; entity-specific methods live in the sibling files.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrCatalogEntryNotFound = errors.New("default subscription not found")
	ErrDuplicateUser        = errors.New("email or username already taken")
)

// Repository handles all database operations for the service.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository backed by the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
