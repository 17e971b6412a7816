/**
 * @description
 * Default-subscription catalog persistence.
 */
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smartysub/tracker-service/internal/domain"
)

const catalogColumns = `id, name, category, logo_url, created_at, updated_at`

func scanCatalogEntry(row rowScanner) (*domain.DefaultSubscription, error) {
	var entry domain.DefaultSubscription
	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Category,
		&entry.LogoURL,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListDefaultSubscriptions returns the whole catalog.
func (r *Repository) ListDefaultSubscriptions(ctx context.Context) ([]domain.DefaultSubscription, error) {
	query := `SELECT ` + catalogColumns + ` FROM default_subscriptions ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.DefaultSubscription
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// GetDefaultSubscription retrieves one catalog entry by id.
func (r *Repository) GetDefaultSubscription(ctx context.Context, id string) (*domain.DefaultSubscription, error) {
	query := `SELECT ` + catalogColumns + ` FROM default_subscriptions WHERE id = $1`
	entry, err := scanCatalogEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// CreateDefaultSubscription inserts a new catalog entry.
func (r *Repository) CreateDefaultSubscription(ctx context.Context, entry *domain.DefaultSubscription) (*domain.DefaultSubscription, error) {
	query := `
        INSERT INTO default_subscriptions (id, name, category, logo_url)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + catalogColumns
	return scanCatalogEntry(r.db.QueryRow(ctx, query, uuid.NewString(), entry.Name, entry.Category, entry.LogoURL))
}
