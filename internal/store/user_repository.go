/**
 * @description
 * User persistence: account CRUD for the auth endpoints plus the premium
 * expiry query surface consumed by the daily scheduler sweep.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smartysub/tracker-service/internal/domain"
)

const userColumns = `
    id, user_name, email, password_hash, is_premium, premium_expires_at,
    currency, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.Email,
		&u.PasswordHash,
		&u.IsPremium,
		&u.PremiumExpiresAt,
		&u.Currency,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account. A unique constraint violation on email or
// username surfaces as ErrDuplicateUser so the handler can return a conflict.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (id, user_name, email, password_hash, currency)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + userColumns
	created, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		user.UserName,
		user.Email,
		user.PasswordHash,
		user.Currency,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return created, nil
}

// GetUserByID retrieves one account by id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByLogin retrieves one account by email or username.
func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR user_name = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetUserCurrency updates the display currency of an account.
func (r *Repository) SetUserCurrency(ctx context.Context, userID, code string) (*domain.User, error) {
	query := `UPDATE users SET currency = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, userID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GrantPremium flags an account as premium until the given expiry.
func (r *Repository) GrantPremium(ctx context.Context, userID string, expiresAt time.Time) (*domain.User, error) {
	query := `
        UPDATE users SET is_premium = TRUE, premium_expires_at = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, userID, expiresAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindExpiredPremiumUsers selects premium accounts whose grant expired before
// today (UTC calendar comparison).
func (r *Repository) FindExpiredPremiumUsers(ctx context.Context, today time.Time) ([]domain.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE is_premium = TRUE
          AND premium_expires_at IS NOT NULL
          AND (premium_expires_at AT TIME ZONE 'UTC')::date < $1::date
        ORDER BY id`
	rows, err := r.db.Query(ctx, query, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// DemotePremiumUser clears the premium flag and expiry of an account.
func (r *Repository) DemotePremiumUser(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_premium = FALSE, premium_expires_at = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
