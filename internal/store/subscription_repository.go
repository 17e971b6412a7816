/**
 * @description
 * Subscription persistence: owner-scoped CRUD for the write path and the
 * due-record query surface consumed by the daily scheduler. The payment
 * history ledger is stored as a JSONB document alongside the row, mirroring
 * the aggregated shape the domain type maintains.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smartysub/tracker-service/internal/domain"
)

const subscriptionColumns = `
    id, user_id, name, cost, start_date, renewal_frequency, next_renewal_date,
    reminder_date, category, notes, logo_url, default_subscription_id,
    reminder_is_active, reminder_days_before, payment_history, created_at, updated_at`

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var historyJSON []byte
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&sub.Cost,
		&sub.StartDate,
		&sub.RenewalFrequency,
		&sub.NextRenewalDate,
		&sub.ReminderDate,
		&sub.Category,
		&sub.Notes,
		&sub.LogoURL,
		&sub.DefaultSubscriptionID,
		&sub.ReminderSettings.IsActive,
		&sub.ReminderSettings.DaysBefore,
		&historyJSON,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &sub.PaymentHistory); err != nil {
			return nil, fmt.Errorf("decoding payment history for subscription %s: %w", sub.ID, err)
		}
	}
	return &sub, nil
}

func marshalHistory(history []domain.PaymentRecord) ([]byte, error) {
	if history == nil {
		history = []domain.PaymentRecord{}
	}
	return json.Marshal(history)
}

// CreateSubscription inserts a new subscription and returns the stored row.
func (r *Repository) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	historyJSON, err := marshalHistory(sub.PaymentHistory)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO subscriptions (
            id, user_id, name, cost, start_date, renewal_frequency, next_renewal_date,
            reminder_date, category, notes, logo_url, default_subscription_id,
            reminder_is_active, reminder_days_before, payment_history
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING ` + subscriptionColumns
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		sub.UserID,
		sub.Name,
		sub.Cost,
		sub.StartDate,
		sub.RenewalFrequency,
		sub.NextRenewalDate,
		sub.ReminderDate,
		sub.Category,
		sub.Notes,
		sub.LogoURL,
		sub.DefaultSubscriptionID,
		sub.ReminderSettings.IsActive,
		sub.ReminderSettings.DaysBefore,
		historyJSON,
	)
	return scanSubscription(row)
}

// GetSubscription retrieves one subscription scoped to its owner.
func (r *Repository) GetSubscription(ctx context.Context, id, ownerID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions returns all subscriptions owned by a user.
func (r *Repository) ListSubscriptions(ctx context.Context, ownerID string) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpdateSubscription persists the mutable fields of a subscription, scoped to
// its owner. Schedule fields are written as given; deciding whether they were
// recomputed is the service layer's job.
func (r *Repository) UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	historyJSON, err := marshalHistory(sub.PaymentHistory)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE subscriptions SET
            name = $3, cost = $4, start_date = $5, renewal_frequency = $6,
            next_renewal_date = $7, reminder_date = $8, category = $9, notes = $10,
            payment_history = $11, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + subscriptionColumns
	row := r.db.QueryRow(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Name,
		sub.Cost,
		sub.StartDate,
		sub.RenewalFrequency,
		sub.NextRenewalDate,
		sub.ReminderDate,
		sub.Category,
		sub.Notes,
		historyJSON,
	)
	updated, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// UpdateReminderSettings writes the reminder flag and lead time directly,
// without touching the renewal or reminder dates.
func (r *Repository) UpdateReminderSettings(ctx context.Context, id, ownerID string, isActive bool, daysBefore int) (*domain.Subscription, error) {
	query := `
        UPDATE subscriptions SET
            reminder_is_active = $3, reminder_days_before = $4, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, ownerID, isActive, daysBefore))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// DeleteSubscription removes a subscription scoped to its owner.
func (r *Repository) DeleteSubscription(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// FindDueReminders selects subscriptions whose reminder fires today and whose
// reminder is still armed, together with the owner's email address. An
// inactive reminder is never selected even when its date matches.
func (r *Repository) FindDueReminders(ctx context.Context, today time.Time) ([]domain.DueReminder, error) {
	query := `
        SELECT s.id, s.user_id, s.name, s.cost, s.start_date, s.renewal_frequency,
               s.next_renewal_date, s.reminder_date, s.category, s.notes, s.logo_url,
               s.default_subscription_id, s.reminder_is_active, s.reminder_days_before,
               s.payment_history, s.created_at, s.updated_at, u.email
        FROM subscriptions s
        JOIN users u ON u.id = s.user_id
        WHERE s.reminder_is_active = TRUE AND s.reminder_date = $1
        ORDER BY s.id`
	rows, err := r.db.Query(ctx, query, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.DueReminder
	for rows.Next() {
		var rem domain.DueReminder
		var historyJSON []byte
		sub := &rem.Subscription
		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Name,
			&sub.Cost,
			&sub.StartDate,
			&sub.RenewalFrequency,
			&sub.NextRenewalDate,
			&sub.ReminderDate,
			&sub.Category,
			&sub.Notes,
			&sub.LogoURL,
			&sub.DefaultSubscriptionID,
			&sub.ReminderSettings.IsActive,
			&sub.ReminderSettings.DaysBefore,
			&historyJSON,
			&sub.CreatedAt,
			&sub.UpdatedAt,
			&rem.OwnerEmail,
		)
		if err != nil {
			return nil, err
		}
		if len(historyJSON) > 0 {
			if err := json.Unmarshal(historyJSON, &sub.PaymentHistory); err != nil {
				return nil, fmt.Errorf("decoding payment history for subscription %s: %w", sub.ID, err)
			}
		}
		due = append(due, rem)
	}
	return due, rows.Err()
}

// FindDueRenewals selects subscriptions whose next renewal date is today,
// regardless of reminder state.
func (r *Repository) FindDueRenewals(ctx context.Context, today time.Time) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE next_renewal_date = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// CountOverdueRenewals counts subscriptions whose renewal date is already in
// the past at tick start. There is no catch-up mechanism for missed ticks;
// this exists so the gap is at least observable in the logs.
func (r *Repository) CountOverdueRenewals(ctx context.Context, today time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE next_renewal_date < $1`, today,
	).Scan(&count)
	return count, err
}

// SetReminderActive flips the reminder armed flag. Used by the scheduler after
// a successful send; not owner-scoped since the scheduler owns the record.
func (r *Repository) SetReminderActive(ctx context.Context, subscriptionID string, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET reminder_is_active = $2, updated_at = NOW() WHERE id = $1`,
		subscriptionID, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// SaveRenewal persists the outcome of a renewal rollover: the appended
// payment history, the advanced dates and the re-armed reminder flag.
func (r *Repository) SaveRenewal(ctx context.Context, sub *domain.Subscription) error {
	historyJSON, err := marshalHistory(sub.PaymentHistory)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
        UPDATE subscriptions SET
            next_renewal_date = $2, reminder_date = $3, reminder_is_active = $4,
            payment_history = $5, updated_at = NOW()
        WHERE id = $1`,
		sub.ID,
		sub.NextRenewalDate,
		sub.ReminderDate,
		sub.ReminderSettings.IsActive,
		historyJSON,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
