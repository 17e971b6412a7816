/**
 * @description
 * Write-path business logic for subscriptions: validation, schedule
 * computation on create, and the recompute-on-specific-field-change rule on
 * update. The schedule is recomputed only when the start date or the renewal
 * frequency change; reminder-only edits go through UpdateReminderSettings and
 * never touch the renewal dates.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartysub/tracker-service/internal/domain"
)

// Validation errors surfaced to the API layer.
var (
	ErrNegativeCost      = errors.New("cost must not be negative")
	ErrNameRequired      = errors.New("name is required")
	ErrStartDateRequired = errors.New("start date is required")
	ErrInvalidLeadDays   = errors.New("days_before must be one of 1, 2, 3, 5, 10, 15")
)

// Repository defines the database operations the write-path service needs.
type Repository interface {
	CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	GetSubscription(ctx context.Context, id, ownerID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, ownerID string) ([]domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	UpdateReminderSettings(ctx context.Context, id, ownerID string, isActive bool, daysBefore int) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, id, ownerID string) error
	GetDefaultSubscription(ctx context.Context, id string) (*domain.DefaultSubscription, error)
}

// UserReader resolves account records for premium-gated reads.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// Service provides the business logic for subscription management.
type Service struct {
	repo  Repository
	users UserReader
}

// NewService creates a new subscription service.
func NewService(repo Repository, users UserReader) Service {
	return Service{repo: repo, users: users}
}

// CreateSubscriptionInput carries the fields accepted on create. When
// DefaultSubscriptionID is set, name, category and logo come from the catalog
// entry and the corresponding input fields are ignored.
type CreateSubscriptionInput struct {
	DefaultSubscriptionID *string
	Name                  string
	Cost                  decimal.Decimal
	StartDate             time.Time
	RenewalFrequency      domain.Frequency
	Category              string
	Notes                 string
}

// Create validates the input, computes the initial schedule and persists the
// subscription with an empty payment history. Reminders default to armed with
// a one-day lead, matching what new subscriptions have always had.
func (s Service) Create(ctx context.Context, ownerID string, input CreateSubscriptionInput) (*domain.Subscription, error) {
	if input.Cost.IsNegative() {
		return nil, ErrNegativeCost
	}
	if input.StartDate.IsZero() {
		return nil, ErrStartDateRequired
	}
	if !domain.ValidFrequency(input.RenewalFrequency) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFrequency, input.RenewalFrequency)
	}

	sub := &domain.Subscription{
		UserID:           ownerID,
		Name:             input.Name,
		Cost:             input.Cost,
		StartDate:        domain.TruncateToUTCMidnight(input.StartDate),
		RenewalFrequency: input.RenewalFrequency,
		Category:         input.Category,
		Notes:            input.Notes,
		LogoURL:          domain.DefaultLogoURL,
		ReminderSettings: domain.ReminderSettings{IsActive: true, DaysBefore: 1},
		PaymentHistory:   []domain.PaymentRecord{},
	}

	if input.DefaultSubscriptionID != nil {
		entry, err := s.repo.GetDefaultSubscription(ctx, *input.DefaultSubscriptionID)
		if err != nil {
			return nil, err
		}
		sub.Name = entry.Name
		sub.Category = entry.Category
		sub.LogoURL = entry.LogoURL
		sub.DefaultSubscriptionID = &entry.ID
	}

	if sub.Name == "" {
		return nil, ErrNameRequired
	}
	if !domain.ValidCategory(sub.Category) {
		sub.Category = domain.CategoryOther
	}

	next, reminder, err := domain.ComputeSchedule(sub.StartDate, sub.RenewalFrequency, sub.ReminderSettings.DaysBefore)
	if err != nil {
		return nil, err
	}
	sub.NextRenewalDate = next
	sub.ReminderDate = reminder

	return s.repo.CreateSubscription(ctx, sub)
}

// Get retrieves one subscription scoped to its owner.
func (s Service) Get(ctx context.Context, id, ownerID string) (*domain.Subscription, error) {
	return s.repo.GetSubscription(ctx, id, ownerID)
}

// List returns all subscriptions owned by a user.
func (s Service) List(ctx context.Context, ownerID string) ([]domain.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, ownerID)
}

// UpdateSubscriptionInput is a patch: nil fields are left untouched.
type UpdateSubscriptionInput struct {
	Name             *string
	Cost             *decimal.Decimal
	StartDate        *time.Time
	RenewalFrequency *domain.Frequency
	Category         *string
	Notes            *string
}

// Update applies the patch to an owner-scoped subscription. The schedule is
// recomputed only when the patch touches the start date or the renewal
// frequency; a cost or notes edit must never reset a subscription that has
// already rolled forward past its original start date.
func (s Service) Update(ctx context.Context, id, ownerID string, patch UpdateSubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, ErrNameRequired
		}
		sub.Name = *patch.Name
	}
	if patch.Cost != nil {
		if patch.Cost.IsNegative() {
			return nil, ErrNegativeCost
		}
		sub.Cost = *patch.Cost
	}
	if patch.Category != nil {
		if !domain.ValidCategory(*patch.Category) {
			return nil, fmt.Errorf("invalid category %q", *patch.Category)
		}
		sub.Category = *patch.Category
	}
	if patch.Notes != nil {
		sub.Notes = *patch.Notes
	}

	scheduleTouched := false
	if patch.StartDate != nil {
		sub.StartDate = domain.TruncateToUTCMidnight(*patch.StartDate)
		scheduleTouched = true
	}
	if patch.RenewalFrequency != nil {
		if !domain.ValidFrequency(*patch.RenewalFrequency) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFrequency, *patch.RenewalFrequency)
		}
		sub.RenewalFrequency = *patch.RenewalFrequency
		scheduleTouched = true
	}
	if scheduleTouched {
		next, reminder, err := domain.ComputeSchedule(sub.StartDate, sub.RenewalFrequency, sub.ReminderSettings.DaysBefore)
		if err != nil {
			return nil, err
		}
		sub.NextRenewalDate = next
		sub.ReminderDate = reminder
	}

	return s.repo.UpdateSubscription(ctx, sub)
}

// UpdateReminderSettings writes the reminder flag and lead time directly.
// Renewal and reminder dates are left as they are; a changed lead time takes
// effect when the next renewal recomputes the reminder date.
func (s Service) UpdateReminderSettings(ctx context.Context, id, ownerID string, isActive bool, daysBefore int) (*domain.Subscription, error) {
	if !domain.ValidReminderLeadDays(daysBefore) {
		return nil, ErrInvalidLeadDays
	}
	return s.repo.UpdateReminderSettings(ctx, id, ownerID, isActive, daysBefore)
}

// Delete removes an owner-scoped subscription.
func (s Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.DeleteSubscription(ctx, id, ownerID)
}
