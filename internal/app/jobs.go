/**
 * @description
 * The daily scheduler tick: premium expiry sweep, reminder phase and renewal
 * phase, in that order. The tick computes "today" once and threads it through
 * every phase; helpers never read the live clock. Each record is its own unit
 * of work — a delivery or persistence failure is logged and the batch moves
 * on, never aborting the run.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/smartysub/tracker-service/internal/config"
	"github.com/smartysub/tracker-service/internal/domain"
)

// Ledger defines the store operations the tick needs.
type Ledger interface {
	FindDueReminders(ctx context.Context, today time.Time) ([]domain.DueReminder, error)
	FindDueRenewals(ctx context.Context, today time.Time) ([]domain.Subscription, error)
	CountOverdueRenewals(ctx context.Context, today time.Time) (int, error)
	SetReminderActive(ctx context.Context, subscriptionID string, active bool) error
	SaveRenewal(ctx context.Context, sub *domain.Subscription) error
	FindExpiredPremiumUsers(ctx context.Context, today time.Time) ([]domain.User, error)
	DemotePremiumUser(ctx context.Context, userID string) error
}

// Notifier delivers a renewal reminder to a subscription owner. The tick
// does not retry failures within the same run.
type Notifier interface {
	Send(ctx context.Context, recipientEmail, subscriptionName string, renewalDate time.Time) error
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	ledger        Ledger
	notifier      Notifier
	publisher     EventPublisher
	logger        *slog.Logger
	notifyTimeout time.Duration
}

// NewJobs creates a new Jobs runner.
func NewJobs(ledger Ledger, notifier Notifier, publisher EventPublisher, logger *slog.Logger, cfg config.Config) *Jobs {
	timeout := time.Duration(cfg.NotifierTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Jobs{
		ledger:        ledger,
		notifier:      notifier,
		publisher:     publisher,
		logger:        logger,
		notifyTimeout: timeout,
	}
}

// RunDailyTick is the cron entry point. It anchors the whole run to a single
// UTC calendar day and delegates to Tick.
func (j *Jobs) RunDailyTick() {
	today := domain.TruncateToUTCMidnight(time.Now())
	j.Tick(context.Background(), today)
}

// Tick executes one daily batch for the given day: demote lapsed premium
// accounts, fire due reminders, then roll forward due renewals. The day is an
// explicit parameter so the whole engine is testable with injected dates.
func (j *Jobs) Tick(ctx context.Context, today time.Time) {
	j.logger.Info("daily tick started", "today", today.Format(domain.PaidDateLayout))

	j.sweepExpiredPremium(ctx, today)
	j.processReminders(ctx, today)
	j.processRenewals(ctx, today)

	j.logger.Info("daily tick finished", "today", today.Format(domain.PaidDateLayout))
}

// sweepExpiredPremium demotes premium accounts whose grant expired before
// today. It shares the tick but has no data dependency on the other phases.
func (j *Jobs) sweepExpiredPremium(ctx context.Context, today time.Time) {
	users, err := j.ledger.FindExpiredPremiumUsers(ctx, today)
	if err != nil {
		j.logger.Error("failed to query expired premium users", "error", err)
		return
	}

	for _, user := range users {
		if err := j.ledger.DemotePremiumUser(ctx, user.ID); err != nil {
			j.logger.Error("failed to demote expired premium user", "user_id", user.ID, "error", err)
			continue
		}
		j.logger.Info("premium grant expired, user demoted", "user_id", user.ID)
	}
}

// processReminders fires reminders whose date is today and whose flag is
// still armed. On a successful send the flag is cleared so the reminder fires
// at most once per cycle. On failure the flag stays armed, but the date has
// already passed, so the reminder will not fire again until the next renewal
// re-arms it — a known caveat, deliberately not patched over here.
func (j *Jobs) processReminders(ctx context.Context, today time.Time) {
	due, err := j.ledger.FindDueReminders(ctx, today)
	if err != nil {
		j.logger.Error("failed to query due reminders", "error", err)
		return
	}
	j.logger.Info("reminder phase", "due", len(due))

	for _, rem := range due {
		sub := rem.Subscription

		sendCtx, cancel := context.WithTimeout(ctx, j.notifyTimeout)
		err := j.notifier.Send(sendCtx, rem.OwnerEmail, sub.Name, sub.NextRenewalDate)
		cancel()
		if err != nil {
			j.logger.Error("failed to send renewal reminder",
				"subscription_id", sub.ID, "recipient", rem.OwnerEmail, "error", err)
			continue
		}

		if err := j.ledger.SetReminderActive(ctx, sub.ID, false); err != nil {
			j.logger.Error("reminder sent but failed to disarm flag",
				"subscription_id", sub.ID, "error", err)
			continue
		}

		j.logger.Info("renewal reminder sent", "subscription_id", sub.ID, "name", sub.Name)
		j.publish(ctx, domain.RoutingKeyReminderSent, domain.ReminderSentEvent{
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			Name:           sub.Name,
			RenewalDate:    sub.NextRenewalDate.Format(domain.PaidDateLayout),
			SentOn:         today.Format(domain.PaidDateLayout),
		})
	}
}

// processRenewals rolls forward subscriptions whose renewal date is today:
// append the charge to the payment history, advance the renewal date by one
// cycle, recompute the reminder date and re-arm the reminder. A subscription
// with an unknown frequency is skipped without persisting anything and stays
// stuck at its stale renewal date until fixed.
func (j *Jobs) processRenewals(ctx context.Context, today time.Time) {
	if overdue, err := j.ledger.CountOverdueRenewals(ctx, today); err != nil {
		j.logger.Error("failed to count overdue renewals", "error", err)
	} else if overdue > 0 {
		// There is no catch-up for missed ticks; renewals skipped during an
		// outage surface here and nowhere else.
		j.logger.Warn("subscriptions with renewal dates in the past", "count", overdue)
	}

	subs, err := j.ledger.FindDueRenewals(ctx, today)
	if err != nil {
		j.logger.Error("failed to query due renewals", "error", err)
		return
	}
	j.logger.Info("renewal phase", "due", len(subs))

	for i := range subs {
		sub := &subs[i]

		sub.RecordPayment(sub.Cost, today)

		newNext, err := domain.Advance(sub.NextRenewalDate, sub.RenewalFrequency)
		if err != nil {
			j.logger.Warn("cannot roll subscription forward, leaving it unrolled",
				"subscription_id", sub.ID, "frequency", sub.RenewalFrequency, "error", err)
			continue
		}

		sub.NextRenewalDate = newNext
		sub.ReminderDate = domain.ReminderDateFor(newNext, sub.ReminderSettings.DaysBefore)
		rearmReminderOnRenewal(sub)

		if err := j.ledger.SaveRenewal(ctx, sub); err != nil {
			j.logger.Error("failed to persist renewal", "subscription_id", sub.ID, "error", err)
			continue
		}

		j.logger.Info("subscription renewed",
			"subscription_id", sub.ID, "name", sub.Name,
			"next_renewal_date", newNext.Format(domain.PaidDateLayout))
		j.publish(ctx, domain.RoutingKeyRenewed, domain.RenewedEvent{
			SubscriptionID:  sub.ID,
			UserID:          sub.UserID,
			Name:            sub.Name,
			Amount:          sub.Cost,
			NextRenewalDate: newNext.Format(domain.PaidDateLayout),
			RenewedOn:       today.Format(domain.PaidDateLayout),
		})
	}
}

// rearmReminderOnRenewal re-activates the reminder flag after a renewal rolls
// forward. This overrides a manual deactivation: the flag doubles as the
// "already sent this cycle" marker, so every new cycle arms it again. Kept as
// a single policy function so the rule can change without touching the
// rollover logic.
func rearmReminderOnRenewal(sub *domain.Subscription) {
	sub.ReminderSettings.IsActive = true
}

func (j *Jobs) publish(ctx context.Context, routingKey string, body interface{}) {
	if j.publisher == nil {
		return
	}
	if err := j.publisher.Publish(ctx, domain.EventsExchange, routingKey, body); err != nil {
		j.logger.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}
