/**
 * @description
 * Renewal reminder delivery via Postmark's transactional email API. The
 * scheduling engine only decides that and when a reminder must fire; this
 * package is the transport it delegates to. A log-only fallback exists so
 * local environments without Postmark credentials still run.
 */
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrz1836/postmark"
)

const renewalDateLayout = "January 2, 2006"

// Mailer sends renewal reminder emails through Postmark.
type Mailer struct {
	client *postmark.Client
	from   string
}

// New creates a Postmark-backed mailer.
func New(serverToken, accountToken, from string) *Mailer {
	return &Mailer{
		client: postmark.NewClient(serverToken, accountToken),
		from:   from,
	}
}

// Send delivers a renewal reminder to the subscription owner.
func (m *Mailer) Send(ctx context.Context, recipientEmail, subscriptionName string, renewalDate time.Time) error {
	when := renewalDate.UTC().Format(renewalDateLayout)

	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:    m.from,
		To:      recipientEmail,
		Subject: fmt.Sprintf("Reminder: Your subscription to %s is renewing soon", subscriptionName),
		TextBody: fmt.Sprintf(
			"Hey! Remember that your subscription to %s is renewing on %s. "+
				"Make sure you have sufficient funds or review your payment method.",
			subscriptionName, when),
		HTMLBody: fmt.Sprintf(
			"<h1>Don't forget to renew your subscription!</h1>"+
				"<p>Your subscription to <strong>%s</strong> is renewing on <strong>%s</strong>.</p>"+
				"<p>Make sure you have sufficient funds or check your payment method.</p>"+
				"<p>Thank you for using SmartySub!</p>",
			subscriptionName, when),
		Tag: "renewal-reminder",
	})
	if err != nil {
		return err
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

// LogNotifier is a no-op notifier that logs instead of sending. Used when no
// Postmark credentials are configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send logs the reminder that would have been sent.
func (n *LogNotifier) Send(ctx context.Context, recipientEmail, subscriptionName string, renewalDate time.Time) error {
	n.Logger.Info("would send renewal reminder",
		"recipient", recipientEmail,
		"subscription", subscriptionName,
		"renewal_date", renewalDate.UTC().Format("2006-01-02"))
	return nil
}
