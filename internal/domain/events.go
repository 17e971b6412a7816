/**
 * @description
 * Domain events published to the message broker after scheduler transitions.
 * Publishing is best effort: a broker outage never blocks or fails a tick.
 */
package domain

import "github.com/shopspring/decimal"

// EventsExchange is the topic exchange all subscription events go to.
const EventsExchange = "subscriptions.events"

// Routing keys on EventsExchange.
const (
	RoutingKeyReminderSent = "subscription.reminder_sent"
	RoutingKeyRenewed      = "subscription.renewed"
)

// ReminderSentEvent is published after a renewal reminder was delivered.
type ReminderSentEvent struct {
	SubscriptionID string `json:"subscription_id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	RenewalDate    string `json:"renewal_date"`
	SentOn         string `json:"sent_on"`
}

// RenewedEvent is published after a subscription's billing cycle rolled
// forward and the payment was appended to its history.
type RenewedEvent struct {
	SubscriptionID  string          `json:"subscription_id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	NextRenewalDate string          `json:"next_renewal_date"`
	RenewedOn       string          `json:"renewed_on"`
}
