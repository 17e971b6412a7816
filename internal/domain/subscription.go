/**
 * @description
 * Core domain model for tracked subscriptions: the Subscription entity, its
 * reminder settings and the append-only payment history ledger.
 */
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription categories. Unknown input falls back to CategoryOther.
const (
	CategoryEntertainment = "Entertainment"
	CategoryWork          = "Work"
	CategoryUtilities     = "Utilities"
	CategoryOther         = "Other"
)

// DefaultLogoURL is used when a subscription is not based on a catalog entry.
const DefaultLogoURL = "https://example.com/default-logo.png"

// PaidDateLayout is the wire format for entries in PaymentRecord.PaidDates:
// calendar dates only, never full timestamps.
const PaidDateLayout = "2006-01-02"

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryEntertainment, CategoryWork, CategoryUtilities, CategoryOther:
		return true
	}
	return false
}

// reminderLeadDays is the set of allowed reminder lead times, in days.
var reminderLeadDays = map[int]bool{1: true, 2: true, 3: true, 5: true, 10: true, 15: true}

// ValidReminderLeadDays reports whether d is an allowed reminder lead time.
func ValidReminderLeadDays(d int) bool {
	return reminderLeadDays[d]
}

// ReminderSettings controls whether and how far ahead of a renewal the owner
// is notified. IsActive doubles as the "not yet sent this cycle" marker: the
// scheduler clears it after a successful send and re-arms it on renewal.
type ReminderSettings struct {
	IsActive   bool `json:"is_active"`
	DaysBefore int  `json:"days_before"`
}

// PaymentRecord aggregates all charges of an identical amount for one
// subscription. Times and PaidDates grow in lockstep: Times always equals
// len(PaidDates).
type PaymentRecord struct {
	Times     int             `json:"times"`
	Amount    decimal.Decimal `json:"amount"`
	PaidDates []string        `json:"paid_dates"`
}

// Subscription represents a recurring charge owned by exactly one user.
// NextRenewalDate and ReminderDate are derived fields maintained by the
// schedule calculator and rolled forward by the daily scheduler.
type Subscription struct {
	ID                    string           `json:"id"`
	UserID                string           `json:"user_id"`
	Name                  string           `json:"name"`
	Cost                  decimal.Decimal  `json:"cost"`
	StartDate             time.Time        `json:"start_date"`
	RenewalFrequency      Frequency        `json:"renewal_frequency"`
	NextRenewalDate       time.Time        `json:"next_renewal_date"`
	ReminderDate          *time.Time       `json:"reminder_date,omitempty"`
	Category              string           `json:"category"`
	Notes                 string           `json:"notes"`
	LogoURL               string           `json:"logo_url"`
	DefaultSubscriptionID *string          `json:"default_subscription_id,omitempty"`
	ReminderSettings      ReminderSettings `json:"reminder_settings"`
	PaymentHistory        []PaymentRecord  `json:"payment_history"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// RecordPayment appends a charge to the payment history. Records are keyed by
// amount: a repeated charge at a known amount increments Times and appends
// the paid date, anything else opens a new record. Matching is by amount
// only, not by billing period, so re-recording the same paidOn twice appends
// a duplicate date entry rather than deduplicating.
func (s *Subscription) RecordPayment(amount decimal.Decimal, paidOn time.Time) {
	day := TruncateToUTCMidnight(paidOn).Format(PaidDateLayout)
	for i := range s.PaymentHistory {
		if s.PaymentHistory[i].Amount.Equal(amount) {
			s.PaymentHistory[i].Times++
			s.PaymentHistory[i].PaidDates = append(s.PaymentHistory[i].PaidDates, day)
			return
		}
	}
	s.PaymentHistory = append(s.PaymentHistory, PaymentRecord{
		Times:     1,
		Amount:    amount,
		PaidDates: []string{day},
	})
}

// TotalPaid sums amount*times across the payment history.
func (s *Subscription) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, rec := range s.PaymentHistory {
		total = total.Add(rec.Amount.Mul(decimal.NewFromInt(int64(rec.Times))))
	}
	return total
}

// TotalPayments counts individual charges across the payment history.
func (s *Subscription) TotalPayments() int {
	n := 0
	for _, rec := range s.PaymentHistory {
		n += rec.Times
	}
	return n
}

// DueReminder pairs a subscription whose reminder fires today with the email
// address of its owner, as selected by the ledger query surface.
type DueReminder struct {
	Subscription Subscription
	OwnerEmail   string
}
