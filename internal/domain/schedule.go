/**
 * @description
 * Calendar arithmetic for subscription billing schedules. Everything here is
 * anchored to UTC midnight, and nothing reads the live clock: callers pass
 * the dates in, which keeps the whole scheduling engine deterministic under
 * test.
 */
package domain

import (
	"errors"
	"time"
)

// Frequency is the recurrence unit of a subscription's billing cycle.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ErrUnknownFrequency is returned by Advance when the frequency is outside
// the supported set. A malformed subscription must not halt a batch run, so
// callers log a warning and skip the record instead of aborting.
var ErrUnknownFrequency = errors.New("unknown renewal frequency")

// ValidFrequency reports whether f is one of the supported recurrence units.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// TruncateToUTCMidnight zeroes the time-of-day portion of t in UTC.
// Applying it twice yields the same result.
func TruncateToUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Advance moves t one billing cycle forward and truncates the result to UTC
// midnight. Monthly and yearly steps use Go's native calendar rollover:
// adding a month to Jan 31 lands on Mar 2 (Mar 3 in non-leap years) rather
// than clamping to the end of February, and adding a year to Feb 29 lands on
// Mar 1 in non-leap years.
func Advance(t time.Time, f Frequency) (time.Time, error) {
	u := t.UTC()
	var next time.Time
	switch f {
	case FrequencyDaily:
		next = u.AddDate(0, 0, 1)
	case FrequencyWeekly:
		next = u.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next = u.AddDate(0, 1, 0)
	case FrequencyYearly:
		next = u.AddDate(1, 0, 0)
	default:
		return time.Time{}, ErrUnknownFrequency
	}
	return TruncateToUTCMidnight(next), nil
}

// ReminderDateFor derives the reminder date from a renewal date and the
// configured lead time. A non-positive daysBefore means reminders are unset
// and no date is derived.
func ReminderDateFor(renewalDate time.Time, daysBefore int) *time.Time {
	if daysBefore <= 0 {
		return nil
	}
	d := TruncateToUTCMidnight(renewalDate.UTC().AddDate(0, 0, -daysBefore))
	return &d
}

// ComputeSchedule derives the next renewal date and the reminder date for a
// subscription from its start date, renewal frequency and reminder lead time.
// It is invoked on create, and on update only when the start date or the
// renewal frequency change; recomputing on every write would silently reset a
// subscription that has already rolled forward past its original start date.
func ComputeSchedule(startDate time.Time, f Frequency, daysBefore int) (time.Time, *time.Time, error) {
	next, err := Advance(startDate, f)
	if err != nil {
		return time.Time{}, nil, err
	}
	return next, ReminderDateFor(next, daysBefore), nil
}
