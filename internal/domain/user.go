/**
 * @description
 * User domain model. The scheduling engine only cares about the premium
 * fields; the rest backs the account endpoints.
 */
package domain

import "time"

// User is an account that owns subscriptions.
type User struct {
	ID               string     `json:"id"`
	UserName         string     `json:"user_name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	Currency         string     `json:"currency"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PremiumActiveOn reports whether the premium grant is still valid on the
// given day. A premium flag with no expiry never lapses; an expiry on a past
// calendar day (UTC) means the grant has lapsed even if the sweep has not
// demoted the user yet.
func (u *User) PremiumActiveOn(today time.Time) bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return !TruncateToUTCMidnight(*u.PremiumExpiresAt).Before(TruncateToUTCMidnight(today))
}
