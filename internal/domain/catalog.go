package domain

import "time"

// DefaultSubscription is a catalog entry (a well-known service such as a
// streaming platform) that users can base their own subscriptions on.
type DefaultSubscription struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	LogoURL   string    `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
