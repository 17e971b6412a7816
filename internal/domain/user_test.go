package domain

import (
	"testing"
	"time"
)

func TestPremiumActiveOn(t *testing.T) {
	expiry := date(2024, 2, 15)

	tests := []struct {
		name  string
		user  User
		today time.Time
		want  bool
	}{
		{"free account", User{}, date(2024, 2, 15), false},
		{"premium without expiry", User{IsPremium: true}, date(2030, 1, 1), true},
		{"active before expiry", User{IsPremium: true, PremiumExpiresAt: &expiry}, date(2024, 2, 10), true},
		{"active on expiry day", User{IsPremium: true, PremiumExpiresAt: &expiry}, date(2024, 2, 15), true},
		{"lapsed after expiry", User{IsPremium: true, PremiumExpiresAt: &expiry}, date(2024, 2, 16), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.PremiumActiveOn(tc.today); got != tc.want {
				t.Fatalf("PremiumActiveOn(%v) = %v, want %v", tc.today, got, tc.want)
			}
		})
	}
}

func TestPremiumActiveOn_IgnoresTimeOfDay(t *testing.T) {
	// An expiry late on the 15th still counts as active for the whole 15th.
	expiry := time.Date(2024, 2, 15, 23, 30, 0, 0, time.UTC)
	user := User{IsPremium: true, PremiumExpiresAt: &expiry}
	if !user.PremiumActiveOn(time.Date(2024, 2, 15, 1, 0, 0, 0, time.UTC)) {
		t.Fatal("expected grant active on its expiry day")
	}
}

func TestValidCurrency(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "JPY"} {
		if !ValidCurrency(code) {
			t.Fatalf("expected %q to be valid", code)
		}
	}
	for _, code := range []string{"", "US", "DOLLARS"} {
		if ValidCurrency(code) {
			t.Fatalf("expected %q to be invalid", code)
		}
	}
}
