package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartysub/tracker-service/internal/domain"
)

func premiumUser(id string, validUntil time.Time) *domain.User {
	return &domain.User{ID: id, IsPremium: true, PremiumExpiresAt: &validUntil}
}

func freeUser(id string) *domain.User {
	return &domain.User{ID: id}
}

func TestMonthlyCost_Normalization(t *testing.T) {
	tests := []struct {
		frequency domain.Frequency
		cost      float64
		want      string
	}{
		{domain.FrequencyMonthly, 10, "10.00"},
		{domain.FrequencyDaily, 1, "30.00"},
		{domain.FrequencyWeekly, 10, "43.30"},
		{domain.FrequencyYearly, 120, "10.00"},
	}
	for _, tc := range tests {
		sub := &domain.Subscription{Cost: decimal.NewFromFloat(tc.cost), RenewalFrequency: tc.frequency}
		if got := monthlyCost(sub).StringFixed(2); got != tc.want {
			t.Fatalf("monthlyCost(%s %v) = %s, want %s", tc.frequency, tc.cost, got, tc.want)
		}
	}
}

func TestGetSubscriptionDetail_FreeAccount(t *testing.T) {
	repo := newStubRepository()
	sub := existingMonthly("sub-1", "user-1")
	sub.PaymentHistory = []domain.PaymentRecord{
		{Times: 2, Amount: decimal.NewFromFloat(9.99), PaidDates: []string{"2024-02-15", "2024-03-15"}},
	}
	repo.subs["sub-1"] = sub
	users := &stubUserReader{users: map[string]*domain.User{"user-1": freeUser("user-1")}}
	svc := NewService(repo, users)

	detail, err := svc.GetSubscriptionDetail(context.Background(), "sub-1", "user-1", date(2024, 4, 1))
	if err != nil {
		t.Fatalf("GetSubscriptionDetail: %v", err)
	}

	if detail.Stats.TotalPaid != "19.98" {
		t.Fatalf("total paid = %s, want 19.98", detail.Stats.TotalPaid)
	}
	if detail.Stats.TotalPayments != 2 {
		t.Fatalf("total payments = %d, want 2", detail.Stats.TotalPayments)
	}
	if detail.Stats.AverageCostPerPayment != "9.99" {
		t.Fatalf("average = %s, want 9.99", detail.Stats.AverageCostPerPayment)
	}
	if detail.Stats.Advanced != nil {
		t.Fatal("free account must not get the advanced section")
	}
	if len(detail.Stats.RecentPayments) != 1 || detail.Stats.RecentPayments[0].Date != "2024-03-15" {
		t.Fatalf("unexpected recent payments %v", detail.Stats.RecentPayments)
	}
	if !detail.Stats.Reminder.IsActive {
		t.Fatal("expected reminder info to mirror the settings")
	}
}

func TestGetSubscriptionDetail_PremiumAccount(t *testing.T) {
	repo := newStubRepository()
	sub := existingMonthly("sub-1", "user-1")
	sub.PaymentHistory = []domain.PaymentRecord{
		{Times: 3, Amount: decimal.NewFromFloat(9.99), PaidDates: []string{"2024-02-15", "2024-03-15", "2024-04-15"}},
		{Times: 1, Amount: decimal.NewFromFloat(12.99), PaidDates: []string{"2024-05-15"}},
	}
	repo.subs["sub-1"] = sub
	users := &stubUserReader{users: map[string]*domain.User{"user-1": premiumUser("user-1", date(2024, 12, 31))}}
	svc := NewService(repo, users)

	detail, err := svc.GetSubscriptionDetail(context.Background(), "sub-1", "user-1", date(2024, 6, 1))
	if err != nil {
		t.Fatalf("GetSubscriptionDetail: %v", err)
	}

	adv := detail.Stats.Advanced
	if adv == nil {
		t.Fatal("premium account must get the advanced section")
	}
	// Jan through Jun inclusive is 6 months; 42.96 / 6 = 7.16.
	if adv.AverageMonthlyCost != "7.16" {
		t.Fatalf("average monthly = %s, want 7.16", adv.AverageMonthlyCost)
	}
	if adv.AnnualProjectedCost != "85.92" {
		t.Fatalf("annual projected = %s, want 85.92", adv.AnnualProjectedCost)
	}
	if adv.CostTrend != "Increasing" {
		t.Fatalf("trend = %s, want Increasing", adv.CostTrend)
	}
	// The only subscription is both the most and the least expensive; least wins.
	if adv.CostComparison != "Least Expensive" {
		t.Fatalf("comparison = %s, want Least Expensive", adv.CostComparison)
	}
}

func TestGetSubscriptionDetail_ExpiredPremiumGetsBasic(t *testing.T) {
	repo := newStubRepository()
	repo.subs["sub-1"] = existingMonthly("sub-1", "user-1")
	users := &stubUserReader{users: map[string]*domain.User{"user-1": premiumUser("user-1", date(2024, 3, 1))}}
	svc := NewService(repo, users)

	detail, err := svc.GetSubscriptionDetail(context.Background(), "sub-1", "user-1", date(2024, 6, 1))
	if err != nil {
		t.Fatalf("GetSubscriptionDetail: %v", err)
	}
	if detail.Stats.Advanced != nil {
		t.Fatal("lapsed premium must not get the advanced section")
	}
}

func accountFixture(repo *stubRepository) {
	netflix := existingMonthly("sub-1", "user-1")
	netflix.PaymentHistory = []domain.PaymentRecord{
		{Times: 2, Amount: decimal.NewFromFloat(9.99), PaidDates: []string{"2024-02-15", "2024-03-15"}},
	}

	icloudReminder := date(2024, 4, 1)
	icloud := &domain.Subscription{
		ID:               "sub-2",
		UserID:           "user-1",
		Name:             "iCloud",
		Cost:             decimal.NewFromFloat(2.99),
		StartDate:        date(2024, 1, 2),
		RenewalFrequency: domain.FrequencyMonthly,
		NextRenewalDate:  date(2024, 4, 2),
		ReminderDate:     &icloudReminder,
		Category:         domain.CategoryUtilities,
		ReminderSettings: domain.ReminderSettings{IsActive: true, DaysBefore: 1},
		PaymentHistory: []domain.PaymentRecord{
			{Times: 3, Amount: decimal.NewFromFloat(2.99), PaidDates: []string{"2024-01-02", "2024-02-02", "2024-03-02"}},
		},
	}

	domainName := &domain.Subscription{
		ID:               "sub-3",
		UserID:           "user-1",
		Name:             "Domain",
		Cost:             decimal.NewFromFloat(120),
		StartDate:        date(2024, 1, 20),
		RenewalFrequency: domain.FrequencyYearly,
		NextRenewalDate:  date(2025, 1, 20),
		Category:         domain.CategoryWork,
		ReminderSettings: domain.ReminderSettings{IsActive: false},
	}

	repo.subs["sub-1"] = netflix
	repo.subs["sub-2"] = icloud
	repo.subs["sub-3"] = domainName
}

func TestGetAccountStats_FreeAccount(t *testing.T) {
	repo := newStubRepository()
	accountFixture(repo)
	users := &stubUserReader{users: map[string]*domain.User{"user-1": freeUser("user-1")}}
	svc := NewService(repo, users)

	stats, err := svc.GetAccountStats(context.Background(), "user-1", date(2024, 4, 1))
	if err != nil {
		t.Fatalf("GetAccountStats: %v", err)
	}

	if stats.TotalSubscriptions != 3 {
		t.Fatalf("total = %d, want 3", stats.TotalSubscriptions)
	}
	// 9.99 + 2.99 + 120/12 = 22.98 per month.
	if stats.TotalMonthlyCost != "22.98" {
		t.Fatalf("monthly cost = %s, want 22.98", stats.TotalMonthlyCost)
	}
	if stats.Categories[domain.CategoryEntertainment] != 1 ||
		stats.Categories[domain.CategoryUtilities] != 1 ||
		stats.Categories[domain.CategoryWork] != 1 {
		t.Fatalf("unexpected category counts %v", stats.Categories)
	}
	if len(stats.UpcomingRenewals) != 3 {
		t.Fatalf("expected 3 upcoming renewals, got %d", len(stats.UpcomingRenewals))
	}
	if stats.UpcomingRenewals[0].Name != "iCloud" || stats.UpcomingRenewals[1].Name != "Netflix" {
		t.Fatalf("expected renewals sorted by date, got %v", stats.UpcomingRenewals)
	}

	if stats.AverageCostPerSubscription != "" || stats.MostExpensiveSubscription != nil ||
		stats.TotalPayments != "" || stats.MostExpensiveMonth != nil {
		t.Fatal("free account must not get the premium fields")
	}
}

func TestGetAccountStats_PremiumAccount(t *testing.T) {
	repo := newStubRepository()
	accountFixture(repo)
	users := &stubUserReader{users: map[string]*domain.User{"user-1": premiumUser("user-1", date(2024, 12, 31))}}
	svc := NewService(repo, users)

	stats, err := svc.GetAccountStats(context.Background(), "user-1", date(2024, 4, 1))
	if err != nil {
		t.Fatalf("GetAccountStats: %v", err)
	}

	// 22.98 / 3 = 7.66.
	if stats.AverageCostPerSubscription != "7.66" {
		t.Fatalf("average = %s, want 7.66", stats.AverageCostPerSubscription)
	}
	if stats.MostExpensiveSubscription == nil || stats.MostExpensiveSubscription.Name != "Domain" {
		t.Fatalf("unexpected most expensive %v", stats.MostExpensiveSubscription)
	}
	if stats.CheapestSubscription == nil || stats.CheapestSubscription.Name != "iCloud" {
		t.Fatalf("unexpected cheapest %v", stats.CheapestSubscription)
	}
	// 2*9.99 + 3*2.99 = 28.95 recorded across the ledger.
	if stats.TotalPayments != "28.95" {
		t.Fatalf("total payments = %s, want 28.95", stats.TotalPayments)
	}
	if stats.CategoryPercentage[domain.CategoryWork] != "33.33" {
		t.Fatalf("unexpected category percentage %v", stats.CategoryPercentage)
	}
	// March carries 9.99 + 2.99, the largest single month.
	if stats.MostExpensiveMonth == nil || stats.MostExpensiveMonth.Month != "March 2024" {
		t.Fatalf("unexpected most expensive month %v", stats.MostExpensiveMonth)
	}
	if stats.MostExpensiveMonth.TotalSpent != "12.98" {
		t.Fatalf("most expensive month spend = %s, want 12.98", stats.MostExpensiveMonth.TotalSpent)
	}
}

func TestGetAccountStats_EmptyAccount(t *testing.T) {
	repo := newStubRepository()
	users := &stubUserReader{users: map[string]*domain.User{"user-1": freeUser("user-1")}}
	svc := NewService(repo, users)

	stats, err := svc.GetAccountStats(context.Background(), "user-1", date(2024, 4, 1))
	if err != nil {
		t.Fatalf("GetAccountStats: %v", err)
	}
	if stats.TotalSubscriptions != 0 || stats.TotalMonthlyCost != "0.00" {
		t.Fatalf("unexpected empty stats %+v", stats)
	}
}
