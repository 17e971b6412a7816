/**
 * @description
 * Spending statistics derived from the subscription ledger. Everyone gets the
 * basic numbers; accounts with an active premium grant get the advanced
 * section on top. Monetary figures are formatted with two decimal places.
 */
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartysub/tracker-service/internal/domain"
)

// weeksPerMonth is the factor used to normalize weekly costs to a month.
var weeksPerMonth = decimal.NewFromFloat(4.33)

// RecentPayment is one entry of the recent-payments list on a subscription's
// detail view: the most recent paid date for a given amount.
type RecentPayment struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ReminderInfo summarizes the reminder state on the detail view.
type ReminderInfo struct {
	IsActive         bool       `json:"is_active"`
	NextReminderDate *time.Time `json:"next_reminder_date,omitempty"`
}

// AdvancedStats is the premium-only section of the subscription detail.
type AdvancedStats struct {
	AverageMonthlyCost  string `json:"average_monthly_cost"`
	AnnualProjectedCost string `json:"annual_projected_cost"`
	CostComparison      string `json:"cost_comparison"`
	CostTrend           string `json:"cost_trend"`
}

// SubscriptionStats is the stats block returned next to a subscription.
type SubscriptionStats struct {
	TotalPaid             string          `json:"total_paid"`
	TotalPayments         int             `json:"total_payments"`
	AverageCostPerPayment string          `json:"average_cost_per_payment"`
	RecentPayments        []RecentPayment `json:"recent_payments"`
	Reminder              ReminderInfo    `json:"reminder"`
	Category              string          `json:"category"`
	Advanced              *AdvancedStats  `json:"advanced,omitempty"`
}

// SubscriptionDetail pairs a subscription with its computed stats.
type SubscriptionDetail struct {
	Subscription *domain.Subscription `json:"subscription"`
	Stats        SubscriptionStats    `json:"stats"`
}

// GetSubscriptionDetail returns one subscription with its stats block. The
// advanced section is included only while the owner's premium grant is active
// on the given day.
func (s Service) GetSubscriptionDetail(ctx context.Context, id, ownerID string, today time.Time) (*SubscriptionDetail, error) {
	sub, err := s.repo.GetSubscription(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	totalPaid := sub.TotalPaid()
	totalPayments := sub.TotalPayments()

	average := "0"
	if totalPayments > 0 {
		average = totalPaid.Div(decimal.NewFromInt(int64(totalPayments))).StringFixed(2)
	}

	recent := make([]RecentPayment, 0, 3)
	history := sub.PaymentHistory
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	for _, rec := range history[start:] {
		if len(rec.PaidDates) == 0 {
			continue
		}
		recent = append(recent, RecentPayment{
			Date:   rec.PaidDates[len(rec.PaidDates)-1],
			Amount: rec.Amount,
		})
	}

	stats := SubscriptionStats{
		TotalPaid:             totalPaid.StringFixed(2),
		TotalPayments:         totalPayments,
		AverageCostPerPayment: average,
		RecentPayments:        recent,
		Reminder: ReminderInfo{
			IsActive:         sub.ReminderSettings.IsActive,
			NextReminderDate: sub.ReminderDate,
		},
		Category: sub.Category,
	}

	if user.PremiumActiveOn(today) {
		advanced, err := s.advancedStats(ctx, sub, totalPaid, today)
		if err != nil {
			return nil, err
		}
		stats.Advanced = advanced
	}

	return &SubscriptionDetail{Subscription: sub, Stats: stats}, nil
}

func (s Service) advancedStats(ctx context.Context, sub *domain.Subscription, totalPaid decimal.Decimal, today time.Time) (*AdvancedStats, error) {
	// Months the subscription has been active, counting the current month.
	startDate := sub.StartDate
	monthsActive := (today.Year()-startDate.Year())*12 + int(today.Month()) - int(startDate.Month()) + 1

	averageMonthly := decimal.Zero
	if monthsActive > 0 {
		averageMonthly = totalPaid.Div(decimal.NewFromInt(int64(monthsActive))).Round(2)
	}
	annualProjected := averageMonthly.Mul(decimal.NewFromInt(12)).Round(2)

	siblings, err := s.repo.ListSubscriptions(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	comparison := "Average"
	if len(siblings) > 0 {
		maxCost, minCost := siblings[0].Cost, siblings[0].Cost
		for _, sibling := range siblings[1:] {
			if sibling.Cost.GreaterThan(maxCost) {
				maxCost = sibling.Cost
			}
			if sibling.Cost.LessThan(minCost) {
				minCost = sibling.Cost
			}
		}
		if sub.Cost.Equal(maxCost) {
			comparison = "Most Expensive"
		}
		if sub.Cost.Equal(minCost) {
			comparison = "Least Expensive"
		}
	}

	trend := "Stable"
	if n := len(sub.PaymentHistory); n > 1 {
		last := sub.PaymentHistory[n-1].Amount
		previous := sub.PaymentHistory[n-2].Amount
		switch {
		case last.GreaterThan(previous):
			trend = "Increasing"
		case last.LessThan(previous):
			trend = "Decreasing"
		}
	}

	return &AdvancedStats{
		AverageMonthlyCost:  averageMonthly.StringFixed(2),
		AnnualProjectedCost: annualProjected.StringFixed(2),
		CostComparison:      comparison,
		CostTrend:           trend,
	}, nil
}

// UpcomingRenewal is one of the next renewals across the account.
type UpcomingRenewal struct {
	Name            string    `json:"name"`
	NextRenewalDate time.Time `json:"next_renewal_date"`
}

// CostHighlight names the most or least expensive subscription.
type CostHighlight struct {
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

// MonthSpend is the calendar month with the highest recorded spend.
type MonthSpend struct {
	Month      string `json:"month"`
	TotalSpent string `json:"total_spent"`
}

// AccountStats is the account-level spending summary. The premium-only
// fields are omitted for free accounts.
type AccountStats struct {
	TotalSubscriptions         int               `json:"total_subscriptions"`
	TotalMonthlyCost           string            `json:"total_monthly_cost"`
	Categories                 map[string]int    `json:"categories"`
	UpcomingRenewals           []UpcomingRenewal `json:"upcoming_renewals"`
	AverageCostPerSubscription string            `json:"average_cost_per_subscription,omitempty"`
	MostExpensiveSubscription  *CostHighlight    `json:"most_expensive_subscription,omitempty"`
	CheapestSubscription       *CostHighlight    `json:"cheapest_subscription,omitempty"`
	TotalPayments              string            `json:"total_payments,omitempty"`
	CategoryPercentage         map[string]string `json:"category_percentage,omitempty"`
	MostExpensiveMonth         *MonthSpend       `json:"most_expensive_month,omitempty"`
}

// monthlyCost normalizes a subscription's cost to a per-month figure:
// daily x30, weekly x4.33, yearly /12, monthly as is.
func monthlyCost(sub *domain.Subscription) decimal.Decimal {
	switch sub.RenewalFrequency {
	case domain.FrequencyDaily:
		return sub.Cost.Mul(decimal.NewFromInt(30))
	case domain.FrequencyWeekly:
		return sub.Cost.Mul(weeksPerMonth)
	case domain.FrequencyYearly:
		return sub.Cost.Div(decimal.NewFromInt(12))
	default:
		return sub.Cost
	}
}

// GetAccountStats computes the account-level spending summary. Premium
// accounts get the full breakdown, free accounts the basic one.
func (s Service) GetAccountStats(ctx context.Context, ownerID string, today time.Time) (*AccountStats, error) {
	subs, err := s.repo.ListSubscriptions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &AccountStats{
		Categories:       map[string]int{},
		UpcomingRenewals: []UpcomingRenewal{},
	}
	if len(subs) == 0 {
		stats.TotalMonthlyCost = "0.00"
		return stats, nil
	}

	stats.TotalSubscriptions = len(subs)

	totalMonthly := decimal.Zero
	for i := range subs {
		totalMonthly = totalMonthly.Add(monthlyCost(&subs[i]))
		stats.Categories[subs[i].Category]++
	}
	stats.TotalMonthlyCost = totalMonthly.StringFixed(2)

	// Top 3 upcoming renewals by date.
	sorted := make([]domain.Subscription, len(subs))
	copy(sorted, subs)
	for i := 1; i < len(sorted); i++ {
		for k := i; k > 0 && sorted[k].NextRenewalDate.Before(sorted[k-1].NextRenewalDate); k-- {
			sorted[k], sorted[k-1] = sorted[k-1], sorted[k]
		}
	}
	for i := 0; i < len(sorted) && i < 3; i++ {
		stats.UpcomingRenewals = append(stats.UpcomingRenewals, UpcomingRenewal{
			Name:            sorted[i].Name,
			NextRenewalDate: sorted[i].NextRenewalDate,
		})
	}

	if !user.PremiumActiveOn(today) {
		return stats, nil
	}

	stats.AverageCostPerSubscription = totalMonthly.Div(decimal.NewFromInt(int64(len(subs)))).StringFixed(2)

	mostExpensive, cheapest := &subs[0], &subs[0]
	totalPayments := decimal.Zero
	monthlySpend := map[string]decimal.Decimal{}
	for i := range subs {
		sub := &subs[i]
		if sub.Cost.GreaterThan(mostExpensive.Cost) {
			mostExpensive = sub
		}
		if sub.Cost.LessThan(cheapest.Cost) {
			cheapest = sub
		}
		totalPayments = totalPayments.Add(sub.TotalPaid())
		for _, rec := range sub.PaymentHistory {
			for _, paid := range rec.PaidDates {
				day, err := time.Parse(domain.PaidDateLayout, paid)
				if err != nil {
					continue
				}
				month := day.Format("January 2006")
				monthlySpend[month] = monthlySpend[month].Add(rec.Amount)
			}
		}
	}

	stats.MostExpensiveSubscription = &CostHighlight{Name: mostExpensive.Name, Cost: mostExpensive.Cost}
	stats.CheapestSubscription = &CostHighlight{Name: cheapest.Name, Cost: cheapest.Cost}
	stats.TotalPayments = totalPayments.StringFixed(2)

	stats.CategoryPercentage = map[string]string{}
	total := decimal.NewFromInt(int64(len(subs)))
	for category, count := range stats.Categories {
		pct := decimal.NewFromInt(int64(count)).Mul(decimal.NewFromInt(100)).Div(total)
		stats.CategoryPercentage[category] = pct.StringFixed(2)
	}

	var topMonth string
	topSpend := decimal.Zero
	for month, spent := range monthlySpend {
		if spent.GreaterThan(topSpend) {
			topMonth, topSpend = month, spent
		}
	}
	if topMonth != "" {
		stats.MostExpensiveMonth = &MonthSpend{Month: topMonth, TotalSpent: topSpend.StringFixed(2)}
	}

	return stats, nil
}
