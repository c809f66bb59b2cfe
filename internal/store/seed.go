package store

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// SeedTransactions returns the starter data installed when nothing has
// been persisted yet. Dates are relative to today so a fresh install
// shows recent activity. Two entries are left uncategorized on purpose
// so the categorize flow has something to do out of the box.
func SeedTransactions() []domain.Transaction {
	today := civil.DateOf(time.Now())

	return []domain.Transaction{
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-21),
			Description: "Monthly Salary",
			Amount:      3500.00,
			Type:        domain.TypeIncome,
			Category:    "Income",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-14),
			Description: "Whole Foods Market",
			Amount:      86.20,
			Type:        domain.TypeExpense,
			Category:    "Food & Dining",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-12),
			Description: "Shell Gas Station",
			Amount:      45.80,
			Type:        domain.TypeExpense,
			Category:    "Transportation",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-10),
			Description: "Netflix Subscription",
			Amount:      15.99,
			Type:        domain.TypeExpense,
			Category:    "Entertainment",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-8),
			Description: "Electric Bill",
			Amount:      120.45,
			Type:        domain.TypeExpense,
			Category:    "Bills & Utilities",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-6),
			Description: "City Gym Membership",
			Amount:      39.00,
			Type:        domain.TypeExpense,
			Category:    "Health & Fitness",
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-3),
			Description: "Corner Coffee House",
			Amount:      6.50,
			Type:        domain.TypeExpense,
			Category:    domain.CategoryUncategorized,
		},
		{
			ID:          uuid.NewString(),
			Date:        today.AddDays(-1),
			Description: "Uber Trip Downtown",
			Amount:      18.30,
			Type:        domain.TypeExpense,
			Category:    domain.CategoryUncategorized,
		},
	}
}
