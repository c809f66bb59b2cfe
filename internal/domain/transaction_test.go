package domain

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestIsKnownCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{"member of the set", "Food & Dining", true},
		{"another member", "Bills & Utilities", true},
		{"uncategorized sentinel is not a member", CategoryUncategorized, false},
		{"unknown value", "Crypto", false},
		{"case sensitive", "food & dining", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKnownCategory(tt.category); got != tt.want {
				t.Errorf("IsKnownCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	first := Categories()
	first[0] = "mutated"

	if got := Categories()[0]; got == "mutated" {
		t.Error("Categories() exposed internal slice to mutation")
	}
	if len(Categories()) != 9 {
		t.Errorf("expected 9 categories, got %d", len(Categories()))
	}
}

func TestApplyCategoryUpdates(t *testing.T) {
	date := civil.Date{Year: 2026, Month: 8, Day: 1}
	txs := []Transaction{
		{ID: "1", Date: date, Description: "Coffee Shop", Amount: 6.50, Type: TypeExpense, Category: CategoryUncategorized},
		{ID: "2", Date: date, Description: "Salary", Amount: 3500, Type: TypeIncome, Category: "Income"},
	}

	updates := []CategoryUpdate{
		{ID: "1", Category: "Food & Dining", IsAnomaly: false},
		{ID: "missing", Category: "Travel", IsAnomaly: true},
	}

	got, n := ApplyCategoryUpdates(txs, updates)

	if n != 1 {
		t.Fatalf("expected 1 transaction updated, got %d", n)
	}
	if got[0].Category != "Food & Dining" {
		t.Errorf("category = %q, want %q", got[0].Category, "Food & Dining")
	}
	if got[0].IsAnomaly {
		t.Error("isAnomaly should be false")
	}
	// Everything else on the matched transaction stays as it was.
	if got[0].Amount != 6.50 || got[0].Description != "Coffee Shop" || got[0].Date != date {
		t.Errorf("matched transaction changed beyond category: %+v", got[0])
	}
	// Unmatched transactions come back unchanged.
	if got[1] != txs[1] {
		t.Errorf("unmatched transaction changed: %+v", got[1])
	}
}

func TestApplyCategoryUpdatesNoMatches(t *testing.T) {
	txs := []Transaction{
		{ID: "a", Description: "One", Amount: 10, Type: TypeExpense, Category: CategoryUncategorized},
		{ID: "b", Description: "Two", Amount: 20, Type: TypeExpense, Category: "Shopping"},
	}

	got, n := ApplyCategoryUpdates(txs, []CategoryUpdate{{ID: "zzz", Category: "Travel"}})

	if n != 0 {
		t.Fatalf("expected 0 updates, got %d", n)
	}
	for i := range txs {
		if got[i] != txs[i] {
			t.Errorf("transaction %d changed: %+v", i, got[i])
		}
	}
}

func TestApplyCategoryUpdatesDoesNotMutateInput(t *testing.T) {
	txs := []Transaction{{ID: "1", Category: CategoryUncategorized}}

	ApplyCategoryUpdates(txs, []CategoryUpdate{{ID: "1", Category: "Other"}})

	if txs[0].Category != CategoryUncategorized {
		t.Error("input slice was mutated")
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: 3500, Type: TypeIncome, Category: "Income"},
		{ID: "2", Amount: 120.50, Type: TypeExpense, Category: "Food & Dining"},
		{ID: "3", Amount: 80, Type: TypeExpense, Category: "Food & Dining", IsAnomaly: true},
		{ID: "4", Amount: 45, Type: TypeExpense, Category: CategoryUncategorized},
		{ID: "5", Amount: 15, Type: TypeExpense, Category: ""},
	}

	s := Summarize(txs)

	if s.TotalIncome != 3500 {
		t.Errorf("TotalIncome = %v, want 3500", s.TotalIncome)
	}
	if s.TotalExpenses != 260.50 {
		t.Errorf("TotalExpenses = %v, want 260.50", s.TotalExpenses)
	}
	if s.Net != 3500-260.50 {
		t.Errorf("Net = %v, want %v", s.Net, 3500-260.50)
	}
	if s.CategoryTotals["Food & Dining"] != 200.50 {
		t.Errorf("Food & Dining total = %v, want 200.50", s.CategoryTotals["Food & Dining"])
	}
	if s.CategoryTotals[CategoryUncategorized] != 60 {
		t.Errorf("Uncategorized total = %v, want 60", s.CategoryTotals[CategoryUncategorized])
	}
	if s.TransactionCount != 5 {
		t.Errorf("TransactionCount = %d, want 5", s.TransactionCount)
	}
	if s.AnomalyCount != 1 {
		t.Errorf("AnomalyCount = %d, want 1", s.AnomalyCount)
	}
	if s.Uncategorized != 2 {
		t.Errorf("Uncategorized = %d, want 2", s.Uncategorized)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TransactionCount != 0 || s.Net != 0 || len(s.CategoryTotals) != 0 {
		t.Errorf("unexpected summary for empty input: %+v", s)
	}
}
