package domain

import (
	"cloud.google.com/go/civil"
)

// TransactionType tells whether money came in or went out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// CategoryUncategorized marks a transaction that has not been categorized
// yet, manually or by the model. It is not a member of the category set.
const CategoryUncategorized = "Uncategorized"

// categories is the fixed set shared by the manual-edit surface and the
// model prompt instructions.
var categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Health & Fitness",
	"Travel",
	"Income",
	"Other",
}

// Categories returns the fixed category set.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsKnownCategory reports whether name is a member of the fixed set.
// The comparison is exact; CategoryUncategorized is not a member.
func IsKnownCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// Transaction is one dated money movement.
// Amount is always the absolute value; the sign lives in Type.
type Transaction struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	IsAnomaly   bool            `json:"isAnomaly"`
}

// Uncategorized reports whether the transaction still needs a category.
func (t Transaction) Uncategorized() bool {
	return t.Category == "" || t.Category == CategoryUncategorized
}

// CategoryUpdate is one record of a batch categorization response,
// matched back to a transaction by ID.
type CategoryUpdate struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	IsAnomaly bool   `json:"isAnomaly"`
}

// ApplyCategoryUpdates merges categorization results into a transaction
// list by ID and returns the new list plus the number of transactions
// changed. Transactions whose ID is absent from updates are returned
// unchanged; update records matching no transaction are ignored.
func ApplyCategoryUpdates(txs []Transaction, updates []CategoryUpdate) ([]Transaction, int) {
	byID := make(map[string]CategoryUpdate, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}

	out := make([]Transaction, len(txs))
	copy(out, txs)

	updated := 0
	for i := range out {
		u, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		out[i].Category = u.Category
		out[i].IsAnomaly = u.IsAnomaly
		updated++
	}
	return out, updated
}
