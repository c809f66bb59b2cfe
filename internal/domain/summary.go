package domain

// Summary holds the dashboard aggregates computed from the full
// transaction list.
type Summary struct {
	TotalIncome      float64            `json:"total_income"`
	TotalExpenses    float64            `json:"total_expenses"`
	Net              float64            `json:"net"`
	CategoryTotals   map[string]float64 `json:"category_totals"`
	TransactionCount int                `json:"transaction_count"`
	AnomalyCount     int                `json:"anomaly_count"`
	Uncategorized    int                `json:"uncategorized_count"`
}

// Summarize computes the dashboard aggregates. CategoryTotals covers
// expenses only; uncategorized expenses are grouped under
// CategoryUncategorized.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		CategoryTotals:   make(map[string]float64),
		TransactionCount: len(txs),
	}

	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			s.TotalIncome += t.Amount
		case TypeExpense:
			s.TotalExpenses += t.Amount
			cat := t.Category
			if cat == "" {
				cat = CategoryUncategorized
			}
			s.CategoryTotals[cat] += t.Amount
		}
		if t.IsAnomaly {
			s.AnomalyCount++
		}
		if t.Uncategorized() {
			s.Uncategorized++
		}
	}

	s.Net = s.TotalIncome - s.TotalExpenses
	return s
}
