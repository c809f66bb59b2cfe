package llm

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// maxInsightTransactions caps how many transactions go into the
// insights prompt. The cap is a token-budget safeguard, not a sampling
// strategy: the first entries win, whatever order the caller sends.
const maxInsightTransactions = 50

// truncateForInsights keeps the first maxInsightTransactions entries.
func truncateForInsights(txs []domain.Transaction) []domain.Transaction {
	if len(txs) <= maxInsightTransactions {
		return txs
	}
	return txs[:maxInsightTransactions]
}

// buildCategorizePrompt constructs the categorization instructions for
// a batch of transactions, formatted for LLM consumption.
func buildCategorizePrompt(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Assign a category to every transaction below.\n\n")

	b.WriteString("Use ONLY the following Categories:\n")
	for _, c := range domain.Categories() {
		b.WriteString("  - " + c + "\n")
	}

	b.WriteString("\nTransactions (id | description | amount | type):\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "%s | %s | %.2f | %s\n", t.ID, t.Description, t.Amount, t.Type)
	}

	b.WriteString("\nCATEGORY ASSIGNMENT RULES:\n")
	b.WriteString("1. Category must be EXACTLY one of the category names shown above (case-sensitive).\n")
	b.WriteString("2. Transactions of type INCOME almost always belong in \"Income\".\n")
	b.WriteString("3. Set isAnomaly to true only when a transaction looks unusual, for example an amount far larger than typical for its kind.\n")
	b.WriteString("4. If you are unsure, use category \"Other\".\n")
	b.WriteString("\nReturn a JSON array with exactly one object per transaction id.\n")

	return b.String()
}

// buildInsightsPrompt constructs the spending-insights request,
// formatted for LLM consumption.
func buildInsightsPrompt(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Review the transactions below and tell the user what stands out in their recent spending.\n\n")

	b.WriteString("Transactions:\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "%s: %s ($%.2f) - %s\n", t.Date, t.Description, t.Amount, displayCategory(t))
	}

	b.WriteString("\nRespond with at most 3 short bullet points. ")
	b.WriteString("Plain text only, no Markdown formatting.\n")

	return b.String()
}

// buildChatSystemInstruction grounds a chat session in the current
// transaction list.
func buildChatSystemInstruction(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant for a spending dashboard. ")
	b.WriteString("Answer questions about the user's transactions listed below. ")
	b.WriteString("Keep answers short and concrete. ")
	b.WriteString("If a question cannot be answered from the transactions, say so instead of guessing.\n\n")

	b.WriteString("Transactions (date: description ($amount) - category):\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "%s: %s ($%.2f) - %s\n", t.Date, t.Description, t.Amount, displayCategory(t))
	}

	return b.String()
}

func displayCategory(t domain.Transaction) string {
	if t.Category == "" {
		return domain.CategoryUncategorized
	}
	return t.Category
}
