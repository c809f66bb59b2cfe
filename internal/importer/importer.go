// Package importer turns raw CSV text into transactions.
//
// The expected layout is "date,description,amount" with a header row.
// Parsing is deliberately simple: lines are split on commas with no
// quoting support, so descriptions containing commas lose everything
// after the first one. Rows that cannot be parsed are dropped, never
// reported as errors.
package importer

import (
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// Stats summarizes one import run.
type Stats struct {
	Lines    int `json:"lines"`
	Imported int `json:"imported"`
	Dropped  int `json:"dropped"`
}

// Parse reads CSV content and returns the transactions it could
// extract. The first line is treated as a header and discarded without
// inspection. Rows with fewer than three fields or a non-numeric
// amount are dropped and counted in Stats.Dropped.
//
// A negative amount marks an expense, anything else income; the stored
// amount is always the absolute value. A missing or unparseable date
// falls back to today, a missing description to "Unknown". Every
// imported transaction starts uncategorized.
func Parse(content string, today civil.Date) ([]domain.Transaction, Stats) {
	var stats Stats
	var txs []domain.Transaction

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if i == 0 {
			// Header row.
			continue
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			stats.Dropped++
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			stats.Dropped++
			continue
		}

		txType := domain.TypeIncome
		if amount < 0 {
			txType = domain.TypeExpense
		}

		date := today
		if raw := strings.TrimSpace(fields[0]); raw != "" {
			if parsed, err := civil.ParseDate(raw); err == nil {
				date = parsed
			}
		}

		description := strings.TrimSpace(fields[1])
		if description == "" {
			description = "Unknown"
		}

		txs = append(txs, domain.Transaction{
			ID:          uuid.NewString(),
			Date:        date,
			Description: description,
			Amount:      math.Abs(amount),
			Type:        txType,
			Category:    domain.CategoryUncategorized,
		})
		stats.Imported++
	}

	return txs, stats
}
