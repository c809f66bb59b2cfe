package importer

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

var testToday = civil.Date{Year: 2025, Month: time.June, Day: 1}

func TestParseBasic(t *testing.T) {
	content := "date,description,amount\n" +
		"2025-03-15,Coffee Shop,-6.50\n" +
		"2025-03-16,Paycheck,2500\n"

	txs, stats := Parse(content, testToday)

	if stats.Lines != 2 || stats.Imported != 2 || stats.Dropped != 0 {
		t.Fatalf("stats = %+v, want 2 lines 2 imported 0 dropped", stats)
	}

	coffee := txs[0]
	if coffee.Type != domain.TypeExpense {
		t.Errorf("Type = %q, want EXPENSE for negative amount", coffee.Type)
	}
	if coffee.Amount != 6.50 {
		t.Errorf("Amount = %v, want 6.50 (absolute value)", coffee.Amount)
	}
	if coffee.Description != "Coffee Shop" {
		t.Errorf("Description = %q", coffee.Description)
	}
	if got := coffee.Date.String(); got != "2025-03-15" {
		t.Errorf("Date = %q, want 2025-03-15", got)
	}
	if coffee.Category != domain.CategoryUncategorized {
		t.Errorf("Category = %q, want %q", coffee.Category, domain.CategoryUncategorized)
	}
	if coffee.ID == "" {
		t.Error("ID is empty")
	}

	pay := txs[1]
	if pay.Type != domain.TypeIncome {
		t.Errorf("Type = %q, want INCOME for positive amount", pay.Type)
	}
	if pay.Amount != 2500 {
		t.Errorf("Amount = %v, want 2500", pay.Amount)
	}
}

func TestParseDropsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{name: "two fields", row: "2025-03-15,Coffee Shop"},
		{name: "one field", row: "just-text"},
		{name: "non-numeric amount", row: "2025-03-15,Coffee Shop,abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, stats := Parse("header\n"+tt.row+"\n", testToday)
			if len(txs) != 0 {
				t.Errorf("Parse() returned %d transactions, want 0", len(txs))
			}
			if stats.Dropped != 1 || stats.Imported != 0 {
				t.Errorf("stats = %+v, want 1 dropped 0 imported", stats)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	txs, stats := Parse("header\n,,-10\n", testToday)

	if stats.Imported != 1 {
		t.Fatalf("stats = %+v, want 1 imported", stats)
	}
	tx := txs[0]
	if tx.Date != testToday {
		t.Errorf("Date = %v, want today fallback %v", tx.Date, testToday)
	}
	if tx.Description != "Unknown" {
		t.Errorf("Description = %q, want Unknown", tx.Description)
	}
}

func TestParseBadDateFallsBackToToday(t *testing.T) {
	txs, _ := Parse("header\n15/03/2025,Coffee Shop,-6.50\n", testToday)

	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if txs[0].Date != testToday {
		t.Errorf("Date = %v, want today fallback %v", txs[0].Date, testToday)
	}
}

func TestParseNoQuoteHandling(t *testing.T) {
	// Quoted fields are not understood: the embedded comma splits the
	// row, so the amount lands in the wrong column and the row drops.
	txs, stats := Parse("header\n2025-03-15,\"Coffee, extra shot\",-6.50\n", testToday)

	if len(txs) != 0 {
		t.Fatalf("Parse() returned %d transactions, want 0", len(txs))
	}
	if stats.Dropped != 1 {
		t.Errorf("stats = %+v, want 1 dropped", stats)
	}
}

func TestParseExtraFieldsIgnored(t *testing.T) {
	txs, stats := Parse("header\n2025-03-15,Coffee Shop,-6.50,notes,more\n", testToday)

	if stats.Imported != 1 {
		t.Fatalf("stats = %+v, want 1 imported", stats)
	}
	if txs[0].Description != "Coffee Shop" {
		t.Errorf("Description = %q", txs[0].Description)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	content := "header\n\n2025-03-15,Coffee Shop,-6.50\n\r\n\n"
	txs, stats := Parse(content, testToday)

	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if stats.Lines != 1 {
		t.Errorf("stats.Lines = %d, want 1", stats.Lines)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	txs, stats := Parse("date,description,amount\n", testToday)
	if len(txs) != 0 || stats.Lines != 0 {
		t.Errorf("Parse() = %d transactions, stats %+v; want none", len(txs), stats)
	}
}

func TestParseEmpty(t *testing.T) {
	txs, stats := Parse("", testToday)
	if len(txs) != 0 || stats != (Stats{}) {
		t.Errorf("Parse(\"\") = %d transactions, stats %+v; want zero values", len(txs), stats)
	}
}

func TestParseCRLF(t *testing.T) {
	content := strings.Join([]string{"header", "2025-03-15,Coffee Shop,-6.50", ""}, "\r\n")
	txs, _ := Parse(content, testToday)

	if len(txs) != 1 {
		t.Fatalf("Parse() returned %d transactions, want 1", len(txs))
	}
	if txs[0].Description != "Coffee Shop" {
		t.Errorf("Description = %q (carriage return not stripped?)", txs[0].Description)
	}
}
