package google

import (
	"testing"

	"tally/internal/core"
)

// Build a small matrix emulating a shared expenses sheet
func TestParseExpenseRows(t *testing.T) {
	values := [][]any{
		{"Date", "Name", "Amount", "Category", "ID"},
		{"2025-01-01", "Coffee", 4.5, "Food"},
		{"2025-01-02", "Rent", "1200,00", "Housing", "10"},
		{},
		{"", "", "", ""},
		{"2025-01-03", "Bus", "€ 2.20", "transport"},
		{"not a date", "Broken", 1.0, "Food"},
		{"2025-01-04", "Gift", 0, "Other"},
		{"2025-01-05", "Snacks", 3.0, "Snacks"},
		{"2025-01-06", "", 3.0, "Food"},
	}
	exps, skipped := parseExpenseRows(values)
	if len(exps) != 3 {
		t.Fatalf("expected 3 expenses, got %d: %+v", len(exps), exps)
	}
	if len(skipped) != 4 || skipped[0] != 7 || skipped[3] != 10 {
		t.Fatalf("unexpected skipped rows %v", skipped)
	}

	if exps[0].Amount.Cents != 450 || exps[0].ID != 11 {
		t.Fatalf("unexpected first expense %+v", exps[0])
	}
	if exps[1].ID != 10 || exps[1].Amount.Cents != 120000 || exps[1].Category != core.Housing {
		t.Fatalf("unexpected second expense %+v", exps[1])
	}
	if exps[2].Category != core.Transport || exps[2].Amount.Cents != 220 || exps[2].ID != 12 {
		t.Fatalf("unexpected third expense %+v", exps[2])
	}
}

func TestParseExpenseRowsWithoutHeader(t *testing.T) {
	exps, skipped := parseExpenseRows([][]any{{"2025-02-01", "Lunch", "12", "Food"}})
	if len(exps) != 1 || len(skipped) != 0 || exps[0].ID != 1 {
		t.Fatalf("got %+v skipped=%v", exps, skipped)
	}
}

func TestParseEurosToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1,23", 123, true},
		{"€ 4.5", 450, true},
		{"0.005", 1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseEurosToCents(tc.in)
		if ok != tc.ok || (ok && got != tc.out) {
			t.Fatalf("%q expected %d/%v, got %d/%v", tc.in, tc.out, tc.ok, got, ok)
		}
	}
}
