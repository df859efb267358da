package google

import (
	"fmt"
	"strconv"
	"strings"

	"tally/internal/core"
)

// parseExpenseRows converts a values matrix (as returned by Sheets API)
// into expenses. A first row whose Date column reads "date" is treated as
// a header. Invalid rows are skipped and reported by 1-based row number.
// Rows without an id are numbered after the largest id in the sheet.
func parseExpenseRows(values [][]any) (exps []core.Expense, skipped []int) {
	var needID []int
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		if i == 0 && strings.EqualFold(safeGet(row, 0), "date") {
			continue
		}
		e, err := parseRow(row)
		if err != nil {
			skipped = append(skipped, i+1)
			continue
		}
		if e.ID == 0 {
			needID = append(needID, len(exps))
		}
		exps = append(exps, e)
	}

	next := core.MaxID(exps)
	for _, i := range needID {
		next++
		exps[i].ID = next
	}
	return exps, skipped
}

func parseRow(row []string) (core.Expense, error) {
	date, err := core.ParseDate(safeGet(row, 0))
	if err != nil {
		return core.Expense{}, err
	}
	cents, ok := parseEurosToCents(safeGet(row, 2))
	if !ok || cents <= 0 {
		return core.Expense{}, core.ErrInvalidAmount
	}
	category, err := core.ParseCategory(safeGet(row, 3))
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Name:     safeGet(row, 1),
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     date,
	}
	if s := safeGet(row, 4); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return core.Expense{}, fmt.Errorf("invalid id %q", s)
		}
		e.ID = id
	}
	return e, e.Validate()
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseEurosToCents accepts sheet-formatted numbers such as "12,34",
// "€ 12.34" or a float cell value.
func parseEurosToCents(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64((f * 100.0) + 0.5), true
}
