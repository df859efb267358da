package core

import (
	"slices"
	"time"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      time.Month
	Total      Money
	Largest    Money
	Count      int
	ByCategory []CategoryAmount
}

// Total sums every amount in the collection.
func Total(exps []Expense) Money {
	var total Money
	for _, e := range exps {
		total = total.Add(e.Amount)
	}
	return total
}

// MonthlyTotal sums the amounts dated in the calendar month of now.
func MonthlyTotal(exps []Expense, now time.Time) Money {
	year, month := now.Year(), now.Month()
	var total Money
	for _, e := range exps {
		if e.Date.InMonth(year, month) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Largest returns the maximum amount, or zero for an empty collection.
func Largest(exps []Expense) Money {
	var largest Money
	for i, e := range exps {
		if i == 0 || e.Amount.Cents > largest.Cents {
			largest = e.Amount
		}
	}
	return largest
}

// FilterSort returns a new slice holding the expenses of the filter
// category (all of them for NoFilter), stably sorted by mode. The input is
// never modified.
func FilterSort(exps []Expense, filter Category, mode SortMode) []Expense {
	out := make([]Expense, 0, len(exps))
	for _, e := range exps {
		if filter == NoFilter || e.Category == filter {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, mode.compare)
	return out
}

// ByCategory totals amounts per category in first-seen order.
func ByCategory(exps []Expense) []CategoryAmount {
	index := map[Category]int{}
	var out []CategoryAmount
	for _, e := range exps {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryAmount{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// Overview summarizes the expenses dated in the given month.
func Overview(exps []Expense, year int, month time.Month) MonthOverview {
	var inMonth []Expense
	for _, e := range exps {
		if e.Date.InMonth(year, month) {
			inMonth = append(inMonth, e)
		}
	}
	return MonthOverview{
		Year:       year,
		Month:      month,
		Total:      Total(inMonth),
		Largest:    Largest(inMonth),
		Count:      len(inMonth),
		ByCategory: ByCategory(inMonth),
	}
}

// MaxID returns the largest identifier in the collection, or 0.
func MaxID(exps []Expense) int64 {
	var highest int64
	for _, e := range exps {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest
}
