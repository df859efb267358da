package core

import "strings"

// SortMode selects the ordering of the filtered view.
type SortMode string

const (
	SortDateAsc    SortMode = "date-asc"
	SortDateDesc   SortMode = "date-desc"
	SortAmountAsc  SortMode = "amount-asc"
	SortAmountDesc SortMode = "amount-desc"
)

// DefaultSort is the initial sort state: newest first.
const DefaultSort = SortDateDesc

func SortModes() []SortMode {
	return []SortMode{SortDateAsc, SortDateDesc, SortAmountAsc, SortAmountDesc}
}

func (m SortMode) Valid() bool {
	switch m {
	case SortDateAsc, SortDateDesc, SortAmountAsc, SortAmountDesc:
		return true
	default:
		return false
	}
}

func (m SortMode) String() string {
	return string(m)
}

func ParseSortMode(s string) (SortMode, error) {
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", ErrInvalidSortMode
	}
	return m, nil
}

// compare orders a before b under the mode. Ties compare as equal so a
// stable sort keeps their input order.
func (m SortMode) compare(a, b Expense) int {
	switch m {
	case SortDateAsc:
		return a.Date.Compare(b.Date.Time)
	case SortDateDesc:
		return b.Date.Compare(a.Date.Time)
	case SortAmountAsc:
		return cmpInt64(a.Amount.Cents, b.Amount.Cents)
	case SortAmountDesc:
		return cmpInt64(b.Amount.Cents, a.Amount.Cents)
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
