package core

import "strings"

// Category is one of a fixed set of expense categories. The zero value
// means "no category" and is only meaningful as a filter.
type Category string

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	Health        Category = "Health"
	Shopping      Category = "Shopping"
	Other         Category = "Other"
)

// NoFilter is the empty filter state.
const NoFilter Category = ""

var categories = []Category{Food, Transport, Housing, Utilities, Entertainment, Health, Shopping, Other}

// Categories returns the enumerable set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s case-insensitively against the known set.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidCategory
}

// ParseFilter is ParseCategory that also accepts "" and "all" as NoFilter.
func ParseFilter(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return NoFilter, nil
	}
	return ParseCategory(s)
}
