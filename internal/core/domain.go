package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date format used for input and display.
const DateLayout = "2006-01-02"

const maxNameLength = 200

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is immutable once created; collections are replaced, never
	// edited in place.
	Expense struct {
		ID       int64
		Name     string
		Amount   Money
		Category Category
		Date     Date
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidSortMode = errors.New("invalid sort mode")
)

// ValidationError reports a missing or invalid expense field. It is shown
// to the user and never changes state.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return invalid("name", ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return invalid("name", ErrNameTooLong)
	}
	if err := e.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if !e.Category.Valid() {
		return invalid("category", ErrInvalidCategory)
	}
	if err := e.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	return nil
}
