package backend

import (
	"context"
	"time"

	"tally/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the provider instance and optional cleanup function
type Result struct {
	Provider source.ExpenseProvider
	Cleanup  CleanupFunc
}

// Close runs the cleanup function when present.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates providers based on configuration
type Factory interface {
	CreateProvider(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for provider creation
type Config struct {
	Type Type

	// Memory provider
	DataDirectory string

	// SQLite provider
	SQLiteDBPath string

	// Google Sheets provider
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	SheetsCacheTTL           time.Duration
}

// Type names a data source
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MultiBackend  Type = "multi"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, SheetsBackend, MultiBackend:
		return true
	default:
		return false
	}
}
