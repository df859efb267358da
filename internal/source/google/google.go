package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/source"
)

const (
	defaultSheetName = "Expenses"
	defaultCacheTTL  = 5 * time.Minute
	cacheSize        = 16
)

var ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")

// Config selects the spreadsheet and credentials. Credentials are taken
// from CredentialsJSON, then CredentialsFile, then
// GOOGLE_APPLICATION_CREDENTIALS.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	CacheTTL        time.Duration
}

// valuesReader reads a range as a values matrix.
type valuesReader func(ctx context.Context, spreadsheetID, rng string) ([][]any, error)

// Client reads the initial expense collection from a sheet laid out as
// Date | Name | Amount | Category | ID.
type Client struct {
	read          valuesReader
	spreadsheetID string
	sheetName     string
	rows          *cache.LRUCache[[]core.Expense]
}

// Ensure interface conformance
var _ source.ExpenseProvider = (*Client)(nil)

// NewFromConfig creates a Sheets client authenticated with service account
// credentials.
func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	read := func(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
		resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return newClient(read, cfg), nil
}

func newClient(read valuesReader, cfg Config) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = defaultSheetName
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Client{
		read:          read,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetName:     sheet,
		rows:          cache.NewLRUCache[[]core.Expense](cacheSize, ttl),
	}
}

// newSheetsService initializes a read-only Sheets service using service
// account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON := strings.TrimSpace(cfg.CredentialsJSON)
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var raw []byte
	switch {
	case credentialsJSON != "":
		raw = []byte(credentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		raw = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(raw),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// FetchInitialExpenses reads the whole expenses sheet. Results are cached
// per range for the configured TTL.
func (c *Client) FetchInitialExpenses(ctx context.Context) ([]core.Expense, error) {
	if c.read == nil {
		return nil, fmt.Errorf("sheets service not initialized: %w", source.ErrProviderUnavailable)
	}
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	if cached, ok := c.rows.Get(rng); ok {
		slog.DebugContext(ctx, "Serving expenses from cache", "range", rng, "count", len(cached))
		return append([]core.Expense(nil), cached...), nil
	}

	values, err := c.read(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	exps, skipped := parseExpenseRows(values)
	if len(skipped) > 0 {
		slog.WarnContext(ctx, "Skipped invalid sheet rows",
			"range", rng,
			"rows", skipped)
	}
	slog.InfoContext(ctx, "Loaded expenses from Google Sheets",
		"range", rng,
		"count", len(exps))

	c.rows.Set(rng, exps)
	return append([]core.Expense(nil), exps...), nil
}

// InvalidateCache forces the next fetch to hit the API.
func (c *Client) InvalidateCache() {
	c.rows.Delete(fmt.Sprintf("%s!A:E", c.sheetName))
}
