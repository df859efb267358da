package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/source"
)

// SeedFile is the file NewFromFiles reads from its base directory.
const SeedFile = "seed_expenses.csv"

// Store serves a fixed in-memory collection as the initial expenses.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
	delay time.Duration
}

var _ source.ExpenseProvider = (*Store)(nil)

func New(seed []core.Expense) *Store {
	return &Store{items: append([]core.Expense(nil), seed...)}
}

// NewFromFiles seeds the store from base/seed_expenses.csv. A missing or
// unreadable file yields an empty store.
func NewFromFiles(base string) *Store {
	path := filepath.Join(base, SeedFile)
	f, err := os.Open(path)
	if err != nil {
		return New(nil)
	}
	defer f.Close()

	items, err := ReadSeed(f)
	if err != nil {
		slog.Warn("Ignoring invalid seed file", "path", path, "error", err)
		return New(nil)
	}
	return New(items)
}

// WithDelay makes every fetch wait d before resolving, honoring ctx.
func (s *Store) WithDelay(d time.Duration) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
	return s
}

// FetchInitialExpenses returns a copy of the seeded collection.
func (s *Store) FetchInitialExpenses(ctx context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	delay := s.delay
	items := append([]core.Expense(nil), s.items...)
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return items, nil
}

// ReadSeed parses "date,name,amount,category[,id]" records. Blank lines,
// '#' comments and a leading header row are skipped; records without an id
// are numbered after the largest explicit id.
func ReadSeed(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out    []core.Expense
		line   int
		needID []int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("seed record %d: %w", line, err)
		}
		if e.ID == 0 {
			needID = append(needID, len(out))
		}
		out = append(out, e)
	}

	next := core.MaxID(out)
	for _, i := range needID {
		next++
		out[i].ID = next
	}
	return out, nil
}

func parseRecord(rec []string) (core.Expense, error) {
	if len(rec) < 4 {
		return core.Expense{}, fmt.Errorf("expected at least 4 fields, got %d", len(rec))
	}
	date, err := core.ParseDate(rec[0])
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseMoney(rec[2])
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseCategory(rec[3])
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %q", err, rec[3])
	}
	e := core.Expense{
		Name:     strings.TrimSpace(rec[1]),
		Amount:   amount,
		Category: category,
		Date:     date,
	}
	if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 64)
		if err != nil || id <= 0 {
			return core.Expense{}, fmt.Errorf("invalid id %q", rec[4])
		}
		e.ID = id
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
