package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
)

func TestMemoryStoreFetchReturnsCopy(t *testing.T) {
	seed := []core.Expense{
		{ID: 1, Name: "Coffee", Amount: core.Money{Cents: 450}, Category: core.Food, Date: core.NewDate(2025, 1, 1)},
	}
	s := New(seed)
	seed[0].Name = "changed"

	got, err := s.FetchInitialExpenses(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "Coffee" {
		t.Fatalf("unexpected fetch: %+v err=%v", got, err)
	}
	got[0].Name = "mutated"
	again, _ := s.FetchInitialExpenses(context.Background())
	if again[0].Name != "Coffee" {
		t.Fatalf("store leaked its backing slice")
	}
}

func TestFetchHonorsContextDuringDelay(t *testing.T) {
	s := New(nil).WithDelay(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.FetchInitialExpenses(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadSeed(t *testing.T) {
	in := `date,name,amount,category,id
# comment
2025-01-01,Coffee,4.50,Food
2025-01-02, Rent ,"1200,00",housing,7

2025-01-03,Bus,2,Transport
`
	got, err := ReadSeed(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}
	if got[0].ID != 8 || got[1].ID != 7 || got[2].ID != 9 {
		t.Fatalf("unexpected ids: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[1].Name != "Rent" || got[1].Amount.Cents != 120000 || got[1].Category != core.Housing {
		t.Fatalf("unexpected record: %+v", got[1])
	}
}

func TestReadSeedRejectsInvalidRecords(t *testing.T) {
	bads := []string{
		"2025-01-01,Coffee,4.50",
		"not-a-date,Coffee,4.50,Food",
		"2025-01-01,Coffee,abc,Food",
		"2025-01-01,Coffee,4.50,Snacks",
		"2025-01-01,,4.50,Food",
		"2025-01-01,Coffee,4.50,Food,-3",
	}
	for _, in := range bads {
		if _, err := ReadSeed(strings.NewReader(in)); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s := NewFromFiles(dir)
	got, _ := s.FetchInitialExpenses(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty store when seed file is missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite(SeedFile, "# header\n2025-01-01,Coffee,4.50,Food\n2025-01-02,Lunch,12,Food\n")

	s = NewFromFiles(dir)
	got, _ = s.FetchInitialExpenses(context.Background())
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected seed: %+v", got)
	}

	mustWrite(SeedFile, "2025-01-01,Coffee,free,Food\n")
	s = NewFromFiles(dir)
	got, _ = s.FetchInitialExpenses(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected invalid seed to be ignored, got %+v", got)
	}
}
