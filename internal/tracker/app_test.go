package tracker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tally/internal/core"
	"tally/internal/metrics"
	"tally/internal/source"
)

var jan20 = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestApp(t *testing.T, p source.ExpenseProvider, opts ...Option) *App {
	t.Helper()
	app := New(p, append([]Option{WithClock(fixedClock(jan20))}, opts...)...)
	t.Cleanup(app.Close)
	return app
}

// step runs one posted function, failing the test if none arrives.
func step(t *testing.T, app *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.Runtime().Step(ctx); err != nil {
		t.Fatalf("no posted work: %v", err)
	}
}

func mustAdd(t *testing.T, app *App, name, amount string, c core.Category, date string) core.Expense {
	t.Helper()
	e, err := app.Add(AddInput{Name: name, Amount: amount, Category: string(c), Date: date})
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return e
}

func amounts(exps []core.Expense) []int64 {
	out := make([]int64, len(exps))
	for i, e := range exps {
		out[i] = e.Amount.Cents
	}
	return out
}

func TestAddUpdatesTotal(t *testing.T) {
	app := newTestApp(t, nil)
	e := mustAdd(t, app, "Coffee", "4.50", core.Food, "2025-01-01")

	if got := app.Total(); got != "4.50" {
		t.Fatalf("Total = %q, want 4.50", got)
	}
	if got := app.Expenses(); len(got) != 1 || got[0] != e {
		t.Fatalf("Expenses = %+v", got)
	}
	if e.ID <= 0 {
		t.Fatalf("expected positive id, got %d", e.ID)
	}
}

func TestAddValidationLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		in    AddInput
		field string
		want  error
	}{
		{"missing name", AddInput{Name: " ", Amount: "1", Category: "Food", Date: "2025-01-01"}, "name", core.ErrEmptyName},
		{"missing amount", AddInput{Name: "x", Amount: "", Category: "Food", Date: "2025-01-01"}, "amount", core.ErrInvalidAmount},
		{"zero amount", AddInput{Name: "x", Amount: "0", Category: "Food", Date: "2025-01-01"}, "amount", core.ErrInvalidAmount},
		{"negative amount", AddInput{Name: "x", Amount: "-3", Category: "Food", Date: "2025-01-01"}, "amount", core.ErrInvalidAmount},
		{"bad category", AddInput{Name: "x", Amount: "1", Category: "Snacks", Date: "2025-01-01"}, "category", core.ErrInvalidCategory},
		{"missing date", AddInput{Name: "x", Amount: "1", Category: "Food"}, "date", core.ErrInvalidDate},
		{"bad date", AddInput{Name: "x", Amount: "1", Category: "Food", Date: "01/02/2025"}, "date", core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			mustAdd(t, app, "Seed", "1", core.Other, "2025-01-01")
			passes := app.Runtime().Passes()

			_, err := app.Add(tt.in)
			var ve *core.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field || !errors.Is(err, tt.want) {
				t.Fatalf("Add error = %v, want %s/%v", err, tt.field, tt.want)
			}
			if !IsValidationError(err) {
				t.Fatal("IsValidationError should match")
			}
			if app.Count() != 1 || app.Runtime().Passes() != passes {
				t.Fatalf("state changed: count=%d passes=%d->%d", app.Count(), passes, app.Runtime().Passes())
			}
		})
	}
}

func TestRapidAddsGetUniqueIDs(t *testing.T) {
	app := newTestApp(t, nil)
	var last int64
	for i := 0; i < 5; i++ {
		e := mustAdd(t, app, "x", "1", core.Other, "2025-01-01")
		if e.ID <= last {
			t.Fatalf("id %d not greater than %d", e.ID, last)
		}
		last = e.ID
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	app := newTestApp(t, nil)
	a := mustAdd(t, app, "A", "1", core.Food, "2025-01-01")
	b := mustAdd(t, app, "B", "2", core.Food, "2025-01-02")
	before := app.Expenses()
	passes := app.Runtime().Passes()

	if app.Delete(a.ID + b.ID + 1) {
		t.Fatal("Delete of unknown id reported a removal")
	}
	if !slices.Equal(app.Expenses(), before) {
		t.Fatalf("collection changed: %+v", app.Expenses())
	}
	if app.Runtime().Passes() != passes {
		t.Fatal("unknown id should not write state")
	}

	if !app.Delete(a.ID) {
		t.Fatal("expected removal")
	}
	if got := app.Expenses(); len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("after delete: %+v", got)
	}
}

func TestSortAndFilter(t *testing.T) {
	app := newTestApp(t, nil)
	mustAdd(t, app, "ten", "10", core.Food, "2025-01-01")
	mustAdd(t, app, "thirty", "30", core.Transport, "2025-01-02")
	mustAdd(t, app, "twenty", "20", core.Health, "2025-01-03")

	if err := app.SetSort(core.SortAmountDesc); err != nil {
		t.Fatal(err)
	}
	if got := amounts(app.Expenses()); !slices.Equal(got, []int64{3000, 2000, 1000}) {
		t.Fatalf("amount-desc order = %v", got)
	}

	if err := app.SetFilter(core.Transport); err != nil {
		t.Fatal(err)
	}
	for _, mode := range core.SortModes() {
		if err := app.SetSort(mode); err != nil {
			t.Fatal(err)
		}
		got := app.Expenses()
		if len(got) != 1 || got[0].Name != "thirty" {
			t.Fatalf("%s: filtered view = %+v", mode, got)
		}
	}

	if err := app.SetFilter(core.NoFilter); err != nil {
		t.Fatal(err)
	}
	if len(app.Expenses()) != 3 {
		t.Fatal("clearing the filter should show everything")
	}
	if err := app.SetFilter("Snacks"); !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if err := app.SetSort("sideways"); !errors.Is(err, core.ErrInvalidSortMode) {
		t.Fatalf("expected ErrInvalidSortMode, got %v", err)
	}
}

func TestEmptySummaries(t *testing.T) {
	app := newTestApp(t, nil)
	if got := app.Largest(); got != "0.00" {
		t.Fatalf("Largest = %q", got)
	}
	mustAdd(t, app, "old", "12.34", core.Food, "2024-06-01")
	if got := app.MonthlyTotal(); got != "0.00" {
		t.Fatalf("MonthlyTotal = %q", got)
	}
	if got := app.Largest(); got != "12.34" {
		t.Fatalf("Largest = %q", got)
	}
}

func TestMonthlyTotalFollowsClock(t *testing.T) {
	now := jan20
	app := New(nil, WithClock(func() time.Time { return now }))
	defer app.Close()
	mustAdd(t, app, "Lunch", "5", core.Food, "2025-01-15")

	if got := app.MonthlyTotal(); got != "5.00" {
		t.Fatalf("January total = %q", got)
	}
	now = now.AddDate(0, 1, 0)
	if got := app.MonthlyTotal(); got != "0.00" {
		t.Fatalf("February total = %q", got)
	}
}

func TestOverview(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	app := newTestApp(t, nil, WithMetrics(m))
	mustAdd(t, app, "Lunch", "12.50", core.Food, "2025-01-05")
	mustAdd(t, app, "Bus", "2", core.Transport, "2025-01-06")
	mustAdd(t, app, "Rent", "900", core.Housing, "2024-12-01")
	if err := app.SetFilter(core.Housing); err != nil {
		t.Fatal(err)
	}

	ov := app.CurrentMonth()
	if ov.Year != 2025 || ov.Month != time.January || ov.Count != 2 {
		t.Fatalf("unexpected overview %+v", ov)
	}
	if ov.Total.Cents != 1450 || ov.Largest.Cents != 1250 || len(ov.ByCategory) != 2 {
		t.Fatalf("overview ignores filter and other months: %+v", ov)
	}
	if dec := app.Overview(2024, time.December); dec.Count != 1 || dec.Total.Cents != 90000 {
		t.Fatalf("December overview = %+v", dec)
	}

	before := testutil.ToFloat64(m.MemoComputationsTotal.WithLabelValues(selOverview))
	app.Overview(2024, time.December)
	if got := testutil.ToFloat64(m.MemoComputationsTotal.WithLabelValues(selOverview)); got != before {
		t.Fatalf("overview recomputed without a change: %v -> %v", before, got)
	}
	ov.ByCategory[0].Amount = core.Money{}
	if app.CurrentMonth().ByCategory[0].Amount.Cents == 0 {
		t.Fatal("callers must not alias the memoized categories")
	}
}

func TestMemoizedSelectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	app := newTestApp(t, nil, WithMetrics(m))
	mustAdd(t, app, "A", "1", core.Food, "2025-01-01")

	computed := func(sel string) float64 {
		return testutil.ToFloat64(m.MemoComputationsTotal.WithLabelValues(sel))
	}
	app.View()
	app.View()
	if computed(selTotal) != 1 || computed(selVisible) != 1 {
		t.Fatalf("selectors recomputed without a change: total=%v visible=%v", computed(selTotal), computed(selVisible))
	}

	if err := app.SetFilter(core.Food); err != nil {
		t.Fatal(err)
	}
	app.View()
	if computed(selTotal) != 1 {
		t.Fatal("total does not depend on the filter")
	}
	if computed(selVisible) != 2 {
		t.Fatalf("visible should recompute after filter change, got %v", computed(selVisible))
	}
	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("add", metrics.OutcomeOK)); got != 1 {
		t.Fatalf("add actions = %v", got)
	}
	if testutil.ToFloat64(m.RendersTotal) < 2 {
		t.Fatal("expected render passes to be counted")
	}
}

func TestOnRender(t *testing.T) {
	app := newTestApp(t, nil)
	var views []View
	unsubscribe := app.OnRender(func(v View) { views = append(views, v) })

	mustAdd(t, app, "Coffee", "4.50", core.Food, "2025-01-05")
	if len(views) != 1 {
		t.Fatalf("expected one render, got %d", len(views))
	}
	v := views[0]
	if v.Total != "4.50" || v.MonthlyTotal != "4.50" || v.Largest != "4.50" || len(v.Expenses) != 1 || v.Count != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
	if !v.Loading {
		t.Fatal("unmounted tracker stays loading")
	}

	unsubscribe()
	mustAdd(t, app, "Tea", "2", core.Food, "2025-01-05")
	if len(views) != 1 {
		t.Fatal("unsubscribed listener was called")
	}
}

func TestWriteDuringRenderIsQueued(t *testing.T) {
	app := newTestApp(t, nil)
	var filters []core.Category
	app.OnRender(func(v View) {
		filters = append(filters, v.Filter)
		if v.Filter == core.NoFilter && v.Count > 0 {
			if err := app.SetFilter(core.Food); err != nil {
				t.Errorf("SetFilter: %v", err)
			}
		}
	})

	mustAdd(t, app, "Coffee", "1", core.Food, "2025-01-01")
	if !slices.Equal(filters, []core.Category{core.NoFilter, core.Food}) {
		t.Fatalf("render sequence = %v", filters)
	}
	if app.Filter() != core.Food {
		t.Fatalf("queued write not applied: %q", app.Filter())
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	exps  []core.Expense
	err   error
}

func (p *countingProvider) FetchInitialExpenses(context.Context) ([]core.Expense, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.exps, p.err
}

func TestMountFetchesOnce(t *testing.T) {
	p := &countingProvider{exps: []core.Expense{
		{ID: 1, Name: "Rent", Amount: core.Money{Cents: 90000}, Category: core.Housing, Date: core.NewDate(2025, 1, 1)},
	}}
	app := newTestApp(t, p)

	var loading []bool
	app.OnRender(func(v View) { loading = append(loading, v.Loading) })

	app.Mount(context.Background())
	app.Mount(context.Background())
	step(t, app)

	if p.calls != 1 || app.bootstrap.Runs() != 1 {
		t.Fatalf("expected one fetch, got calls=%d runs=%d", p.calls, app.bootstrap.Runs())
	}
	if app.Loading() || app.LoadError() != nil {
		t.Fatalf("unexpected load state loading=%v err=%v", app.Loading(), app.LoadError())
	}
	if app.Total() != "900.00" {
		t.Fatalf("Total = %q", app.Total())
	}
	if len(loading) == 0 || !loading[0] || loading[len(loading)-1] {
		t.Fatalf("loading sequence = %v", loading)
	}

	// Ids continue above loaded ones.
	if e := mustAdd(t, app, "Tea", "1", core.Food, "2025-01-02"); e.ID <= 1 {
		t.Fatalf("new id %d should be above loaded ids", e.ID)
	}
}

func TestMountFailureIsTerminal(t *testing.T) {
	boom := errors.New("sheet unavailable")
	app := newTestApp(t, &countingProvider{err: boom})
	app.Mount(context.Background())
	step(t, app)

	if app.Loading() {
		t.Fatal("failed fetch should end loading")
	}
	if err := app.LoadError(); !errors.Is(err, ErrLoadFailed) || !errors.Is(err, boom) {
		t.Fatalf("LoadError = %v", err)
	}

	// The tracker stays usable.
	mustAdd(t, app, "Coffee", "4.50", core.Food, "2025-01-01")
	if app.Total() != "4.50" {
		t.Fatalf("Total = %q", app.Total())
	}
}

func TestMountWithoutProvider(t *testing.T) {
	app := newTestApp(t, nil)
	app.Mount(context.Background())
	step(t, app)
	if !errors.Is(app.LoadError(), source.ErrProviderUnavailable) {
		t.Fatalf("LoadError = %v", app.LoadError())
	}
}

func TestPendingAddsSurviveLoad(t *testing.T) {
	release := make(chan struct{})
	p := source.ProviderFunc(func(context.Context) ([]core.Expense, error) {
		<-release
		return []core.Expense{
			{ID: 7, Name: "Rent", Amount: core.Money{Cents: 100}, Category: core.Housing, Date: core.NewDate(2025, 1, 1)},
		}, nil
	})
	app := newTestApp(t, p)
	app.Mount(context.Background())
	added := mustAdd(t, app, "Coffee", "1", core.Food, "2025-01-02")
	close(release)
	step(t, app)

	if err := app.SetSort(core.SortDateAsc); err != nil {
		t.Fatal(err)
	}
	got := app.Expenses()
	if len(got) != 2 || got[0].ID != 7 || got[1].ID != added.ID {
		t.Fatalf("merged collection = %+v", got)
	}
}

func TestLateResolutionAfterCloseIsIgnored(t *testing.T) {
	release := make(chan struct{})
	p := source.ProviderFunc(func(context.Context) ([]core.Expense, error) {
		<-release
		return []core.Expense{
			{ID: 1, Name: "Late", Amount: core.Money{Cents: 100}, Category: core.Other, Date: core.NewDate(2025, 1, 1)},
		}, nil
	})
	app := New(p, WithClock(fixedClock(jan20)))
	app.Mount(context.Background())
	renders := 0
	app.OnRender(func(View) { renders++ })

	app.Close()
	close(release)
	step(t, app)

	if app.Count() != 0 || renders != 0 {
		t.Fatalf("late result applied: count=%d renders=%d", app.Count(), renders)
	}
	if app.bootstrap.Runs() != 1 {
		t.Fatal("bootstrap should have run once")
	}
}

func TestChangeEvents(t *testing.T) {
	events := make(chan ChangeEvent, 4)
	app := New(nil,
		WithClock(fixedClock(jan20)),
		WithEvents(PublisherFunc(func(_ context.Context, ev ChangeEvent) error {
			events <- ev
			return errors.New("broker down")
		})),
	)

	e := mustAdd(t, app, "Coffee", "4.50", core.Food, "2025-01-01")
	app.Delete(e.ID)
	app.Delete(e.ID)
	app.Close()
	close(events)

	var kinds []ChangeKind
	for ev := range events {
		if ev.Expense.ID != e.ID || !ev.At.Equal(jan20) {
			t.Fatalf("unexpected event %+v", ev)
		}
		kinds = append(kinds, ev.Kind)
	}
	slices.Sort(kinds)
	if !slices.Equal(kinds, []ChangeKind{ExpenseAdded, ExpenseDeleted}) {
		t.Fatalf("events = %v", kinds)
	}
	if app.Count() != 0 {
		t.Fatal("publish failure must not undo the delete")
	}
}

// lockedBuffer lets a test read log output written from other goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFetchAfterCloseDoesNotBlockOnFullInbox(t *testing.T) {
	release := make(chan struct{})
	p := source.ProviderFunc(func(context.Context) ([]core.Expense, error) {
		<-release
		return nil, nil
	})
	var logs lockedBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	app := New(p, WithClock(fixedClock(jan20)), WithLogger(logger))
	app.Mount(context.Background())

	// Nothing runs the loop any more, so fill the inbox to capacity.
	full, cancel := context.WithCancel(context.Background())
	cancel()
	for app.Runtime().PostContext(full, func() {}) {
	}

	app.Close()
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(logs.String(), "Dropping fetch result after close") {
		if time.Now().After(deadline) {
			t.Fatalf("fetch goroutine still blocked after close; logs:\n%s", logs.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
