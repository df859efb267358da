// Package tracker is the root controller of the expense tracker. It owns
// the state cells, the memoized selectors and the bootstrap effect, and
// exposes read accessors and store actions to a binding layer.
//
// An App is driven by a single goroutine: every method except those of
// its Runtime's Post must be called from the goroutine running the
// runtime loop (or the test goroutine).
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tally/internal/core"
	tlog "tally/internal/log"
	"tally/internal/metrics"
	"tally/internal/reactive"
	"tally/internal/source"
)

// ErrLoadFailed wraps the provider error once the initial fetch fails.
var ErrLoadFailed = errors.New("loading expenses failed")

const defaultFetchTimeout = 30 * time.Second

// App is the root controller. It owns the application state, the
// selector memos and the runtime; every method except Close must run on
// the runtime loop goroutine.
type App struct {
	rt        *reactive.Runtime
	scope     *reactive.Scope
	state     appState
	sel       *selectors
	bootstrap *reactive.Effect

	provider     source.ExpenseProvider
	logger       *tlog.Logger
	clock        func() time.Time
	events       Publisher
	metrics      *metrics.Collectors
	fetchTimeout time.Duration

	ids        core.IDSource
	publishing sync.WaitGroup

	// lifetime ends at Close and releases goroutines waiting on a full
	// inbox.
	lifetime context.Context
	stop     context.CancelFunc
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger; nil keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = tlog.From(logger, tlog.ComponentTracker)
	}
}

// WithClock replaces time.Now for ids, change events and the monthly
// total.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.clock = now
		}
	}
}

// WithEvents publishes a ChangeEvent after every add and delete.
func WithEvents(p Publisher) Option {
	return func(a *App) {
		a.events = p
	}
}

// WithMetrics records renders, memo recomputes and actions on m.
func WithMetrics(m *metrics.Collectors) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithFetchTimeout bounds the initial fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

// New creates an unmounted tracker reading its initial collection from
// provider.
func New(provider source.ExpenseProvider, opts ...Option) *App {
	a := &App{
		provider:     provider,
		logger:       tlog.From(nil, tlog.ComponentTracker),
		clock:        time.Now,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.rt = reactive.NewRuntime(
		reactive.WithLogger(a.logger.WithComponent(tlog.ComponentRuntime).Slog()),
		reactive.WithRenderHook(func(int) {
			a.metrics.Render()
			a.metrics.SetExpenses(a.Count())
		}),
	)
	a.lifetime, a.stop = context.WithCancel(context.Background())
	a.scope = reactive.NewScope()
	a.state = newAppState(a.rt)
	a.sel = newSelectors(a.scope)
	a.bootstrap = reactive.NewEffect(a.scope)
	return a
}

// Runtime returns the render driver. Run its loop to process fetch
// results and work posted from other goroutines.
func (a *App) Runtime() *reactive.Runtime {
	return a.rt
}

// Mount starts the initial fetch. The bootstrap effect has an empty
// dependency list, so repeated calls never fetch again.
func (a *App) Mount(ctx context.Context) {
	a.bootstrap.Run(func() reactive.Cleanup {
		fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		a.logger.Debug("Fetching initial expenses", tlog.FieldOperation, tlog.OpFetch)

		if a.provider == nil {
			err := fmt.Errorf("no provider configured: %w", source.ErrProviderUnavailable)
			a.rt.Post(func() { a.resolve(nil, err) })
			return reactive.Cleanup(cancel)
		}

		started := time.Now()
		go func() {
			exps, err := a.provider.FetchInitialExpenses(fetchCtx)
			a.metrics.ObserveFetch(time.Since(started))
			if !a.rt.PostContext(a.lifetime, func() { a.resolve(exps, err) }) {
				a.logger.Debug("Dropping fetch result after close", tlog.FieldCount, len(exps))
			}
		}()
		return reactive.Cleanup(cancel)
	}, reactive.None())
	a.rt.Render()
}

// resolve applies the settled fetch. A result arriving after Close is
// dropped.
func (a *App) resolve(loaded []core.Expense, err error) {
	if a.scope.Disposed() {
		a.logger.Debug("Ignoring fetch result after close", "error", err, tlog.FieldCount, len(loaded))
		return
	}
	if err != nil {
		a.logger.Error("Failed to load expenses",
			tlog.NewFields().WithOperation(tlog.OpFetch).WithError(err, tlog.ErrorTypeProvider).ToSlice()...)
		a.state.load.Set(loadState{err: fmt.Errorf("%w: %w", ErrLoadFailed, err)})
		return
	}

	a.ids.Observe(core.MaxID(loaded))
	a.state.expenses.Update(func(cur []core.Expense) []core.Expense {
		return a.merge(loaded, cur)
	})
	a.state.load.Set(loadState{})
	a.logger.Info("Loaded expenses", tlog.FieldCount, len(loaded))
}

// merge puts loaded records ahead of records added while the fetch was
// pending. A pending record whose id is taken by a loaded one gets a new
// id.
func (a *App) merge(loaded, pending []core.Expense) []core.Expense {
	taken := make(map[int64]bool, len(loaded))
	for _, e := range loaded {
		taken[e.ID] = true
	}
	out := make([]core.Expense, 0, len(loaded)+len(pending))
	out = append(out, loaded...)
	for _, e := range pending {
		if taken[e.ID] {
			e.ID = a.ids.Next(a.clock())
		}
		out = append(out, e)
	}
	return out
}

// Close tears the tracker down: the pending fetch is cancelled, memo
// cells stop caching and in-flight change events are awaited.
func (a *App) Close() {
	a.stop()
	a.scope.Dispose()
	a.publishing.Wait()
}
