package tracker

import (
	"slices"
	"time"

	"tally/internal/core"
	"tally/internal/reactive"
)

// Selector names, also used as metric labels.
const (
	selTotal        = "total"
	selMonthlyTotal = "monthly_total"
	selLargest      = "largest"
	selVisible      = "visible"
	selByCategory   = "by_category"
	selOverview     = "overview"
)

// selectors owns one memo cell per derived value.
type selectors struct {
	total      *reactive.Memo[core.Money]
	monthly    *reactive.Memo[core.Money]
	largest    *reactive.Memo[core.Money]
	visible    *reactive.Memo[[]core.Expense]
	byCategory *reactive.Memo[[]core.CategoryAmount]
	overview   *reactive.Memo[core.MonthOverview]
}

func newSelectors(scope *reactive.Scope) *selectors {
	return &selectors{
		total:      reactive.NewMemo[core.Money](scope),
		monthly:    reactive.NewMemo[core.Money](scope),
		largest:    reactive.NewMemo[core.Money](scope),
		visible:    reactive.NewMemo[[]core.Expense](scope),
		byCategory: reactive.NewMemo[[]core.CategoryAmount](scope),
		overview:   reactive.NewMemo[core.MonthOverview](scope),
	}
}

func counted[T any](a *App, name string, fn func() T) func() T {
	return func() T {
		a.metrics.Computed(name)
		return fn()
	}
}

// Total is the sum of every amount, formatted to two decimals.
func (a *App) Total() string {
	exps := a.state.expenses.Get()
	return a.sel.total.Get(counted(a, selTotal, func() core.Money {
		return core.Total(exps)
	}), reactive.On(exps)).String()
}

// MonthlyTotal sums the amounts dated in the clock's current month. The
// month is read on every call, so the value moves at a month boundary
// even without a state write.
func (a *App) MonthlyTotal() string {
	exps := a.state.expenses.Get()
	now := a.clock()
	return a.sel.monthly.Get(counted(a, selMonthlyTotal, func() core.Money {
		return core.MonthlyTotal(exps, now)
	}), reactive.On(exps, now.Year(), now.Month())).String()
}

// Largest is the maximum amount, "0.00" for an empty collection.
func (a *App) Largest() string {
	exps := a.state.expenses.Get()
	return a.sel.largest.Get(counted(a, selLargest, func() core.Money {
		return core.Largest(exps)
	}), reactive.On(exps)).String()
}

// Expenses returns the filtered and sorted view of the collection.
func (a *App) Expenses() []core.Expense {
	exps := a.state.expenses.Get()
	filter := a.state.filter.Get()
	mode := a.state.sort.Get()
	visible := a.sel.visible.Get(counted(a, selVisible, func() []core.Expense {
		return core.FilterSort(exps, filter, mode)
	}), reactive.On(exps, filter, mode))
	return slices.Clone(visible)
}

// ByCategory returns per-category totals over the whole collection.
func (a *App) ByCategory() []core.CategoryAmount {
	exps := a.state.expenses.Get()
	totals := a.sel.byCategory.Get(counted(a, selByCategory, func() []core.CategoryAmount {
		return core.ByCategory(exps)
	}), reactive.On(exps))
	return slices.Clone(totals)
}

// Overview summarizes the expenses dated in year and month, ignoring the
// filter.
func (a *App) Overview(year int, month time.Month) core.MonthOverview {
	exps := a.state.expenses.Get()
	ov := a.sel.overview.Get(counted(a, selOverview, func() core.MonthOverview {
		return core.Overview(exps, year, month)
	}), reactive.On(exps, year, month))
	ov.ByCategory = slices.Clone(ov.ByCategory)
	return ov
}

// CurrentMonth is the Overview of the clock's current month.
func (a *App) CurrentMonth() core.MonthOverview {
	now := a.clock()
	return a.Overview(now.Year(), now.Month())
}

// Loading reports whether the initial fetch is still pending.
func (a *App) Loading() bool {
	return a.state.load.Get().loading
}

// LoadError returns the terminal fetch failure, if any.
func (a *App) LoadError() error {
	return a.state.load.Get().err
}

// Filter is the active category filter, core.NoFilter for all.
func (a *App) Filter() core.Category {
	return a.state.filter.Get()
}

// Sort is the active sort mode.
func (a *App) Sort() core.SortMode {
	return a.state.sort.Get()
}

// Count is the size of the whole collection, ignoring the filter.
func (a *App) Count() int {
	return len(a.state.expenses.Get())
}
