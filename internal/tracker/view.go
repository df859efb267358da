package tracker

import "tally/internal/core"

// View is the complete output of one render pass. Every pass builds a new
// View from scratch.
type View struct {
	Total        string
	MonthlyTotal string
	Largest      string
	Expenses     []core.Expense
	ByCategory   []core.CategoryAmount
	Count        int
	Filter       core.Category
	Sort         core.SortMode
	Loading      bool
	LoadError    error
}

// View evaluates every selector against the current state.
func (a *App) View() View {
	return View{
		Total:        a.Total(),
		MonthlyTotal: a.MonthlyTotal(),
		Largest:      a.Largest(),
		Expenses:     a.Expenses(),
		ByCategory:   a.ByCategory(),
		Count:        a.Count(),
		Filter:       a.Filter(),
		Sort:         a.Sort(),
		Loading:      a.Loading(),
		LoadError:    a.LoadError(),
	}
}

// OnRender registers fn to receive the rebuilt View after every state
// write. Listeners run in registration order.
func (a *App) OnRender(fn func(View)) (unsubscribe func()) {
	return a.rt.Subscribe(func() {
		fn(a.View())
	})
}
