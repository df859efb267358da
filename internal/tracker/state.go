package tracker

import (
	"tally/internal/core"
	"tally/internal/reactive"
)

// loadState is written once when the initial fetch settles.
type loadState struct {
	loading bool
	err     error
}

// appState holds every state cell of one tracker instance.
type appState struct {
	expenses *reactive.State[[]core.Expense]
	filter   *reactive.State[core.Category]
	sort     *reactive.State[core.SortMode]
	load     *reactive.State[loadState]
}

func newAppState(rt *reactive.Runtime) appState {
	return appState{
		expenses: reactive.NewState[[]core.Expense](rt, nil),
		filter:   reactive.NewState(rt, core.NoFilter),
		sort:     reactive.NewState(rt, core.DefaultSort),
		load:     reactive.NewState(rt, loadState{loading: true}),
	}
}
