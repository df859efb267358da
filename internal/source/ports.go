package source

import (
	"context"
	"errors"

	"tally/internal/core"
)

// ErrProviderUnavailable is returned by providers that cannot be reached.
var ErrProviderUnavailable = errors.New("expense provider unavailable")

// Ports for inbound data sources.
type (
	// ExpenseProvider yields the initial expense collection. It is called
	// once per mounted tracker and may block; callers run it off the
	// render loop.
	ExpenseProvider interface {
		FetchInitialExpenses(ctx context.Context) ([]core.Expense, error)
	}

	// ProviderFunc adapts a function to ExpenseProvider.
	ProviderFunc func(ctx context.Context) ([]core.Expense, error)
)

func (f ProviderFunc) FetchInitialExpenses(ctx context.Context) ([]core.Expense, error) {
	return f(ctx)
}
