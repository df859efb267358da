package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
)

// MultiProvider fetches from several providers concurrently and
// concatenates the results in provider order.
type MultiProvider struct {
	providers []ExpenseProvider
}

var _ ExpenseProvider = (*MultiProvider)(nil)

func Multi(providers ...ExpenseProvider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

// FetchInitialExpenses fails as a whole if any provider fails. Records
// whose id is missing or already taken by an earlier record get a fresh id
// above the largest one seen.
func (m *MultiProvider) FetchInitialExpenses(ctx context.Context) ([]core.Expense, error) {
	results := make([][]core.Expense, len(m.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range m.providers {
		g.Go(func() error {
			exps, err := p.FetchInitialExpenses(gctx)
			if err != nil {
				return fmt.Errorf("provider %d: %w", i, err)
			}
			results[i] = exps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var highest int64
	total := 0
	for _, exps := range results {
		total += len(exps)
		if id := core.MaxID(exps); id > highest {
			highest = id
		}
	}

	merged := make([]core.Expense, 0, total)
	seen := make(map[int64]bool, total)
	reassigned := 0
	for _, exps := range results {
		for _, e := range exps {
			if e.ID <= 0 || seen[e.ID] {
				highest++
				e.ID = highest
				reassigned++
			}
			seen[e.ID] = true
			merged = append(merged, e)
		}
	}
	if reassigned > 0 {
		slog.DebugContext(ctx, "Reassigned duplicate expense ids", "count", reassigned)
	}
	return merged, nil
}
