package tracker

import (
	"context"
	"time"

	"tally/internal/core"
)

// ChangeKind names a collection change.
type ChangeKind string

const (
	ExpenseAdded   ChangeKind = "expense.added"
	ExpenseDeleted ChangeKind = "expense.deleted"
)

// ChangeEvent describes one successful store action.
type ChangeEvent struct {
	Kind    ChangeKind
	Expense core.Expense
	At      time.Time
}

// Publisher receives change events after the state write has rendered.
// Failures are logged and never undo the change.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev ChangeEvent) error

func (f PublisherFunc) Publish(ctx context.Context, ev ChangeEvent) error {
	return f(ctx, ev)
}

const publishTimeout = 10 * time.Second

// publish hands ev to the publisher off the loop goroutine.
func (a *App) publish(ev ChangeEvent) {
	if a.events == nil {
		return
	}
	a.publishing.Add(1)
	go func() {
		defer a.publishing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := a.events.Publish(ctx, ev); err != nil {
			a.logger.Warn("Failed to publish change event",
				"kind", ev.Kind,
				"expense_id", ev.Expense.ID,
				"error", err)
		}
	}()
}
