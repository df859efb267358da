package tracker

import (
	"errors"
	"strings"

	"tally/internal/core"
	tlog "tally/internal/log"
	"tally/internal/metrics"
)

// AddInput carries the fields of a new expense as entered by a user.
type AddInput struct {
	Name     string
	Amount   string
	Category string
	Date     string
}

func (in AddInput) parse() (core.Expense, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Expense{}, &core.ValidationError{Field: "name", Err: core.ErrEmptyName}
	}
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	category, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "category", Err: core.ErrInvalidCategory}
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	e := core.Expense{Name: name, Amount: amount, Category: category, Date: date}
	return e, e.Validate()
}

// Add validates in, assigns a fresh id and appends the expense. On a
// validation error nothing is written and the error is a
// *core.ValidationError.
func (a *App) Add(in AddInput) (core.Expense, error) {
	e, err := in.parse()
	if err != nil {
		a.metrics.Action(tlog.OpAdd, metrics.OutcomeInvalid)
		a.logger.Debug("Rejected expense", tlog.FieldOperation, tlog.OpAdd, tlog.FieldError, err)
		return core.Expense{}, err
	}

	now := a.clock()
	e.ID = a.ids.Next(now)
	a.state.expenses.Update(func(cur []core.Expense) []core.Expense {
		next := make([]core.Expense, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, e)
	})

	a.metrics.Action(tlog.OpAdd, metrics.OutcomeOK)
	a.logger.Info("Expense added", tlog.NewFields().WithOperation(tlog.OpAdd).WithExpense(e).ToSlice()...)
	a.publish(ChangeEvent{Kind: ExpenseAdded, Expense: e, At: now})
	return e, nil
}

// Delete removes the expense with id. An unknown id is a no-op that
// writes nothing; the result reports whether a record was removed.
func (a *App) Delete(id int64) bool {
	cur := a.state.expenses.Get()
	idx := -1
	for i, e := range cur {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.metrics.Action(tlog.OpDelete, metrics.OutcomeNoop)
		return false
	}
	removed := cur[idx]

	a.state.expenses.Update(func(cur []core.Expense) []core.Expense {
		next := make([]core.Expense, 0, len(cur))
		for _, e := range cur {
			if e.ID != id {
				next = append(next, e)
			}
		}
		return next
	})

	a.metrics.Action(tlog.OpDelete, metrics.OutcomeOK)
	a.logger.Info("Expense deleted", tlog.FieldExpenseID, id)
	a.publish(ChangeEvent{Kind: ExpenseDeleted, Expense: removed, At: a.clock()})
	return true
}

// SetFilter overwrites the filter state. core.NoFilter shows every
// category.
func (a *App) SetFilter(c core.Category) error {
	if c != core.NoFilter && !c.Valid() {
		a.metrics.Action(tlog.OpFilter, metrics.OutcomeInvalid)
		return core.ErrInvalidCategory
	}
	a.state.filter.Set(c)
	a.metrics.Action(tlog.OpFilter, metrics.OutcomeOK)
	return nil
}

// SetSort overwrites the sort state.
func (a *App) SetSort(m core.SortMode) error {
	if !m.Valid() {
		a.metrics.Action(tlog.OpSort, metrics.OutcomeInvalid)
		return core.ErrInvalidSortMode
	}
	a.state.sort.Set(m)
	a.metrics.Action(tlog.OpSort, metrics.OutcomeOK)
	return nil
}

// IsValidationError reports whether err is a user-facing validation
// failure.
func IsValidationError(err error) bool {
	var ve *core.ValidationError
	return errors.As(err, &ve)
}
