package services

import (
	"context"
	"fmt"

	"spesa/internal/amqp"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/storage"
)

// AddExpense classifies the item and stores a new expense.
func (t *Tracker) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e := in.expense(0, 0)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return core.Expense{}, err
	}
	e.ID = t.ids.Next()
	e.CategoryID = core.Classify(snap.Items, snap.Categories, e.Item).ID
	snap.Expenses = append(snap.Expenses, e)
	if err := t.save(ctx, snap, storage.KeyExpenses); err != nil {
		t.mu.Unlock()
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	t.mu.Unlock()

	t.events.LogExpenseSaved(ctx, log.OpCreate, e.ID, e.Item, e.Amount.String(), e.CategoryID)
	ev := amqp.NewChangeEvent(amqp.ExpenseCreated, periodsOf(e)...)
	ev.ExpenseID = e.ID
	t.publish(ctx, ev)
	return e, nil
}

// EditExpense overwrites the mutable fields of an expense and re-classifies
// it from the new item.
func (t *Tracker) EditExpense(ctx context.Context, id int64, in ExpenseInput) (core.Expense, error) {
	e := in.expense(id, 0)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return core.Expense{}, err
	}
	idx := indexOfExpense(snap.Expenses, id)
	if idx < 0 {
		t.mu.Unlock()
		return core.Expense{}, fmt.Errorf("%w: %d", core.ErrExpenseNotFound, id)
	}
	old := snap.Expenses[idx]
	e.CategoryID = core.Classify(snap.Items, snap.Categories, e.Item).ID
	snap.Expenses[idx] = e
	if err := t.save(ctx, snap, storage.KeyExpenses); err != nil {
		t.mu.Unlock()
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	t.mu.Unlock()

	t.events.LogExpenseSaved(ctx, log.OpUpdate, e.ID, e.Item, e.Amount.String(), e.CategoryID)
	ev := amqp.NewChangeEvent(amqp.ExpenseUpdated, periodsOf(old, e)...)
	ev.ExpenseID = e.ID
	t.publish(ctx, ev)
	return e, nil
}

// DeleteExpense removes an expense once confirmed. Without confirmation it
// only reports that confirmation is needed.
func (t *Tracker) DeleteExpense(ctx context.Context, id int64, confirmed bool) (Decision, error) {
	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return Decision{}, err
	}
	idx := indexOfExpense(snap.Expenses, id)
	if idx < 0 {
		t.mu.Unlock()
		return Decision{}, fmt.Errorf("%w: %d", core.ErrExpenseNotFound, id)
	}
	e := snap.Expenses[idx]
	if !confirmed {
		t.mu.Unlock()
		return Decision{
			Outcome:          ConfirmationRequired,
			Message:          fmt.Sprintf("Delete expense %q of %s on %s?", e.Item, e.Amount, e.Date),
			AffectedExpenses: 1,
		}, nil
	}
	snap.Expenses = append(snap.Expenses[:idx], snap.Expenses[idx+1:]...)
	if err := t.save(ctx, snap, storage.KeyExpenses); err != nil {
		t.mu.Unlock()
		return Decision{}, fmt.Errorf("delete expense: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldExpenseID, id)
	ev := amqp.NewChangeEvent(amqp.ExpenseDeleted, periodsOf(e)...)
	ev.ExpenseID = id
	t.publish(ctx, ev)
	return Decision{Outcome: Done, Message: "Expense deleted", AffectedExpenses: 1}, nil
}

func (t *Tracker) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	idx := indexOfExpense(snap.Expenses, id)
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("%w: %d", core.ErrExpenseNotFound, id)
	}
	return snap.Expenses[idx], nil
}

// ListExpenses returns expenses newest first, restricted to period when given.
func (t *Tracker) ListExpenses(ctx context.Context, period *core.Period) ([]core.Expense, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	out := snap.Expenses
	if period != nil {
		out = core.FilterPeriod(out, *period)
	}
	out = append([]core.Expense{}, out...)
	core.SortNewestFirst(out)
	return out, nil
}

// MonthlyExpenses returns the expenses of one month in stored order.
func (t *Tracker) MonthlyExpenses(ctx context.Context, p core.Period) ([]core.Expense, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterPeriod(snap.Expenses, p), nil
}

// Summarize groups the given expenses by their current category.
func (t *Tracker) Summarize(ctx context.Context, expenses []core.Expense) (core.Summary, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(expenses, snap.Categories), nil
}

func indexOfExpense(expenses []core.Expense, id int64) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
