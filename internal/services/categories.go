package services

import (
	"context"
	"fmt"

	"spesa/internal/amqp"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/storage"
)

func (t *Tracker) AddCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: normalizeName(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return core.Category{}, err
	}
	c.ID = t.ids.Next()
	snap.Categories = append(snap.Categories, c)
	if err := t.save(ctx, snap, storage.KeyCategories); err != nil {
		t.mu.Unlock()
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Category created", log.NewFields().
		WithCategory(c.ID, c.Name).WithOperation(log.OpCreate).ToSlice()...)
	ev := amqp.NewChangeEvent(amqp.CategoryCreated)
	ev.CategoryID = c.ID
	t.publish(ctx, ev)
	return c, nil
}

// RenameCategory changes a category's name. Expenses and mappings refer to
// categories by ID, so they show the new name without being rewritten.
func (t *Tracker) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	name = normalizeName(name)
	if err := (core.Category{Name: name}).Validate(); err != nil {
		return core.Category{}, err
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return core.Category{}, err
	}
	idx := indexOfCategory(snap.Categories, id)
	if idx < 0 {
		t.mu.Unlock()
		return core.Category{}, fmt.Errorf("%w: %d", core.ErrCategoryNotFound, id)
	}
	old := snap.Categories[idx].Name
	snap.Categories[idx].Name = name
	renamed := snap.Categories[idx]
	affected := expensesIn(snap.Expenses, id)
	if err := t.save(ctx, snap, storage.KeyCategories); err != nil {
		t.mu.Unlock()
		return core.Category{}, fmt.Errorf("rename category: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Category renamed", log.NewFields().
		WithCategory(id, name).WithOperation(log.OpUpdate).ToSlice()...)
	t.logger.DebugContext(ctx, "Previous category name", "old_name", old)
	ev := amqp.NewChangeEvent(amqp.CategoryRenamed, periodsOf(affected...)...)
	ev.CategoryID = id
	t.publish(ctx, ev)
	return renamed, nil
}

// DeleteCategory removes a category. When expenses reference it
// the caller must confirm; on confirmation they move to the fallback category
// and all three records are written in one batch.
func (t *Tracker) DeleteCategory(ctx context.Context, id int64, confirmed bool) (Decision, error) {
	if id == core.FallbackCategoryID {
		return Decision{}, core.ErrReservedCategory
	}

	t.mu.Lock()
	snap, err := t.load(ctx)
	if err != nil {
		t.mu.Unlock()
		return Decision{}, err
	}
	idx := indexOfCategory(snap.Categories, id)
	if idx < 0 {
		t.mu.Unlock()
		return Decision{}, fmt.Errorf("%w: %d", core.ErrCategoryNotFound, id)
	}
	cat := snap.Categories[idx]
	nExpenses, nMappings := snap.References(id)
	affected := expensesIn(snap.Expenses, id)

	if nExpenses > 0 && !confirmed {
		t.mu.Unlock()
		return Decision{
			Outcome: ConfirmationRequired,
			Message: fmt.Sprintf("Category %q is used in %d expenses. Delete anyway? Items will be moved to %q.",
				cat.Name, nExpenses, snap.Categories.Resolve(core.FallbackCategoryID).Name),
			AffectedExpenses: nExpenses,
			AffectedMappings: nMappings,
		}, nil
	}

	snap.Reassign(id, core.FallbackCategoryID)
	if _, ok := snap.Categories.Find(core.FallbackCategoryID); !ok {
		snap.Categories = append(snap.Categories, core.Fallback())
	}
	snap.Categories = append(snap.Categories[:idx], snap.Categories[idx+1:]...)
	if err := t.save(ctx, snap); err != nil {
		t.mu.Unlock()
		return Decision{}, fmt.Errorf("delete category: %w", err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Category deleted", log.NewFields().
		WithCategory(id, cat.Name).WithOperation(log.OpDelete).ToSlice()...)
	ev := amqp.NewChangeEvent(amqp.CategoryDeleted, periodsOf(affected...)...)
	ev.CategoryID = id
	t.publish(ctx, ev)
	return Decision{
		Outcome:          Done,
		Message:          fmt.Sprintf("Category %q deleted", cat.Name),
		AffectedExpenses: nExpenses,
		AffectedMappings: nMappings,
	}, nil
}

func (t *Tracker) ListCategories(ctx context.Context) (core.Categories, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

func (t *Tracker) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, err := t.load(ctx)
	if err != nil {
		return core.Category{}, err
	}
	c, ok := snap.Categories.Find(id)
	if !ok {
		return core.Category{}, fmt.Errorf("%w: %d", core.ErrCategoryNotFound, id)
	}
	return c, nil
}

func indexOfCategory(cats core.Categories, id int64) int {
	for i, c := range cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func expensesIn(expenses []core.Expense, categoryID int64) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out
}
