package services

import (
	"context"
	"fmt"
	"slices"

	"spesa/internal/core"
)

// reportKey prefixes key with the store's write version, so a value cached
// before another process wrote to the same database is never served.
// Callers hold t.mu.
func (t *Tracker) reportKey(ctx context.Context, key string) (string, error) {
	v, ok, err := t.records.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("read records version: %w", err)
	}
	if !ok {
		return key, nil
	}
	return fmt.Sprintf("v%d/%s", v, key), nil
}

// MonthlySummary groups one month's expenses by category.
func (t *Tracker) MonthlySummary(ctx context.Context, p core.Period) (core.Summary, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, err := t.reportKey(ctx, p.String())
	if err != nil {
		return core.Summary{}, err
	}
	s, err := t.summaries.Do(key, func() (core.Summary, error) {
		snap, err := t.load(ctx)
		if err != nil {
			return core.Summary{}, err
		}
		return core.Summarize(core.FilterPeriod(snap.Expenses, p), snap.Categories), nil
	})
	return s.Clone(), err
}

// CategoryDetail groups one category's expenses for a month by item.
// Expenses whose category no longer exists count towards the fallback.
func (t *Tracker) CategoryDetail(ctx context.Context, categoryID int64, p core.Period) (core.CategoryDetail, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, err := t.reportKey(ctx, fmt.Sprintf("%s/%d", p, categoryID))
	if err != nil {
		return core.CategoryDetail{}, err
	}
	d, err := t.details.Do(key, func() (core.CategoryDetail, error) {
		snap, err := t.load(ctx)
		if err != nil {
			return core.CategoryDetail{}, err
		}
		cat, ok := snap.Categories.Find(categoryID)
		if !ok {
			return core.CategoryDetail{}, fmt.Errorf("%w: %d", core.ErrCategoryNotFound, categoryID)
		}
		var matched []core.Expense
		for _, e := range core.FilterPeriod(snap.Expenses, p) {
			if snap.Categories.Resolve(e.CategoryID).ID == cat.ID {
				matched = append(matched, e)
			}
		}
		detail := core.CategoryDetail{Category: cat, Period: p, Items: core.GroupByItem(matched)}
		for _, it := range detail.Items {
			detail.Total = detail.Total.Add(it.Total)
		}
		return detail, nil
	})
	return d.Clone(), err
}

// TrailingWindow totals the last n months, current month included, oldest
// first.
func (t *Tracker) TrailingWindow(ctx context.Context, n int) ([]core.MonthTotal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: window of %d months", core.ErrInvalidPeriod, n)
	}
	now := t.now()
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, err := t.reportKey(ctx, fmt.Sprintf("%s/%d", core.PeriodOf(now), n))
	if err != nil {
		return nil, err
	}
	window, err := t.trends.Do(key, func() ([]core.MonthTotal, error) {
		snap, err := t.load(ctx)
		if err != nil {
			return nil, err
		}
		return core.TrailingWindow(snap.Expenses, now, n), nil
	})
	return slices.Clone(window), err
}
