// Package sheets renders tracker months as spreadsheet tabs.
package sheets

import (
	"context"
	"sort"
	"strconv"

	"spesa/internal/core"
)

// Ports for outbound adapters.
type (
	// MonthExporter replaces the tab of one month with the given rows.
	MonthExporter interface {
		ExportMonth(ctx context.Context, sheet MonthSheet) error
	}
)

// MonthSheet is the content of one YYYY-MM tab.
type MonthSheet struct {
	Period core.Period
	Rows   [][]string
}

// Title is the tab name.
func (s MonthSheet) Title() string {
	return s.Period.String()
}

var (
	expenseHeader = []string{"Date", "Item", "Category", "Amount"}
	summaryHeader = []string{"Category", "Count", "Total"}
)

// BuildMonthSheet lays out a month: one row per expense in date order, a
// blank row, then per-category totals sorted by name and a grand total.
func BuildMonthSheet(p core.Period, expenses []core.Expense, cats core.Categories) MonthSheet {
	month := append([]core.Expense{}, core.FilterPeriod(expenses, p)...)
	sort.SliceStable(month, func(i, j int) bool {
		if !month[i].Date.Equal(month[j].Date.Time) {
			return month[i].Date.Before(month[j].Date.Time)
		}
		return month[i].ID < month[j].ID
	})

	rows := [][]string{expenseHeader}
	for _, e := range month {
		rows = append(rows, []string{
			e.Date.String(),
			e.Item,
			cats.Resolve(e.CategoryID).Name,
			e.Amount.String(),
		})
	}

	summary := core.Summarize(month, cats)
	rows = append(rows, []string{}, summaryHeader)
	for _, ct := range summary.Sorted() {
		rows = append(rows, []string{ct.Name, strconv.Itoa(ct.Count), ct.Total.String()})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(len(month)), summary.Total.String()})
	return MonthSheet{Period: p, Rows: rows}
}
