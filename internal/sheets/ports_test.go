package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesa/internal/core"
)

func TestBuildMonthSheet(t *testing.T) {
	cats := core.DefaultCategories()
	p := core.Period{Year: 2024, Month: time.March}
	expenses := []core.Expense{
		{ID: 3, Date: core.NewDate(2024, 3, 20), Amount: core.Money{Cents: 250}, Item: "milk", CategoryID: 5},
		{ID: 1, Date: core.NewDate(2024, 3, 2), Amount: core.Money{Cents: 12050}, Item: "chicken", CategoryID: 1},
		{ID: 2, Date: core.NewDate(2024, 2, 2), Amount: core.Money{Cents: 999}, Item: "rice", CategoryID: 4},
		{ID: 4, Date: core.NewDate(2024, 3, 21), Amount: core.Money{Cents: 100}, Item: "gum", CategoryID: 77},
	}

	s := BuildMonthSheet(p, expenses, cats)
	assert.Equal(t, "2024-03", s.Title())

	want := [][]string{
		{"Date", "Item", "Category", "Amount"},
		{"2024-03-02", "chicken", "Protein", "120.50"},
		{"2024-03-20", "milk", "Dairy", "2.50"},
		{"2024-03-21", "gum", "Other", "1.00"},
		{},
		{"Category", "Count", "Total"},
		{"Dairy", "1", "2.50"},
		{"Other", "1", "1.00"},
		{"Protein", "1", "120.50"},
		{"Total", "3", "124.00"},
	}
	require.Len(t, s.Rows, len(want))
	for i := range want {
		assert.Equal(t, want[i], s.Rows[i], "row %d", i)
	}
}

func TestBuildMonthSheetEmpty(t *testing.T) {
	s := BuildMonthSheet(core.Period{Year: 2024, Month: time.May}, nil, core.DefaultCategories())
	assert.Equal(t, []string{"Total", "0", "0.00"}, s.Rows[len(s.Rows)-1])
}

func TestBuildMonthSheetKeepsSameNamedCategories(t *testing.T) {
	cats := core.Categories{{ID: 2, Name: "Dairy"}, {ID: 1, Name: "Dairy"}, core.Fallback()}
	p := core.Period{Year: 2024, Month: time.March}
	expenses := []core.Expense{
		{ID: 1, Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 900}, Item: "cheese", CategoryID: 2},
		{ID: 2, Date: core.NewDate(2024, 3, 2), Amount: core.Money{Cents: 100}, Item: "milk", CategoryID: 1},
	}

	s := BuildMonthSheet(p, expenses, cats)
	assert.Equal(t, [][]string{
		{"Dairy", "1", "1.00"},
		{"Dairy", "1", "9.00"},
		{"Total", "2", "10.00"},
	}, s.Rows[len(s.Rows)-3:])
}
