package core

import (
	"slices"
	"sort"
	"time"
)

// CategoryTotal aggregates the expenses of one category.
type CategoryTotal struct {
	CategoryID int64     `json:"categoryId"`
	Name       string    `json:"name"`
	Total      Money     `json:"total"`
	Count      int       `json:"count"`
	Expenses   []Expense `json:"items"`
}

// Summary groups expenses by category in order of first encounter.
type Summary struct {
	Categories []CategoryTotal `json:"categories"`
	Total      Money           `json:"total"`
}

// ItemTotal aggregates the expenses of one item within a category.
type ItemTotal struct {
	Item     string    `json:"item"`
	Total    Money     `json:"total"`
	Count    int       `json:"count"`
	Expenses []Expense `json:"expenses"`
}

// CategoryDetail is the per-item drill-down of one category in one month.
type CategoryDetail struct {
	Category Category    `json:"category"`
	Period   Period      `json:"period"`
	Items    []ItemTotal `json:"items"`
	Total    Money       `json:"total"`
}

// MonthTotal is one bucket of a trailing window.
type MonthTotal struct {
	Period Period `json:"period"`
	Total  Money  `json:"total"`
	Count  int    `json:"count"`
}

// FilterPeriod returns the expenses dated inside p, preserving order.
func FilterPeriod(expenses []Expense, p Period) []Expense {
	var out []Expense
	for _, e := range expenses {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize groups expenses by resolved category. Dead category IDs collapse
// into the fallback bucket.
func Summarize(expenses []Expense, cats Categories) Summary {
	var s Summary
	index := map[int64]int{}
	for _, e := range expenses {
		cat := cats.Resolve(e.CategoryID)
		i, ok := index[cat.ID]
		if !ok {
			i = len(s.Categories)
			index[cat.ID] = i
			s.Categories = append(s.Categories, CategoryTotal{CategoryID: cat.ID, Name: cat.Name})
		}
		ct := &s.Categories[i]
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
		ct.Expenses = append(ct.Expenses, e)
		s.Total = s.Total.Add(e.Amount)
	}
	return s
}

// Clone returns a deep copy; cached summaries are handed out as clones.
func (s Summary) Clone() Summary {
	out := Summary{Total: s.Total}
	if s.Categories != nil {
		out.Categories = make([]CategoryTotal, len(s.Categories))
		for i, c := range s.Categories {
			c.Expenses = slices.Clone(c.Expenses)
			out.Categories[i] = c
		}
	}
	return out
}

// Clone returns a deep copy.
func (d CategoryDetail) Clone() CategoryDetail {
	out := d
	if d.Items != nil {
		out.Items = make([]ItemTotal, len(d.Items))
		for i, it := range d.Items {
			it.Expenses = slices.Clone(it.Expenses)
			out.Items[i] = it
		}
	}
	return out
}

// Lookup finds a category bucket by name.
func (s Summary) Lookup(name string) (CategoryTotal, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryTotal{}, false
}

// Sorted returns the buckets ordered by name, then category ID. Names are not
// unique, so buckets sharing a name stay separate.
func (s Summary) Sorted() []CategoryTotal {
	out := slices.Clone(s.Categories)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].CategoryID < out[b].CategoryID
	})
	return out
}

// SortedNames returns the bucket names in display order.
func (s Summary) SortedNames() []string {
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// GroupByItem groups expenses by normalized item label, sorted by item.
func GroupByItem(expenses []Expense) []ItemTotal {
	index := map[string]int{}
	var out []ItemTotal
	for _, e := range expenses {
		key := NormalizeItem(e.Item)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, ItemTotal{Item: key})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
		out[i].Expenses = append(out[i].Expenses, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Item < out[b].Item })
	return out
}

// TrailingWindow totals each of the last n months up to and including the
// month of now, oldest first. Every bucket is computed from the full list.
func TrailingWindow(expenses []Expense, now time.Time, n int) []MonthTotal {
	if n <= 0 {
		return nil
	}
	current := PeriodOf(now)
	out := make([]MonthTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := current.AddMonths(-i)
		bucket := MonthTotal{Period: p}
		for _, e := range FilterPeriod(expenses, p) {
			bucket.Total = bucket.Total.Add(e.Amount)
			bucket.Count++
		}
		out = append(out, bucket)
	}
	return out
}

// SortNewestFirst orders expenses by date descending, newer IDs first on ties.
func SortNewestFirst(expenses []Expense) {
	sort.SliceStable(expenses, func(a, b int) bool {
		if !expenses[a].Date.Equal(expenses[b].Date.Time) {
			return expenses[a].Date.After(expenses[b].Date.Time)
		}
		return expenses[a].ID > expenses[b].ID
	})
}
