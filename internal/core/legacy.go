package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LegacyExpense is an expense as exported by the browser tracker, where the
// category is referenced by name.
type LegacyExpense struct {
	ID       int64           `json:"id"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Item     string          `json:"item"`
	Category string          `json:"category"`
}

// LegacySnapshot is the three name-based records of the browser tracker.
type LegacySnapshot struct {
	Expenses   []LegacyExpense   `json:"expenses"`
	Categories []Category        `json:"categories"`
	Items      map[string]string `json:"itemCategoryMap"`
}

// Convert rewrites category names to IDs. Names resolve to the first category
// with an exact match; unknown names fall back. When the legacy list has no
// category with the fallback ID, its first "Other" takes that ID, and failing
// that the fallback category is added.
func (l LegacySnapshot) Convert() (Snapshot, error) {
	cats := make(Categories, 0, len(l.Categories)+1)
	cats = append(cats, l.Categories...)
	if _, ok := cats.Find(FallbackCategoryID); !ok {
		adopted := false
		for i := range cats {
			if cats[i].Name == FallbackCategoryName {
				cats[i].ID = FallbackCategoryID
				adopted = true
				break
			}
		}
		if !adopted {
			cats = append(cats, Fallback())
		}
	}

	resolve := func(name string) int64 {
		if c, ok := cats.FirstByName(name); ok {
			return c.ID
		}
		return FallbackCategoryID
	}

	out := Snapshot{
		Expenses:   make([]Expense, 0, len(l.Expenses)),
		Categories: cats,
		Items:      make(ItemMap, len(l.Items)),
	}
	for _, le := range l.Expenses {
		date, err := ParseDate(le.Date)
		if err != nil {
			return Snapshot{}, fmt.Errorf("expense %d: %w", le.ID, err)
		}
		amount, err := moneyFromDecimal(le.Amount)
		if err != nil {
			return Snapshot{}, fmt.Errorf("expense %d: %w", le.ID, err)
		}
		out.Expenses = append(out.Expenses, Expense{
			ID:         le.ID,
			Date:       date,
			Amount:     amount,
			Item:       le.Item,
			CategoryID: resolve(le.Category),
		})
	}
	for item, name := range l.Items {
		key := NormalizeItem(item)
		if key == "" {
			continue
		}
		out.Items[key] = resolve(name)
	}
	return out, nil
}
