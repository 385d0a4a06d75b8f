package core

// Snapshot is the full tracker state as held by the three persisted records.
type Snapshot struct {
	Expenses   []Expense  `json:"expenses"`
	Categories Categories `json:"categories"`
	Items      ItemMap    `json:"itemCategoryMap"`
}

// MaxID returns the largest expense or category ID in the snapshot.
func (s Snapshot) MaxID() int64 {
	var max int64
	for _, e := range s.Expenses {
		if e.ID > max {
			max = e.ID
		}
	}
	for _, c := range s.Categories {
		if c.ID > max {
			max = c.ID
		}
	}
	return max
}

// References counts the expenses and item mappings pointing at a category.
func (s Snapshot) References(categoryID int64) (expenses, mappings int) {
	for _, e := range s.Expenses {
		if e.CategoryID == categoryID {
			expenses++
		}
	}
	for _, id := range s.Items {
		if id == categoryID {
			mappings++
		}
	}
	return expenses, mappings
}

// Reassign points every expense and mapping on from at to instead.
func (s *Snapshot) Reassign(from, to int64) {
	for i := range s.Expenses {
		if s.Expenses[i].CategoryID == from {
			s.Expenses[i].CategoryID = to
		}
	}
	for k, id := range s.Items {
		if id == from {
			s.Items[k] = to
		}
	}
}
