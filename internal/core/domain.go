// Package core holds the expense tracker domain: expenses, categories, the
// item-category map, the classifier and the pure aggregation functions used
// by reports.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// MaxItemLength bounds the free-text item label, in bytes.
const MaxItemLength = 200

type (
	// Date is a calendar date; the time-of-day component is always zero UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID         int64  `json:"id"`
		Date       Date   `json:"date"`
		Amount     Money  `json:"amount"`
		Item       string `json:"item"`
		CategoryID int64  `json:"categoryId"`
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// ItemMap associates a normalized item label with a category ID.
	ItemMap map[string]int64
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyItem        = errors.New("empty item")
	ErrItemTooLong      = errors.New("item too long (max 200 characters)")
	ErrEmptyName        = errors.New("empty category name")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReservedCategory = errors.New("fallback category cannot be deleted")
	ErrInvalidPeriod    = errors.New("invalid period")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Period returns the calendar month containing the date.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if NormalizeItem(e.Item) == "" {
		return ErrEmptyItem
	}
	if len(e.Item) > MaxItemLength {
		return ErrItemTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Clone returns an independent copy of the map.
func (m ItemMap) Clone() ItemMap {
	out := make(ItemMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
