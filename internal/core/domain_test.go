package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-15 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Period() != (Period{Year: 2024, Month: time.March}) {
		t.Fatalf("unexpected period %v", d.Period())
	}
	if _, err := ParseDate("15/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero should be accepted, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:   NewDate(2025, 1, 1),
		Amount: Money{Cents: 100},
		Item:   "bread",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Amount: Money{Cents: 1}, Item: "a"}, // zero date
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: -1}, Item: "a"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Item: "   "},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Item: strings.Repeat("x", 201)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseJSON(t *testing.T) {
	e := Expense{ID: 7, Date: NewDate(2024, 3, 15), Amount: Money{Cents: 12050}, Item: "chicken", CategoryID: 1}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"date":"2024-03-15","amount":120.5,"item":"chicken","categoryId":1}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var back Expense
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != e.ID || !back.Date.Equal(e.Date.Time) || back.Amount != e.Amount || back.Item != e.Item || back.CategoryID != e.CategoryID {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: " \t"}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{Name: "Snacks"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestPeriod(t *testing.T) {
	p, err := ParsePeriod("2024-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.AddMonths(-1).String(); got != "2023-12" {
		t.Fatalf("AddMonths(-1) = %s", got)
	}
	if got := p.AddMonths(13).String(); got != "2025-02" {
		t.Fatalf("AddMonths(13) = %s", got)
	}
	if !p.Contains(NewDate(2024, 1, 31)) || p.Contains(NewDate(2023, 1, 31)) {
		t.Fatalf("Contains mismatch")
	}
	if _, err := NewPeriod(2024, 13); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := ParsePeriod("2024-1x"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestIDSourceMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	ids := NewIDSource(func() time.Time { return fixed })
	a, b := ids.Next(), ids.Next()
	if a != fixed.UnixMilli() || b != a+1 {
		t.Fatalf("expected %d then %d, got %d and %d", fixed.UnixMilli(), fixed.UnixMilli()+1, a, b)
	}

	ids.Observe(fixed.UnixMilli() + 100)
	if c := ids.Next(); c != fixed.UnixMilli()+101 {
		t.Fatalf("expected id past observed, got %d", c)
	}
}
