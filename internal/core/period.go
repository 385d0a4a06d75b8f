package core

import (
	"fmt"
	"strings"
	"time"
)

// PeriodLayout is the YYYY-MM format used by month query parameters.
const PeriodLayout = "2006-01"

// Period identifies one calendar month. Month is 1-based (time.January..time.December).
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewPeriod validates and builds a Period.
func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December || year < 1 {
		return Period{}, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, year, month)
	}
	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(PeriodLayout, strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return PeriodOf(t), nil
}

// Contains reports whether the date falls in this month.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// AddMonths moves the period by n months (negative moves backwards).
func (p Period) AddMonths(n int) Period {
	return PeriodOf(time.Date(p.Year, p.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
