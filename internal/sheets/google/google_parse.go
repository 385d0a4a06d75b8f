package google

import (
	"fmt"
	"strings"
)

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}

// fromValues converts a Sheets values matrix back to trimmed strings.
// Trailing empty cells are dropped the same way the API drops them.
func fromValues(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = trimTrailing(toStrings(row))
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func trimTrailing(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}

// sameRows compares sheet content ignoring trailing empty cells and rows.
func sameRows(a, b [][]string) bool {
	a, b = trimRows(a), trimRows(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ra, rb := trimTrailing(a[i]), trimTrailing(b[i])
		if len(ra) != len(rb) {
			return false
		}
		for j := range ra {
			if ra[j] != rb[j] {
				return false
			}
		}
	}
	return true
}

func trimRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(trimTrailing(rows[n-1])) == 0 {
		n--
	}
	return rows[:n]
}
