package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"120.50", 12050, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		12050: "120.50",
		100:   "1.00",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d: got %s, want %s", cents, got, want)
		}
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`12.5`), &m); err != nil || m.Cents != 1250 {
		t.Fatalf("number: got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"3,20"`), &m); err == nil {
		t.Fatalf("comma inside JSON string should be rejected")
	}
	if err := json.Unmarshal([]byte(`"3.20"`), &m); err != nil || m.Cents != 320 {
		t.Fatalf("string: got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`-1`), &m); err == nil {
		t.Fatalf("negative should be rejected")
	}
}
