package money

import "testing"

func TestFormatCOP(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "$0"},
		{50, "$50"},
		{999, "$999"},
		{1000, "$1.000"},
		{13500, "$13.500"},
		{450000, "$450.000"},
		{1234567, "$1.234.567"},
		{1541200, "$1.541.200"},
		{100000000, "$100.000.000"},
		{-1500, "-$1.500"},
		{-450000, "-$450.000"},
	}
	for _, tc := range cases {
		if got := FormatCOP(tc.amount); got != tc.want {
			t.Fatalf("FormatCOP(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"450000", 450000},
		{"450,000", 450000},
		{" 13500 ", 13500},
		{"13500.75", 13500},
		{"-2000", -2000},
		{"", 0},
		{"abc", 0},
		{"12x", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.raw); got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
