package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
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
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"1234567.89", 123456789, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		1234:   "12.34",
		100000: "1000.00",
		-250:   "-2.50",
	}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Errorf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	tests := []struct {
		cents int64
		pct   int
		want  int64
	}{
		{100000, 10, 10000},
		{12345, 10, 1235},
		{999, 50, 500},
		{0, 20, 0},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Percent(tt.pct); got.Cents != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.cents, tt.pct, got.Cents, tt.want)
		}
	}
}
