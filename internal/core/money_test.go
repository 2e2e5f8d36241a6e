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
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
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
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	cases := []struct {
		cents int64
		p     int64
		want  int64
	}{
		{5000000, 10, 500000},
		{100, 10, 10},
		{105, 10, 11}, // half-up
		{0, 10, 0},
		{-100, 10, -10},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Percent(tc.p); got.Cents != tc.want {
			t.Fatalf("%d%% of %d: expected %d, got %d", tc.p, tc.cents, tc.want, got.Cents)
		}
	}
}

func TestMoneyDivRound(t *testing.T) {
	cases := []struct {
		cents int64
		n     int64
		want  int64
	}{
		{1200000, 12, 100000},
		{1000000, 3, 333333},
		{1000001, 3, 333334}, // rounds up
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).DivRound(tc.n); got.Cents != tc.want {
			t.Fatalf("%d / %d: expected %d, got %d", tc.cents, tc.n, tc.want, got.Cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 123456}).String(); got != "1234.56" {
		t.Fatalf("expected 1234.56, got %s", got)
	}
	if got := (Money{Cents: -5}).String(); got != "-0.05" {
		t.Fatalf("expected -0.05, got %s", got)
	}
}
