package services

import (
	"testing"

	"ledger/internal/core"
)

func TestDaysUntil(t *testing.T) {
	cases := []struct {
		today, target, want int
	}{
		{28, 5, 7}, // wraps: (30-28)+5
		{10, 20, 10},
		{15, 15, 0},
		{1, 31, 30},
		{30, 1, 1},
	}
	for _, tc := range cases {
		if got := DaysUntil(tc.today, tc.target); got != tc.want {
			t.Fatalf("DaysUntil(%d, %d): expected %d, got %d", tc.today, tc.target, tc.want, got)
		}
	}
}

func TestIsWithinWindow(t *testing.T) {
	cases := []struct {
		name   string
		today  core.Date
		target int
		want   bool
	}{
		{"same day", core.NewDate(2025, 3, 10), 10, true},
		{"window edge", core.NewDate(2025, 3, 10), 17, true},
		{"past window", core.NewDate(2025, 3, 10), 18, false},
		{"before today", core.NewDate(2025, 3, 10), 9, false},
		{"rollover hit", core.NewDate(2025, 3, 26), 2, true},   // 26 > 24 and 2 <= (26+7)%31
		{"rollover miss", core.NewDate(2025, 3, 26), 15, false},
		{"rollover edge", core.NewDate(2025, 3, 26), 3, false}, // 3 > (26+7)%31 = 2
		{"late month direct", core.NewDate(2025, 3, 26), 30, true},
	}
	for _, tc := range cases {
		if got := IsWithinWindow(tc.today, tc.target, DefaultReminderWindow); got != tc.want {
			t.Fatalf("%s: IsWithinWindow(%s, %d) = %v, expected %v", tc.name, tc.today.ISO(), tc.target, got, tc.want)
		}
	}
}

func TestDaysUntilNeverNegative(t *testing.T) {
	for today := 1; today <= 31; today++ {
		for target := 1; target <= 31; target++ {
			if got := DaysUntil(today, target); got < 0 {
				t.Fatalf("DaysUntil(%d, %d) = %d, must be >= 0", today, target, got)
			}
		}
	}
}
