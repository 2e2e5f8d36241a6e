// Package services implements the ledger's derivation engines: balance
// aggregation, billing-cycle arithmetic, obligation forecasting, the
// installment ledger and the budget feasibility check. Everything except
// the installment ledger is a pure function over in-memory collections,
// recomputed in full on every call.
package services

import "ledger/internal/core"

// DefaultReminderWindow is the forward-looking interval, in days, used to
// decide whether an obligation is due soon.
const DefaultReminderWindow = 7

// DaysUntil returns the number of days from today's day-of-month until the
// next occurrence of targetDay, using a fixed 30-day month for wraparound.
// The approximation diverges from true calendar distance near month
// boundaries; it is kept for parity with the historical behavior.
func DaysUntil(today, targetDay int) int {
	if targetDay >= today {
		return targetDay - today
	}
	return (30 - today) + targetDay
}

// IsWithinWindow reports whether targetDay falls within windowDays of
// today. Late in the month (after the 24th) the window is allowed to spill
// into the first days of the next month via a mod-31 rollover.
func IsWithinWindow(today core.Date, targetDay, windowDays int) bool {
	day := today.Day()
	if targetDay >= day && targetDay <= day+windowDays {
		return true
	}
	return day > 24 && targetDay <= (day+windowDays)%31
}
