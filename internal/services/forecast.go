package services

import (
	"fmt"
	"sort"

	"ledger/internal/core"
)

// ForecastPeriods is the number of 7-day windows projected ahead.
const ForecastPeriods = 8

// WeeklyReminders builds the "due this week" list: per-card balances whose
// payment day falls within the reminder window, plus recurring expenses
// whose day of month does. The result is sorted ascending by day.
func WeeklyReminders(today core.Date, txs []core.Transaction, cards []core.Card, recurring []core.RecurringExpense) []core.Reminder {
	var reminders []core.Reminder

	for _, card := range cards {
		balance := CardBalance(txs, card.ID)
		if balance.Cents <= 0 {
			continue
		}
		if IsWithinWindow(today, card.PaymentDay, DefaultReminderWindow) {
			reminders = append(reminders, core.Reminder{
				RefID:  card.ID,
				Label:  card.Name,
				Amount: balance,
				Day:    card.PaymentDay,
				Kind:   core.ReminderCard,
			})
		}
	}

	for _, rec := range recurring {
		if IsWithinWindow(today, rec.DayOfMonth, DefaultReminderWindow) {
			reminders = append(reminders, core.Reminder{
				RefID:  rec.ID,
				Label:  rec.Label,
				Amount: rec.Amount,
				Day:    rec.DayOfMonth,
				Kind:   core.ReminderRecurring,
			})
		}
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].Day < reminders[j].Day
	})
	return reminders
}

// ReminderTotal sums the amounts of a reminder list.
func ReminderTotal(reminders []core.Reminder) core.Money {
	var total core.Money
	for _, r := range reminders {
		total = total.Add(r.Amount)
	}
	return total
}

// Forecast projects obligations over `periods` consecutive 7-day windows
// starting at today. Within each window it accumulates, in order: cash
// budget items by actual date, installment debts and cash recurring
// expenses by per-day due-day matching, card-paid recurring expenses and
// existing card balances mapped onto the card's payment day. A window that
// spans a month boundary can match the same due day twice; that is
// accepted, not deduplicated.
func Forecast(today core.Date, items []core.BudgetItem, debts []core.InstallmentDebt, recurring []core.RecurringExpense, cards []core.Card, txs []core.Transaction, periods int) []core.ForecastPeriod {
	cardByID := make(map[string]core.Card, len(cards))
	for _, c := range cards {
		cardByID[c.ID] = c
	}

	out := make([]core.ForecastPeriod, 0, periods)
	for i := 0; i < periods; i++ {
		start := today.AddDays(i * 7)
		end := start.AddDays(6)
		period := core.ForecastPeriod{Index: i, Start: start, End: end}

		add := func(label string, amount core.Money, kind core.ForecastLineKind) {
			period.Lines = append(period.Lines, core.ForecastLine{Label: label, Amount: amount, Kind: kind})
			period.Total = period.Total.Add(amount)
		}

		lo, hi := start.ISO(), end.ISO()
		for _, it := range items {
			if it.Kind != core.Expense || it.Method != core.Cash {
				continue
			}
			if iso := it.Date.ISO(); iso >= lo && iso <= hi {
				add(it.Label, it.Amount, core.LinePlanned)
			}
		}

		for _, d := range debts {
			forEachMatchingDay(start, end, d.DueDay, func() {
				add(fmt.Sprintf("%s (installment)", d.Label), d.Monthly, core.LineDebt)
			})
		}

		for _, rec := range recurring {
			if rec.Method == core.Cash {
				forEachMatchingDay(start, end, rec.DayOfMonth, func() {
					add(fmt.Sprintf("%s (recurring)", rec.Label), rec.Amount, core.LineRecurring)
				})
				continue
			}
			// Card-paid recurring items are projected onto the card's
			// payment day, not their own nominal day.
			card, ok := cardByID[rec.CardID]
			if !ok {
				continue
			}
			forEachMatchingDay(start, end, card.PaymentDay, func() {
				add(fmt.Sprintf("%s (card due)", rec.Label), rec.Amount, core.LineCard)
			})
		}

		for _, c := range cards {
			balance := CardBalance(txs, c.ID)
			if balance.Cents <= 0 {
				continue
			}
			forEachMatchingDay(start, end, c.PaymentDay, func() {
				add(fmt.Sprintf("%s (card bill)", c.Name), balance, core.LineCard)
			})
		}

		out = append(out, period)
	}
	return out
}

// forEachMatchingDay invokes fn once for every calendar day in [start, end]
// whose day-of-month equals targetDay.
func forEachMatchingDay(start, end core.Date, targetDay int, fn func()) {
	hi := end.ISO()
	for d := start; d.ISO() <= hi; d = d.AddDays(1) {
		if d.Day() == targetDay {
			fn()
		}
	}
}
