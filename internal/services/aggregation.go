package services

import "ledger/internal/core"

// CashPosition returns the starting cash balance plus all income minus all
// cash expenses. Credit-card expenses do not reduce cash until the card is
// paid; they accumulate as unbilled liability instead.
func CashPosition(txs []core.Transaction, initial core.InitialPosition) core.Money {
	total := initial.StartingCash
	for _, t := range txs {
		switch {
		case t.Kind == core.Income:
			total = total.Add(t.Amount)
		case t.Method == core.Cash:
			total = total.Sub(t.Amount)
		}
	}
	return total
}

// UnbilledCreditCardTotal sums every credit-card expense ever recorded.
// This is a lifetime running total, not a per-cycle one.
func UnbilledCreditCardTotal(txs []core.Transaction) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.Kind == core.Expense && t.Method == core.CreditCard {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CardBalance sums the transactions charged to one card, lifetime.
func CardBalance(txs []core.Transaction, cardID string) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.Method == core.CreditCard && t.CardID == cardID {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// FixedAssetsTotal sums the declared fixed asset values.
func FixedAssetsTotal(initial core.InitialPosition) core.Money {
	var total core.Money
	for _, a := range initial.FixedAssets {
		total = total.Add(a.Value)
	}
	return total
}

// TotalDebtRemaining sums the outstanding balance across installment debts.
func TotalDebtRemaining(debts []core.InstallmentDebt) core.Money {
	var total core.Money
	for _, d := range debts {
		total = total.Add(d.Remaining)
	}
	return total
}

// NetWorth is (cash + fixed assets) minus (starting liabilities + unbilled
// credit-card total + outstanding debt).
func NetWorth(txs []core.Transaction, debts []core.InstallmentDebt, initial core.InitialPosition) core.Money {
	assets := CashPosition(txs, initial).Add(FixedAssetsTotal(initial))
	liabilities := initial.StartingLiabilities.
		Add(UnbilledCreditCardTotal(txs)).
		Add(TotalDebtRemaining(debts))
	return assets.Sub(liabilities)
}

// Snapshot assembles the full balance-sheet view in one pass over the
// inputs.
func Snapshot(txs []core.Transaction, debts []core.InstallmentDebt, initial core.InitialPosition) core.BalanceSheet {
	return core.BalanceSheet{
		CashPosition:       CashPosition(txs, initial),
		UnbilledCreditCard: UnbilledCreditCardTotal(txs),
		TotalDebtRemaining: TotalDebtRemaining(debts),
		FixedAssetsTotal:   FixedAssetsTotal(initial),
		NetWorth:           NetWorth(txs, debts, initial),
	}
}

// ExpenseByCategory groups expense amounts by category label, in order of
// first appearance.
func ExpenseByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		if i, ok := index[t.Category]; ok {
			out[i].Amount = out[i].Amount.Add(t.Amount)
			continue
		}
		index[t.Category] = len(out)
		out = append(out, core.CategoryAmount{Name: t.Category, Amount: t.Amount})
	}
	return out
}

// PeriodTotals sums amounts by kind for transactions whose date falls in
// the closed interval [start, end]. Dates compare as ISO strings.
func PeriodTotals(txs []core.Transaction, start, end core.Date) core.PeriodTotals {
	lo, hi := start.ISO(), end.ISO()
	var totals core.PeriodTotals
	for _, t := range txs {
		iso := t.Date.ISO()
		if iso < lo || iso > hi {
			continue
		}
		if t.Kind == core.Income {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}

// MonthTotals sums amounts by kind for the month containing today.
func MonthTotals(txs []core.Transaction, today core.Date) core.PeriodTotals {
	ym := today.YearMonth()
	var totals core.PeriodTotals
	for _, t := range txs {
		if t.Date.YearMonth() != ym {
			continue
		}
		if t.Kind == core.Income {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}

// DailySeries returns per-day income/expense totals for the `days` days
// ending at today, oldest first.
func DailySeries(txs []core.Transaction, today core.Date, days int) []core.DayTotals {
	out := make([]core.DayTotals, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		point := core.DayTotals{Date: d}
		iso := d.ISO()
		for _, t := range txs {
			if t.Date.ISO() != iso {
				continue
			}
			if t.Kind == core.Income {
				point.Income = point.Income.Add(t.Amount)
			} else {
				point.Expense = point.Expense.Add(t.Amount)
			}
		}
		out = append(out, point)
	}
	return out
}

// MonthlySeries returns per-month income/expense totals for the `months`
// months ending at today's month, oldest first.
func MonthlySeries(txs []core.Transaction, today core.Date, months int) []core.MonthTotals {
	out := make([]core.MonthTotals, 0, months)
	for i := months - 1; i >= 0; i-- {
		// Anchor on the first of the month so short months normalize cleanly.
		m := core.NewDate(today.Year(), int(today.Month())-i, 1)
		ym := m.YearMonth()
		point := core.MonthTotals{YearMonth: ym}
		for _, t := range txs {
			if t.Date.YearMonth() != ym {
				continue
			}
			if t.Kind == core.Income {
				point.Income = point.Income.Add(t.Amount)
			} else {
				point.Expense = point.Expense.Add(t.Amount)
			}
		}
		out = append(out, point)
	}
	return out
}
