package services

import "ledger/internal/core"

// SafetyMarginPercent is the share of projected income withheld from the
// available calculation as a conservative buffer.
const SafetyMarginPercent = 10

// EvaluateBudget compares projected obligations against projected income
// for the current month and returns a strictly binary verdict.
//
// Projected income is the month's actual income plus planned income items.
// Projected expense stacks the month's actual expenses, planned expense
// items, every recurring expense, the monthly amounts of debts not yet
// paid this period, and the lifetime unbilled credit-card total.
func EvaluateBudget(monthActuals core.PeriodTotals, items []core.BudgetItem, recurring []core.RecurringExpense, debts []core.InstallmentDebt, unbilled core.Money) core.BudgetVerdict {
	var plannedIncome, plannedExpense core.Money
	for _, it := range items {
		if it.Kind == core.Income {
			plannedIncome = plannedIncome.Add(it.Amount)
		} else {
			plannedExpense = plannedExpense.Add(it.Amount)
		}
	}

	var recurringTotal core.Money
	for _, r := range recurring {
		recurringTotal = recurringTotal.Add(r.Amount)
	}

	var pendingDebt core.Money
	for _, d := range debts {
		if !d.PaidThisPeriod {
			pendingDebt = pendingDebt.Add(d.Monthly)
		}
	}

	income := monthActuals.Income.Add(plannedIncome)
	expense := monthActuals.Expense.
		Add(plannedExpense).
		Add(recurringTotal).
		Add(pendingDebt).
		Add(unbilled)
	margin := income.Percent(SafetyMarginPercent)
	remaining := income.Sub(expense).Sub(margin)

	return core.BudgetVerdict{
		ProjectedIncome:  income,
		ProjectedExpense: expense,
		SafetyMargin:     margin,
		Remaining:        remaining,
		Balanced:         remaining.Cents >= 0,
	}
}
