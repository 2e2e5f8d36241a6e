package core

const (
	ReminderCard      ReminderKind = "card"
	ReminderRecurring ReminderKind = "recurring"
)

const (
	LinePlanned   ForecastLineKind = "planned"
	LineDebt      ForecastLineKind = "debt"
	LineRecurring ForecastLineKind = "recurring"
	LineCard      ForecastLineKind = "credit_card"
)

type (
	ReminderKind string

	ForecastLineKind string

	// BalanceSheet is the point-in-time net-worth snapshot.
	BalanceSheet struct {
		CashPosition       Money
		UnbilledCreditCard Money
		TotalDebtRemaining Money
		FixedAssetsTotal   Money
		NetWorth           Money
	}

	// Reminder is one "due soon" obligation in the weekly list.
	Reminder struct {
		RefID  string
		Label  string
		Amount Money
		Day    int // day of month the payment falls on
		Kind   ReminderKind
	}

	ForecastLine struct {
		Label  string
		Amount Money
		Kind   ForecastLineKind
	}

	// ForecastPeriod is one 7-day window of projected obligations.
	ForecastPeriod struct {
		Index int // 0-based
		Start Date
		End   Date
		Lines []ForecastLine
		Total Money
	}

	// PeriodTotals sums transaction amounts by kind over a closed interval.
	PeriodTotals struct {
		Income  Money
		Expense Money
	}

	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// BudgetVerdict is the binary feasibility signal for the current month.
	BudgetVerdict struct {
		ProjectedIncome  Money
		ProjectedExpense Money
		SafetyMargin     Money
		Remaining        Money
		Balanced         bool
	}

	// DebtStats summarizes the installment ledger for display.
	DebtStats struct {
		TotalRemaining Money
		PendingMonthly Money // monthlies of debts not yet paid this period
		PaidCount      int
	}

	// DayTotals is one point of the recent-activity series.
	DayTotals struct {
		Date    Date
		Income  Money
		Expense Money
	}

	// MonthTotals is one point of the monthly history series.
	MonthTotals struct {
		YearMonth string // YYYY-MM
		Income    Money
		Expense   Money
	}
)
