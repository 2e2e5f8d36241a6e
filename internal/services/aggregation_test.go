package services

import (
	"testing"

	"ledger/internal/core"
)

func cash(cents int64) core.Money { return core.Money{Cents: cents} }

func sampleInitial() core.InitialPosition {
	return core.InitialPosition{
		StartingCash:        cash(1000000), // 10000.00
		StartingLiabilities: cash(200000),  // 2000.00
		FixedAssets: []core.FixedAsset{
			{ID: "a1", Name: "Car", Value: cash(500000)}, // 5000.00
		},
	}
}

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "t1", Amount: cash(300000), Kind: core.Income, Category: "Salary", Date: core.NewDate(2025, 3, 1), Method: core.Cash},
		{ID: "t2", Amount: cash(100000), Kind: core.Expense, Category: "Food", Date: core.NewDate(2025, 3, 2), Method: core.Cash},
		{ID: "t3", Amount: cash(50000), Kind: core.Expense, Category: "Shopping", Date: core.NewDate(2025, 3, 3), Method: core.CreditCard, CardID: "card-1"},
	}
}

func TestNetWorthComposition(t *testing.T) {
	txs := sampleTransactions()
	initial := sampleInitial()

	if got := CashPosition(txs, initial); got.Cents != 1200000 {
		t.Fatalf("cash position: expected 1200000, got %d", got.Cents)
	}
	if got := UnbilledCreditCardTotal(txs); got.Cents != 50000 {
		t.Fatalf("unbilled: expected 50000, got %d", got.Cents)
	}
	// (12000 + 5000) - (2000 + 500 + 0) = 14500
	if got := NetWorth(txs, nil, initial); got.Cents != 1450000 {
		t.Fatalf("net worth: expected 1450000, got %d", got.Cents)
	}
}

func TestAggregationIdempotence(t *testing.T) {
	txs := sampleTransactions()
	initial := sampleInitial()
	first := Snapshot(txs, nil, initial)
	for i := 0; i < 3; i++ {
		if got := Snapshot(txs, nil, initial); got != first {
			t.Fatalf("call %d: snapshot changed between calls: %+v vs %+v", i, got, first)
		}
	}
}

func TestCashPositionIgnoresCardExpenses(t *testing.T) {
	txs := []core.Transaction{
		{Amount: cash(500), Kind: core.Expense, Method: core.CreditCard, CardID: "c"},
	}
	if got := CashPosition(txs, core.InitialPosition{}); got.Cents != 0 {
		t.Fatalf("card expense must not reduce cash, got %d", got.Cents)
	}
}

func TestCardBalance(t *testing.T) {
	txs := sampleTransactions()
	if got := CardBalance(txs, "card-1"); got.Cents != 50000 {
		t.Fatalf("expected 50000 for card-1, got %d", got.Cents)
	}
	if got := CardBalance(txs, "card-2"); got.Cents != 0 {
		t.Fatalf("expected 0 for unknown card, got %d", got.Cents)
	}
}

func TestExpenseByCategory(t *testing.T) {
	txs := append(sampleTransactions(),
		core.Transaction{ID: "t4", Amount: cash(25000), Kind: core.Expense, Category: "Food", Date: core.NewDate(2025, 3, 4), Method: core.Cash},
	)
	got := ExpenseByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].Name != "Food" || got[0].Amount.Cents != 125000 {
		t.Fatalf("unexpected first category: %+v", got[0])
	}
	if got[1].Name != "Shopping" || got[1].Amount.Cents != 50000 {
		t.Fatalf("unexpected second category: %+v", got[1])
	}
}

// The categorized expense total must equal the period expense total over
// the same transaction set.
func TestCategorySumMatchesPeriodExpense(t *testing.T) {
	txs := sampleTransactions()
	var byCat int64
	for _, c := range ExpenseByCategory(txs) {
		byCat += c.Amount.Cents
	}
	totals := PeriodTotals(txs, core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31))
	if byCat != totals.Expense.Cents {
		t.Fatalf("category sum %d != period expense %d", byCat, totals.Expense.Cents)
	}
}

func TestPeriodTotalsClosedInterval(t *testing.T) {
	txs := sampleTransactions()
	totals := PeriodTotals(txs, core.NewDate(2025, 3, 2), core.NewDate(2025, 3, 3))
	if totals.Income.Cents != 0 {
		t.Fatalf("expected no income in window, got %d", totals.Income.Cents)
	}
	if totals.Expense.Cents != 150000 {
		t.Fatalf("expected 150000 expense (both endpoints included), got %d", totals.Expense.Cents)
	}
}

func TestMonthTotals(t *testing.T) {
	txs := append(sampleTransactions(),
		core.Transaction{ID: "t5", Amount: cash(999), Kind: core.Expense, Category: "Food", Date: core.NewDate(2025, 2, 28), Method: core.Cash},
	)
	totals := MonthTotals(txs, core.NewDate(2025, 3, 15))
	if totals.Income.Cents != 300000 || totals.Expense.Cents != 150000 {
		t.Fatalf("unexpected month totals: %+v", totals)
	}
}

func TestDailySeries(t *testing.T) {
	today := core.NewDate(2025, 3, 3)
	series := DailySeries(sampleTransactions(), today, 7)
	if len(series) != 7 {
		t.Fatalf("expected 7 points, got %d", len(series))
	}
	if series[6].Date.ISO() != "2025-03-03" || series[6].Expense.Cents != 50000 {
		t.Fatalf("unexpected last point: %+v", series[6])
	}
	if series[4].Income.Cents != 300000 {
		t.Fatalf("expected income on 2025-03-01, got %+v", series[4])
	}
}

func TestMonthlySeries(t *testing.T) {
	txs := append(sampleTransactions(),
		core.Transaction{ID: "t6", Amount: cash(777), Kind: core.Income, Category: "Salary", Date: core.NewDate(2025, 1, 15), Method: core.Cash},
	)
	series := MonthlySeries(txs, core.NewDate(2025, 3, 31), 6)
	if len(series) != 6 {
		t.Fatalf("expected 6 points, got %d", len(series))
	}
	if series[5].YearMonth != "2025-03" || series[5].Income.Cents != 300000 {
		t.Fatalf("unexpected current month point: %+v", series[5])
	}
	if series[3].YearMonth != "2025-01" || series[3].Income.Cents != 777 {
		t.Fatalf("unexpected january point: %+v", series[3])
	}
}

// Degenerate input must flow through, not crash.
func TestAggregationPropagatesNegativeAmounts(t *testing.T) {
	txs := []core.Transaction{
		{Amount: cash(-100), Kind: core.Expense, Category: "x", Date: core.NewDate(2025, 1, 1), Method: core.Cash},
	}
	if got := CashPosition(txs, core.InitialPosition{}); got.Cents != 100 {
		t.Fatalf("expected degenerate +100, got %d", got.Cents)
	}
}
