package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ledger/internal/core"
	"ledger/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tx := core.Transaction{
		ID:       "t1",
		Amount:   core.Money{Cents: 12345},
		Kind:     core.Expense,
		Category: "Food",
		Note:     "lunch",
		Date:     core.NewDate(2025, 3, 10),
		Method:   core.CreditCard,
		CardID:   "c1",
	}
	if err := repo.AppendTransaction(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 || txs[0] != tx {
		t.Fatalf("round trip mismatch: %+v", txs)
	}

	if err := repo.DeleteTransaction(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsOrderedByDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	dates := []core.Date{
		core.NewDate(2025, 3, 20),
		core.NewDate(2025, 1, 5),
		core.NewDate(2025, 2, 28),
	}
	for i, d := range dates {
		tx := core.Transaction{
			ID:       string(rune('a' + i)),
			Amount:   core.Money{Cents: 100},
			Kind:     core.Expense,
			Category: "x",
			Date:     d,
			Method:   core.Cash,
		}
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	txs, _ := repo.ListTransactions(ctx)
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i-1].Date.ISO() > txs[i].Date.ISO() {
			t.Fatalf("transactions not ordered by date: %s > %s", txs[i-1].Date.ISO(), txs[i].Date.ISO())
		}
	}
}

func TestCardUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	c := core.Card{ID: "c1", Name: "Visa", ClosingDay: 20, PaymentDay: 5, Color: "#00f"}
	if err := repo.PutCard(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.PaymentDay = 7
	if err := repo.PutCard(ctx, c); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cards, _ := repo.ListCards(ctx)
	if len(cards) != 1 || cards[0].PaymentDay != 7 {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestDebtRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	d := core.InstallmentDebt{
		ID:               "d1",
		Label:            "Car loan",
		TotalPrincipal:   core.Money{Cents: 1200000},
		Remaining:        core.Money{Cents: 1100000},
		InstallmentCount: 12,
		InstallmentsPaid: 1,
		Monthly:          core.Money{Cents: 100000},
		DueDay:           5,
		PaidThisPeriod:   true,
	}
	if err := repo.PutDebt(ctx, d); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.GetDebt(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != d {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, d)
	}

	d.PaidThisPeriod = false
	if err := repo.UpdateDebt(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetDebt(ctx, "d1")
	if got.PaidThisPeriod {
		t.Fatal("paid flag not cleared")
	}

	if _, err := repo.GetDebt(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateDebt(ctx, core.InstallmentDebt{ID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestApplyDebtPayment(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	d := core.InstallmentDebt{
		ID:               "d1",
		Label:            "Loan",
		TotalPrincipal:   core.Money{Cents: 60000},
		Remaining:        core.Money{Cents: 60000},
		InstallmentCount: 6,
		Monthly:          core.Money{Cents: 10000},
		DueDay:           1,
	}
	if err := repo.PutDebt(ctx, d); err != nil {
		t.Fatalf("put: %v", err)
	}

	d.Remaining = core.Money{Cents: 50000}
	d.InstallmentsPaid = 1
	d.PaidThisPeriod = true
	txn := core.Transaction{
		ID:       "pay-1",
		Amount:   core.Money{Cents: 10000},
		Kind:     core.Expense,
		Category: "Debt",
		Note:     "Debt payment: Loan (installment 1)",
		Date:     core.NewDate(2025, 3, 1),
		Method:   core.Cash,
	}
	if err := repo.ApplyDebtPayment(ctx, d, txn); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, _ := repo.GetDebt(ctx, "d1")
	if got.InstallmentsPaid != 1 || !got.PaidThisPeriod {
		t.Fatalf("debt not updated: %+v", got)
	}
	txs, _ := repo.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].ID != "pay-1" {
		t.Fatalf("payment transaction missing: %+v", txs)
	}

	// A second apply built from the same pre-payment read must be refused:
	// the paid flag is part of the guarded write, not just the service
	// check.
	d.InstallmentsPaid = 2
	d.Remaining = core.Money{Cents: 40000}
	txn.ID = "pay-dup"
	if err := repo.ApplyDebtPayment(ctx, d, txn); !errors.Is(err, core.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	got, _ = repo.GetDebt(ctx, "d1")
	if got.InstallmentsPaid != 1 || got.Remaining.Cents != 50000 {
		t.Fatalf("debt changed by rejected payment: %+v", got)
	}
	if txs, _ := repo.ListTransactions(ctx); len(txs) != 1 {
		t.Fatalf("expected exactly 1 transaction, got %d", len(txs))
	}
}

func TestApplyDebtPaymentMissingDebtRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.ApplyDebtPayment(ctx,
		core.InstallmentDebt{ID: "nope"},
		core.Transaction{
			ID: "pay-1", Amount: core.Money{Cents: 100}, Kind: core.Expense,
			Category: "Debt", Date: core.NewDate(2025, 3, 1), Method: core.Cash,
		})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if txs, _ := repo.ListTransactions(ctx); len(txs) != 0 {
		t.Fatalf("transaction leaked from failed payment: %+v", txs)
	}
}

func TestPlanRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	b := core.BudgetItem{
		ID: "b1", Label: "Tickets", Amount: core.Money{Cents: 5000},
		Kind: core.Expense, Date: core.NewDate(2025, 4, 1), Method: core.Cash,
	}
	if err := repo.PutBudgetItem(ctx, b); err != nil {
		t.Fatalf("put budget item: %v", err)
	}
	items, _ := repo.ListBudgetItems(ctx)
	if len(items) != 1 || items[0] != b {
		t.Fatalf("budget item mismatch: %+v", items)
	}

	re := core.RecurringExpense{
		ID: "r1", Label: "Rent", Amount: core.Money{Cents: 90000},
		DayOfMonth: 1, Category: "Housing", Method: core.Cash,
	}
	if err := repo.PutRecurring(ctx, re); err != nil {
		t.Fatalf("put recurring: %v", err)
	}
	recurring, _ := repo.ListRecurring(ctx)
	if len(recurring) != 1 || recurring[0] != re {
		t.Fatalf("recurring mismatch: %+v", recurring)
	}

	if err := repo.DeleteBudgetItem(ctx, "b1"); err != nil {
		t.Fatalf("delete budget item: %v", err)
	}
	if err := repo.DeleteRecurring(ctx, "r1"); err != nil {
		t.Fatalf("delete recurring: %v", err)
	}
}

func TestInitialPositionReplacesAssets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// Empty database yields a zero position
	p, err := repo.InitialPosition(ctx)
	if err != nil {
		t.Fatalf("empty position: %v", err)
	}
	if p.StartingCash.Cents != 0 || len(p.FixedAssets) != 0 {
		t.Fatalf("expected zero position, got %+v", p)
	}

	first := core.InitialPosition{
		StartingCash:        core.Money{Cents: 100000},
		StartingLiabilities: core.Money{Cents: 20000},
		FixedAssets: []core.FixedAsset{
			{ID: "a1", Name: "Car", Value: core.Money{Cents: 500000}},
			{ID: "a2", Name: "Bike", Value: core.Money{Cents: 30000}},
		},
	}
	if err := repo.SetInitialPosition(ctx, first); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := core.InitialPosition{
		StartingCash: core.Money{Cents: 150000},
		FixedAssets: []core.FixedAsset{
			{ID: "a3", Name: "Laptop", Value: core.Money{Cents: 80000}},
		},
	}
	if err := repo.SetInitialPosition(ctx, second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, _ := repo.InitialPosition(ctx)
	if got.StartingCash.Cents != 150000 || got.StartingLiabilities.Cents != 0 {
		t.Fatalf("position not replaced: %+v", got)
	}
	if len(got.FixedAssets) != 1 || got.FixedAssets[0].ID != "a3" {
		t.Fatalf("fixed assets not replaced: %+v", got.FixedAssets)
	}
}
