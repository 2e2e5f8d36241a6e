package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"ledger/internal/core"
	"ledger/internal/store"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := New()

	tx := core.Transaction{
		ID:       "t1",
		Amount:   core.Money{Cents: 1500},
		Kind:     core.Expense,
		Category: "Food",
		Date:     core.NewDate(2025, 3, 1),
		Method:   core.Cash,
	}
	if err := st.AppendTransaction(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}

	txs, err := st.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "t1" {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	// Returned slice is a copy; mutating it must not touch the store
	txs[0].Category = "tampered"
	again, _ := st.ListTransactions(ctx)
	if again[0].Category != "Food" {
		t.Fatal("list must return copies")
	}

	if err := st.DeleteTransaction(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteTransaction(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDebtUpdateMissing(t *testing.T) {
	ctx := context.Background()
	st := New()
	err := st.UpdateDebt(ctx, core.InstallmentDebt{ID: "missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetDebt(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyDebtPaymentRejectsWhenAlreadyPaid(t *testing.T) {
	ctx := context.Background()
	st := New()
	if err := st.PutDebt(ctx, core.InstallmentDebt{
		ID:               "d1",
		Label:            "Loan",
		TotalPrincipal:   core.Money{Cents: 120000},
		Remaining:        core.Money{Cents: 110000},
		InstallmentCount: 12,
		InstallmentsPaid: 1,
		Monthly:          core.Money{Cents: 10000},
		DueDay:           5,
		PaidThisPeriod:   true,
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	err := st.ApplyDebtPayment(ctx,
		core.InstallmentDebt{ID: "d1", PaidThisPeriod: true, InstallmentsPaid: 2},
		core.Transaction{ID: "t-dup"})
	if !errors.Is(err, core.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	// Rejected payments leave both sides untouched
	if txs, _ := st.ListTransactions(ctx); len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
	got, _ := st.GetDebt(ctx, "d1")
	if got.InstallmentsPaid != 1 {
		t.Fatalf("debt state changed on rejected payment: %+v", got)
	}
}

func TestApplyDebtPaymentSingleWinner(t *testing.T) {
	ctx := context.Background()
	st := New()
	if err := st.PutDebt(ctx, core.InstallmentDebt{
		ID:               "d1",
		Label:            "Loan",
		TotalPrincipal:   core.Money{Cents: 120000},
		Remaining:        core.Money{Cents: 120000},
		InstallmentCount: 12,
		Monthly:          core.Money{Cents: 10000},
		DueDay:           5,
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Every caller read the same unpaid debt; only one write may land and
	// only one transaction may be stored.
	const n = 20
	var wg sync.WaitGroup
	var applied, rejected int64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			updated := core.InstallmentDebt{
				ID: "d1", Label: "Loan",
				TotalPrincipal:   core.Money{Cents: 120000},
				Remaining:        core.Money{Cents: 110000},
				InstallmentCount: 12,
				InstallmentsPaid: 1,
				Monthly:          core.Money{Cents: 10000},
				DueDay:           5,
				PaidThisPeriod:   true,
			}
			txn := core.Transaction{
				ID:       fmt.Sprintf("t%d", i),
				Amount:   core.Money{Cents: 10000},
				Kind:     core.Expense,
				Category: "Debt",
				Date:     core.NewDate(2025, 3, 1),
				Method:   core.Cash,
			}
			switch err := st.ApplyDebtPayment(ctx, updated, txn); {
			case err == nil:
				atomic.AddInt64(&applied, 1)
			case errors.Is(err, core.ErrAlreadyPaid):
				atomic.AddInt64(&rejected, 1)
			default:
				t.Errorf("apply %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if applied != 1 || rejected != n-1 {
		t.Fatalf("expected 1 applied and %d rejected, got %d/%d", n-1, applied, rejected)
	}
	txs, _ := st.ListTransactions(ctx)
	if len(txs) != 1 {
		t.Fatalf("expected exactly 1 transaction, got %d", len(txs))
	}
	got, _ := st.GetDebt(ctx, "d1")
	if got.InstallmentsPaid != 1 || got.Remaining.Cents != 110000 {
		t.Fatalf("unexpected debt state: %+v", got)
	}
}

func TestApplyDebtPaymentMissingDebt(t *testing.T) {
	ctx := context.Background()
	st := New()
	err := st.ApplyDebtPayment(ctx,
		core.InstallmentDebt{ID: "nope"},
		core.Transaction{ID: "t1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// A failed payment must not leak its transaction
	if txs, _ := st.ListTransactions(ctx); len(txs) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txs))
	}
}

func TestPutCardUpserts(t *testing.T) {
	ctx := context.Background()
	st := New()
	c := core.Card{ID: "c1", Name: "Visa", ClosingDay: 20, PaymentDay: 5}
	if err := st.PutCard(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.Name = "Visa Gold"
	if err := st.PutCard(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	cards, _ := st.ListCards(ctx)
	if len(cards) != 1 || cards[0].Name != "Visa Gold" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestInitialPositionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New()

	p, err := st.InitialPosition(ctx)
	if err != nil {
		t.Fatalf("empty position: %v", err)
	}
	if p.StartingCash.Cents != 0 {
		t.Fatalf("expected zero starting cash, got %d", p.StartingCash.Cents)
	}

	want := core.InitialPosition{
		StartingCash:        core.Money{Cents: 100000},
		StartingLiabilities: core.Money{Cents: 5000},
		FixedAssets: []core.FixedAsset{
			{ID: "a1", Name: "Bike", Value: core.Money{Cents: 30000}},
		},
	}
	if err := st.SetInitialPosition(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := st.InitialPosition(ctx)
	if got.StartingCash != want.StartingCash || len(got.FixedAssets) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
