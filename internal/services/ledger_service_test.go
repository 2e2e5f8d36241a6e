package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ledger/internal/core"
	"ledger/internal/store/memory"
)

type recordingPublisher struct {
	events []string
	fail   bool
}

func (p *recordingPublisher) PublishRecordChange(_ context.Context, entity, id, op string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, fmt.Sprintf("%s:%s", entity, op))
	return nil
}

func TestLedgerAddTransactionAssignsID(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := NewLedger(memory.New(), pub).WithClock(fixedClock())

	saved, err := l.AddTransaction(ctx, core.Transaction{
		Amount:   cash(2500),
		Kind:     core.Expense,
		Category: "Food",
		Date:     core.NewDate(2025, 3, 10),
		Method:   core.Cash,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(pub.events) != 1 || pub.events[0] != "transaction:create" {
		t.Fatalf("unexpected events: %v", pub.events)
	}
}

func TestLedgerRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)

	_, err := l.AddTransaction(ctx, core.Transaction{
		Amount: cash(0), Kind: core.Expense, Category: "x",
		Date: core.NewDate(2025, 3, 10), Method: core.Cash,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = l.AddCard(ctx, core.Card{Name: "Visa", ClosingDay: 0, PaymentDay: 5})
	if !errors.Is(err, core.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}

	if txs, _ := l.Transactions(ctx); len(txs) != 0 {
		t.Fatalf("rejected records must not be stored, got %d", len(txs))
	}
}

func TestLedgerPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{fail: true}
	l := NewLedger(memory.New(), pub)

	saved, err := l.AddCard(ctx, core.Card{Name: "Visa", ClosingDay: 20, PaymentDay: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	cards, _ := l.Cards(ctx)
	if len(cards) != 1 || cards[0].ID != saved.ID {
		t.Fatalf("write must survive publish failure: %+v", cards)
	}
}

func TestLedgerConfirmDebtPaymentPublishesBothSides(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := NewLedger(memory.New(), pub).WithClock(fixedClock())

	d, err := l.CreateDebt(ctx, "Loan", cash(120000), 12, 0, 5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pub.events = nil

	if _, txn, err := l.ConfirmDebtPayment(ctx, d.ID); err != nil || txn == nil {
		t.Fatalf("confirm: txn=%v err=%v", txn, err)
	}
	if len(pub.events) != 2 || pub.events[0] != "debt:update" || pub.events[1] != "transaction:create" {
		t.Fatalf("unexpected events: %v", pub.events)
	}

	// No-op confirmation publishes nothing
	pub.events = nil
	if _, txn, err := l.ConfirmDebtPayment(ctx, d.ID); err != nil || txn != nil {
		t.Fatalf("expected silent no-op, txn=%v err=%v", txn, err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no-op must not publish: %v", pub.events)
	}
}

func TestLedgerBalanceSheet(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.NewWithPosition(sampleInitial()), nil).WithClock(fixedClock())
	for _, tx := range sampleTransactions() {
		if _, err := l.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	sheet, err := l.BalanceSheet(ctx)
	if err != nil {
		t.Fatalf("balance sheet: %v", err)
	}
	if sheet.CashPosition.Cents != 1200000 {
		t.Fatalf("expected cash 1200000, got %d", sheet.CashPosition.Cents)
	}
	if sheet.NetWorth.Cents != 1450000 {
		t.Fatalf("expected net worth 1450000, got %d", sheet.NetWorth.Cents)
	}
}

func TestLedgerFeasibilityUsesCurrentMonth(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil).WithClock(fixedClock()) // 2025-03-15

	if _, err := l.AddTransaction(ctx, core.Transaction{
		Amount: cash(500000), Kind: core.Income, Category: "Salary",
		Date: core.NewDate(2025, 3, 1), Method: core.Cash,
	}); err != nil {
		t.Fatalf("add income: %v", err)
	}
	// Previous month: must not count
	if _, err := l.AddTransaction(ctx, core.Transaction{
		Amount: cash(999999), Kind: core.Expense, Category: "Old",
		Date: core.NewDate(2025, 2, 1), Method: core.Cash,
	}); err != nil {
		t.Fatalf("add old expense: %v", err)
	}

	v, err := l.Feasibility(ctx)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if v.ProjectedIncome.Cents != 500000 || v.ProjectedExpense.Cents != 0 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if !v.Balanced {
		t.Fatalf("expected balanced: %+v", v)
	}
}
