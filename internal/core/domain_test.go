package core

import (
	"testing"
	"time"
)

func TestDateISOOrder(t *testing.T) {
	a := NewDate(2025, 1, 31)
	b := NewDate(2025, 2, 1)
	if !(a.ISO() < b.ISO()) {
		t.Fatalf("expected %s < %s", a.ISO(), b.ISO())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day() != 9 || d.YearMonth() != "2025-03" {
		t.Fatalf("unexpected parse result: %v", d)
	}
	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2025, 1, 29).AddDays(7)
	if d.ISO() != "2025-02-05" {
		t.Fatalf("expected 2025-02-05, got %s", d.ISO())
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:       "t1",
		Amount:   Money{Cents: 100},
		Kind:     Expense,
		Category: "Food",
		Date:     NewDate(2025, 1, 1),
		Method:   Cash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 100}, Kind: "transfer", Category: "c", Date: NewDate(2025, 1, 1), Method: Cash},
		{Amount: Money{Cents: 100}, Kind: Expense, Category: "c", Date: NewDate(2025, 1, 1), Method: "check"},
		{Amount: Money{Cents: 100}, Kind: Expense, Category: "c", Date: NewDate(2025, 1, 1), Method: CreditCard},
		{Amount: Money{Cents: 100}, Kind: Expense, Category: "c", Date: Date{Time: time.Time{}}, Method: Cash},
		{Amount: Money{Cents: 0}, Kind: Expense, Category: "c", Date: NewDate(2025, 1, 1), Method: Cash},
		{Amount: Money{Cents: 100}, Kind: Expense, Category: "", Date: NewDate(2025, 1, 1), Method: Cash},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCardValidate(t *testing.T) {
	if err := (Card{Name: "Visa", ClosingDay: 10, PaymentDay: 25}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Card{Name: "", ClosingDay: 10, PaymentDay: 25}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := (Card{Name: "Visa", ClosingDay: 0, PaymentDay: 25}).Validate(); err == nil {
		t.Fatal("expected error for closing day 0")
	}
	if err := (Card{Name: "Visa", ClosingDay: 10, PaymentDay: 32}).Validate(); err == nil {
		t.Fatal("expected error for payment day 32")
	}
}

func TestDebtSettled(t *testing.T) {
	d := InstallmentDebt{InstallmentCount: 12, InstallmentsPaid: 11}
	if d.Settled() {
		t.Fatal("11/12 should not be settled")
	}
	d.InstallmentsPaid = 12
	if !d.Settled() {
		t.Fatal("12/12 should be settled")
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	good := RecurringExpense{Label: "Rent", Amount: Money{Cents: 90000}, DayOfMonth: 5, Method: Cash}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	onCard := good
	onCard.Method = CreditCard
	if err := onCard.Validate(); err == nil {
		t.Fatal("expected error for card payment without card ref")
	}
	onCard.CardID = "card-1"
	if err := onCard.Validate(); err != nil {
		t.Fatalf("expected ok with card ref, got %v", err)
	}
}
