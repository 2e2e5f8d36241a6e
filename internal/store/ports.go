// Package store declares the persistence ports the engines are driven
// through. The core is persistence-agnostic: any backend able to hand back
// the entity collections can drive it. Implementations live in
// store/memory (default) and storage (SQLite).
package store

import (
	"context"
	"errors"

	"ledger/internal/core"
)

// ErrNotFound is returned when a record id does not exist in the backend.
var ErrNotFound = errors.New("record not found")

type (
	TransactionStore interface {
		AppendTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	CardStore interface {
		PutCard(ctx context.Context, c core.Card) error
		DeleteCard(ctx context.Context, id string) error
		ListCards(ctx context.Context) ([]core.Card, error)
	}

	DebtStore interface {
		PutDebt(ctx context.Context, d core.InstallmentDebt) error
		GetDebt(ctx context.Context, id string) (core.InstallmentDebt, error)
		UpdateDebt(ctx context.Context, d core.InstallmentDebt) error
		DeleteDebt(ctx context.Context, id string) error
		ListDebts(ctx context.Context) ([]core.InstallmentDebt, error)

		// ApplyDebtPayment persists the updated debt state and appends the
		// generated payment transaction as a single unit of work: either
		// both are stored or neither is. The write only applies while the
		// stored debt is still unpaid this period; when a concurrent
		// confirmation got there first the backend stores nothing and
		// returns core.ErrAlreadyPaid.
		ApplyDebtPayment(ctx context.Context, d core.InstallmentDebt, t core.Transaction) error
	}

	PlanStore interface {
		PutBudgetItem(ctx context.Context, b core.BudgetItem) error
		DeleteBudgetItem(ctx context.Context, id string) error
		ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error)

		PutRecurring(ctx context.Context, r core.RecurringExpense) error
		DeleteRecurring(ctx context.Context, id string) error
		ListRecurring(ctx context.Context) ([]core.RecurringExpense, error)
	}

	PositionStore interface {
		InitialPosition(ctx context.Context) (core.InitialPosition, error)
		SetInitialPosition(ctx context.Context, p core.InitialPosition) error
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		TransactionStore
		CardStore
		DebtStore
		PlanStore
		PositionStore
	}
)
