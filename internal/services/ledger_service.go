package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/store"
)

// ChangePublisher notifies the export pipeline that a record changed.
// Publishing is fire-and-forget from the ledger's perspective: a failed
// publish is logged and the local write stands.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, entity, id, op string) error
}

// Entity names carried in change events.
const (
	EntityTransaction = "transaction"
	EntityCard        = "card"
	EntityDebt        = "debt"
	EntityBudgetItem  = "budget_item"
	EntityRecurring   = "recurring"
	EntityPosition    = "position"
)

// Ledger orchestrates record writes and derived-view reads. Writes go to
// the store first, then emit a change event; reads load the collections
// and hand them to the pure engines, recomputing everything from scratch
// on each call.
type Ledger struct {
	store     store.Store
	debts     *DebtLedger
	publisher ChangePublisher
	now       func() time.Time
}

func NewLedger(st store.Store, publisher ChangePublisher) *Ledger {
	return &Ledger{
		store:     st,
		debts:     NewDebtLedger(st),
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the ledger's time source for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	l.debts.WithClock(now)
	return l
}

// Debts exposes the installment ledger for direct state transitions.
func (l *Ledger) Debts() *DebtLedger { return l.debts }

func (l *Ledger) publish(ctx context.Context, entity, id, op string) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishRecordChange(ctx, entity, id, op); err != nil {
		// Local write already succeeded; export catches up later.
		slog.ErrorContext(ctx, "Failed to publish record change",
			"entity", entity, "id", id, "op", op, "error", err)
	}
}

// AddTransaction validates and records a transaction, assigning an id if
// the caller did not.
func (l *Ledger) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.store.AppendTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	l.publish(ctx, EntityTransaction, t.ID, "create")
	return t, nil
}

func (l *Ledger) RemoveTransaction(ctx context.Context, id string) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	l.publish(ctx, EntityTransaction, id, "delete")
	return nil
}

func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx)
}

func (l *Ledger) AddCard(ctx context.Context, c core.Card) (core.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	if err := l.store.PutCard(ctx, c); err != nil {
		return core.Card{}, fmt.Errorf("put card: %w", err)
	}
	l.publish(ctx, EntityCard, c.ID, "create")
	return c, nil
}

func (l *Ledger) RemoveCard(ctx context.Context, id string) error {
	if err := l.store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	l.publish(ctx, EntityCard, id, "delete")
	return nil
}

func (l *Ledger) Cards(ctx context.Context) ([]core.Card, error) {
	return l.store.ListCards(ctx)
}

func (l *Ledger) AddBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	if err := l.store.PutBudgetItem(ctx, b); err != nil {
		return core.BudgetItem{}, fmt.Errorf("put budget item: %w", err)
	}
	l.publish(ctx, EntityBudgetItem, b.ID, "create")
	return b, nil
}

func (l *Ledger) RemoveBudgetItem(ctx context.Context, id string) error {
	if err := l.store.DeleteBudgetItem(ctx, id); err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	l.publish(ctx, EntityBudgetItem, id, "delete")
	return nil
}

func (l *Ledger) BudgetItems(ctx context.Context) ([]core.BudgetItem, error) {
	return l.store.ListBudgetItems(ctx)
}

func (l *Ledger) AddRecurring(ctx context.Context, r core.RecurringExpense) (core.RecurringExpense, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := r.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	if err := l.store.PutRecurring(ctx, r); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("put recurring expense: %w", err)
	}
	l.publish(ctx, EntityRecurring, r.ID, "create")
	return r, nil
}

func (l *Ledger) RemoveRecurring(ctx context.Context, id string) error {
	if err := l.store.DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	l.publish(ctx, EntityRecurring, id, "delete")
	return nil
}

func (l *Ledger) Recurring(ctx context.Context) ([]core.RecurringExpense, error) {
	return l.store.ListRecurring(ctx)
}

func (l *Ledger) SetInitialPosition(ctx context.Context, p core.InitialPosition) error {
	if err := l.store.SetInitialPosition(ctx, p); err != nil {
		return fmt.Errorf("set initial position: %w", err)
	}
	l.publish(ctx, EntityPosition, "", "update")
	return nil
}

func (l *Ledger) Position(ctx context.Context) (core.InitialPosition, error) {
	return l.store.InitialPosition(ctx)
}

// CreateDebt persists a new installment debt.
func (l *Ledger) CreateDebt(ctx context.Context, label string, principal core.Money, installmentCount, installmentsPaid, dueDay int) (core.InstallmentDebt, error) {
	d, err := l.debts.Create(ctx, label, principal, installmentCount, installmentsPaid, dueDay)
	if err != nil {
		return core.InstallmentDebt{}, err
	}
	l.publish(ctx, EntityDebt, d.ID, "create")
	return d, nil
}

// ConfirmDebtPayment applies one installment payment and announces both
// the debt update and the generated transaction. A no-op confirmation
// (already paid, or settled) publishes nothing.
func (l *Ledger) ConfirmDebtPayment(ctx context.Context, id string) (core.InstallmentDebt, *core.Transaction, error) {
	debt, txn, err := l.debts.ConfirmPayment(ctx, id)
	if err != nil {
		return core.InstallmentDebt{}, nil, err
	}
	if txn != nil {
		l.publish(ctx, EntityDebt, debt.ID, "update")
		l.publish(ctx, EntityTransaction, txn.ID, "create")
	}
	return debt, txn, nil
}

func (l *Ledger) ResetDebtPeriod(ctx context.Context, id string) (core.InstallmentDebt, error) {
	d, err := l.debts.ResetPeriod(ctx, id)
	if err != nil {
		return core.InstallmentDebt{}, err
	}
	l.publish(ctx, EntityDebt, id, "update")
	return d, nil
}

func (l *Ledger) RemoveDebt(ctx context.Context, id string) error {
	if err := l.debts.Delete(ctx, id); err != nil {
		return err
	}
	l.publish(ctx, EntityDebt, id, "delete")
	return nil
}

func (l *Ledger) ListDebts(ctx context.Context) ([]core.InstallmentDebt, error) {
	return l.store.ListDebts(ctx)
}

// BalanceSheet recomputes the net-worth snapshot from the full history.
func (l *Ledger) BalanceSheet(ctx context.Context) (core.BalanceSheet, error) {
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return core.BalanceSheet{}, fmt.Errorf("list transactions: %w", err)
	}
	debts, err := l.store.ListDebts(ctx)
	if err != nil {
		return core.BalanceSheet{}, fmt.Errorf("list debts: %w", err)
	}
	initial, err := l.store.InitialPosition(ctx)
	if err != nil {
		return core.BalanceSheet{}, fmt.Errorf("initial position: %w", err)
	}
	return Snapshot(txs, debts, initial), nil
}

// Reminders builds the due-this-week list for today.
func (l *Ledger) Reminders(ctx context.Context) ([]core.Reminder, error) {
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	cards, err := l.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	recurring, err := l.store.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	return WeeklyReminders(core.Today(l.now()), txs, cards, recurring), nil
}

// CashFlowForecast projects the standard 8-period window from today.
func (l *Ledger) CashFlowForecast(ctx context.Context) ([]core.ForecastPeriod, error) {
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	items, err := l.store.ListBudgetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	debts, err := l.store.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	recurring, err := l.store.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	cards, err := l.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return Forecast(core.Today(l.now()), items, debts, recurring, cards, txs, ForecastPeriods), nil
}

// Feasibility evaluates the current month's budget verdict.
func (l *Ledger) Feasibility(ctx context.Context) (core.BudgetVerdict, error) {
	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return core.BudgetVerdict{}, fmt.Errorf("list transactions: %w", err)
	}
	items, err := l.store.ListBudgetItems(ctx)
	if err != nil {
		return core.BudgetVerdict{}, fmt.Errorf("list budget items: %w", err)
	}
	recurring, err := l.store.ListRecurring(ctx)
	if err != nil {
		return core.BudgetVerdict{}, fmt.Errorf("list recurring: %w", err)
	}
	debts, err := l.store.ListDebts(ctx)
	if err != nil {
		return core.BudgetVerdict{}, fmt.Errorf("list debts: %w", err)
	}
	actuals := MonthTotals(txs, core.Today(l.now()))
	return EvaluateBudget(actuals, items, recurring, debts, UnbilledCreditCardTotal(txs)), nil
}
