package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
	"ledger/internal/store"
)

// DebtCategory is the category stamped on transactions emitted by a
// confirmed installment payment.
const DebtCategory = "Debt"

// DebtLedger owns the amortization state transitions for installment
// debts. It is the only engine with mutable state: confirming a payment
// updates the debt and appends the generated transaction through a single
// store operation, so a repeated confirmation can never double-charge.
type DebtLedger struct {
	debts store.DebtStore
	now   func() time.Time
}

func NewDebtLedger(debts store.DebtStore) *DebtLedger {
	return &DebtLedger{debts: debts, now: time.Now}
}

// WithClock overrides the ledger's time source. Tests use this to pin the
// emitted transaction date.
func (l *DebtLedger) WithClock(now func() time.Time) *DebtLedger {
	l.now = now
	return l
}

// NewDebt builds a debt record: the monthly amount is the principal split
// evenly across installments with half-up rounding, and the remaining
// balance accounts for installments already paid before tracking began.
func NewDebt(label string, principal core.Money, installmentCount, installmentsPaid, dueDay int) core.InstallmentDebt {
	monthly := principal.DivRound(int64(installmentCount))
	remaining := principal.Sub(core.Money{Cents: monthly.Cents * int64(installmentsPaid)})
	if remaining.Cents < 0 {
		remaining = core.Money{}
	}
	return core.InstallmentDebt{
		ID:               uuid.NewString(),
		Label:            label,
		TotalPrincipal:   principal,
		Remaining:        remaining,
		InstallmentCount: installmentCount,
		InstallmentsPaid: installmentsPaid,
		Monthly:          monthly,
		DueDay:           dueDay,
		PaidThisPeriod:   false,
	}
}

// Create validates and persists a new debt.
func (l *DebtLedger) Create(ctx context.Context, label string, principal core.Money, installmentCount, installmentsPaid, dueDay int) (core.InstallmentDebt, error) {
	d := NewDebt(label, principal, installmentCount, installmentsPaid, dueDay)
	if err := d.Validate(); err != nil {
		return core.InstallmentDebt{}, err
	}
	if err := l.debts.PutDebt(ctx, d); err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("put debt: %w", err)
	}
	return d, nil
}

// ConfirmPayment applies one installment payment: it increments the paid
// counter, decrements the remaining balance (floored at zero), marks the
// period as paid and emits the matching cash expense transaction. Both
// writes happen atomically. Confirming an already-paid or settled debt is
// a no-op: the unchanged debt is returned with a nil transaction.
func (l *DebtLedger) ConfirmPayment(ctx context.Context, id string) (core.InstallmentDebt, *core.Transaction, error) {
	debt, err := l.debts.GetDebt(ctx, id)
	if err != nil {
		return core.InstallmentDebt{}, nil, fmt.Errorf("get debt: %w", err)
	}

	if debt.PaidThisPeriod || debt.Settled() {
		slog.InfoContext(ctx, "Debt payment skipped",
			"debt_id", debt.ID,
			"paid_this_period", debt.PaidThisPeriod,
			"settled", debt.Settled())
		return debt, nil, nil
	}

	updated := debt
	updated.InstallmentsPaid++
	updated.Remaining = debt.Remaining.Sub(debt.Monthly)
	if updated.Remaining.Cents < 0 {
		updated.Remaining = core.Money{}
	}
	updated.PaidThisPeriod = true

	txn := core.Transaction{
		ID:       uuid.NewString(),
		Amount:   debt.Monthly,
		Kind:     core.Expense,
		Category: DebtCategory,
		Note:     fmt.Sprintf("Debt payment: %s (installment %d)", debt.Label, updated.InstallmentsPaid),
		Date:     core.Today(l.now()),
		Method:   core.Cash,
	}

	if err := l.debts.ApplyDebtPayment(ctx, updated, txn); err != nil {
		// A concurrent confirmation committed between our read and write.
		// The store refused the second charge; report the same no-op the
		// loser would have seen had it read after the winner.
		if errors.Is(err, core.ErrAlreadyPaid) {
			current, getErr := l.debts.GetDebt(ctx, id)
			if getErr != nil {
				return core.InstallmentDebt{}, nil, fmt.Errorf("get debt: %w", getErr)
			}
			slog.InfoContext(ctx, "Debt payment skipped",
				"debt_id", id,
				"paid_this_period", true,
				"settled", current.Settled())
			return current, nil, nil
		}
		return core.InstallmentDebt{}, nil, fmt.Errorf("apply debt payment: %w", err)
	}

	slog.InfoContext(ctx, "Debt payment confirmed",
		"debt_id", updated.ID,
		"installment", updated.InstallmentsPaid,
		"remaining_cents", updated.Remaining.Cents)
	return updated, &txn, nil
}

// ResetPeriod clears the paid-this-period flag. The engines never invoke
// this themselves; the host decides when a new billing period starts and
// calls it explicitly.
func (l *DebtLedger) ResetPeriod(ctx context.Context, id string) (core.InstallmentDebt, error) {
	debt, err := l.debts.GetDebt(ctx, id)
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("get debt: %w", err)
	}
	if !debt.PaidThisPeriod {
		return debt, nil
	}
	debt.PaidThisPeriod = false
	if err := l.debts.UpdateDebt(ctx, debt); err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("update debt: %w", err)
	}
	return debt, nil
}

// Delete removes a debt. Transactions already emitted by past payments are
// untouched.
func (l *DebtLedger) Delete(ctx context.Context, id string) error {
	if err := l.debts.DeleteDebt(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete debt: %w", err)
	}
	return nil
}

// DebtStatsFor summarizes a debt collection for display: outstanding
// total, the monthly load still pending this period, and how many debts
// have been paid.
func DebtStatsFor(debts []core.InstallmentDebt) core.DebtStats {
	var stats core.DebtStats
	for _, d := range debts {
		stats.TotalRemaining = stats.TotalRemaining.Add(d.Remaining)
		if d.PaidThisPeriod {
			stats.PaidCount++
		} else {
			stats.PendingMonthly = stats.PendingMonthly.Add(d.Monthly)
		}
	}
	return stats
}
