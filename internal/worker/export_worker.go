// Package worker drives the export mirror off record change events, with
// a periodic catch-up pass for messages lost while the worker was down.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/services"
	"ledger/internal/store"
)

// TransactionSource is the optional catch-up surface a backend can offer.
// The SQLite repository implements it; backends without export tracking
// skip the catch-up pass.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListUnexportedTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkTransactionExported(ctx context.Context, id string) error
	MarkTransactionExportError(ctx context.Context, id string) error
}

// Consumer delivers record change messages until its context ends.
type Consumer interface {
	ConsumeRecordChanges(ctx context.Context, handler func(*amqp.RecordChangeMessage) error) error
}

// ExportWorker mirrors ledger records to the configured exporter.
type ExportWorker struct {
	store     store.Store
	source    TransactionSource // nil when the backend cannot track exports
	exporter  export.Exporter
	batchSize int
	now       func() time.Time
}

func NewExportWorker(st store.Store, source TransactionSource, exporter export.Exporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     st,
		source:    source,
		exporter:  exporter,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// WithClock overrides the worker's time source for tests.
func (w *ExportWorker) WithClock(now func() time.Time) *ExportWorker {
	w.now = now
	return w
}

// Run consumes change events and runs the periodic catch-up until the
// context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeRecordChanges(ctx, func(msg *amqp.RecordChangeMessage) error {
			return w.HandleChange(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Catch-up pass failed", "error", err)
				}
				if err := w.RefreshSnapshot(ctx); err != nil {
					slog.ErrorContext(ctx, "Snapshot refresh failed", "error", err)
				}
			}
		}
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// HandleChange processes a single record change message. A created
// transaction is appended to the mirror; every change refreshes the
// balance sheet snapshot.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "Processing record change",
		"entity", msg.Entity,
		"id", msg.ID,
		"op", msg.Op)

	if msg.Entity == services.EntityTransaction && msg.Op == amqp.OpCreate {
		if err := w.exportTransaction(ctx, msg.ID); err != nil {
			return fmt.Errorf("export transaction: %w", err)
		}
	}

	return w.RefreshSnapshot(ctx)
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	if w.source == nil {
		slog.WarnContext(ctx, "Backend cannot look up transactions, skipping row export", "id", id)
		return nil
	}

	t, err := w.source.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.appendToMirror(ctx, t)
}

func (w *ExportWorker) appendToMirror(ctx context.Context, t core.Transaction) error {
	ref, err := w.exporter.AppendTransaction(ctx, t)
	if err != nil {
		if markErr := w.source.MarkTransactionExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.source.MarkTransactionExported(ctx, t.ID); err != nil {
		// The export itself succeeded; the flag is retried by catch-up.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", t.ID,
		"ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}

// ProcessPending exports transactions whose change events were lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	if w.source == nil {
		return nil
	}

	pending, err := w.source.ListUnexportedTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unexported transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.appendToMirror(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck runs a larger catch-up batch once at worker startup.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	if w.source == nil {
		slog.InfoContext(ctx, "Backend has no export tracking, skipping startup check")
		return nil
	}

	pending, err := w.source.ListUnexportedTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No unexported transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found unexported transactions on startup", "count", len(pending))

	exported := 0
	failed := 0
	for _, t := range pending {
		if err := w.appendToMirror(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup", "id", t.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// RefreshSnapshot recomputes the balance sheet and overwrites the mirror.
func (w *ExportWorker) RefreshSnapshot(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	debts, err := w.store.ListDebts(ctx)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}
	initial, err := w.store.InitialPosition(ctx)
	if err != nil {
		return fmt.Errorf("initial position: %w", err)
	}

	sheet := services.Snapshot(txs, debts, initial)
	if err := w.exporter.WriteBalanceSheet(ctx, sheet, core.Today(w.now())); err != nil {
		return fmt.Errorf("write balance sheet: %w", err)
	}
	return nil
}
