package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/store"
)

// Export status values for transactions.
const (
	exportPending = 0
	exportDone    = 1
	exportError   = 2
)

// GetTransaction retrieves a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, kind, category, note, date, method, card_id
		FROM transactions WHERE id = ?`, id)

	var (
		t    core.Transaction
		date string
	)
	err := row.Scan(&t.ID, &t.Amount.Cents, &t.Kind, &t.Category, &t.Note, &date, &t.Method, &t.CardID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	return t, nil
}

// ListUnexportedTransactions returns transactions not yet mirrored, oldest
// first. Used by the export worker as a catch-up for lost messages.
func (r *SQLiteRepository) ListUnexportedTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, kind, category, note, date, method, card_id
		FROM transactions WHERE export_status = ? ORDER BY date, id LIMIT ?`,
		exportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t    core.Transaction
			date string
		)
		if err := rows.Scan(&t.ID, &t.Amount.Cents, &t.Kind, &t.Category, &t.Note, &date, &t.Method, &t.CardID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkTransactionExported records that the transaction reached the mirror.
func (r *SQLiteRepository) MarkTransactionExported(ctx context.Context, id string) error {
	if err := r.setExportStatus(ctx, id, exportDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkTransactionExportError flags the transaction so it is retried later.
func (r *SQLiteRepository) MarkTransactionExportError(ctx context.Context, id string) error {
	if err := r.setExportStatus(ctx, id, exportError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

func (r *SQLiteRepository) setExportStatus(ctx context.Context, id string, status int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET export_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set export status: %w", err)
	}
	return requireRow(res)
}
