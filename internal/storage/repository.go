package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a single SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, kind, category, note, date, method, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, string(t.Kind), t.Category, t.Note, t.Date.ISO(), string(t.Method), t.CardID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"kind", t.Kind,
		"category", t.Category)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "transactions", id)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, kind, category, note, date, method, card_id
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
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

func (r *SQLiteRepository) PutCard(ctx context.Context, c core.Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, name, closing_day, payment_day, color)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			closing_day = excluded.closing_day,
			payment_day = excluded.payment_day,
			color = excluded.color`,
		c.ID, c.Name, c.ClosingDay, c.PaymentDay, c.Color)
	if err != nil {
		return fmt.Errorf("put card: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "credit_cards", id)
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, closing_day, payment_day, color
		FROM credit_cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		var c core.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.ClosingDay, &c.PaymentDay, &c.Color); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutDebt(ctx context.Context, d core.InstallmentDebt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO installment_debts
			(id, label, total_principal_cents, remaining_cents, installment_count,
			 installments_paid, monthly_cents, due_day, paid_this_period)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			total_principal_cents = excluded.total_principal_cents,
			remaining_cents = excluded.remaining_cents,
			installment_count = excluded.installment_count,
			installments_paid = excluded.installments_paid,
			monthly_cents = excluded.monthly_cents,
			due_day = excluded.due_day,
			paid_this_period = excluded.paid_this_period`,
		d.ID, d.Label, d.TotalPrincipal.Cents, d.Remaining.Cents, d.InstallmentCount,
		d.InstallmentsPaid, d.Monthly.Cents, d.DueDay, boolToInt(d.PaidThisPeriod))
	if err != nil {
		return fmt.Errorf("put debt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id string) (core.InstallmentDebt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, label, total_principal_cents, remaining_cents, installment_count,
		       installments_paid, monthly_cents, due_day, paid_this_period
		FROM installment_debts WHERE id = ?`, id)
	d, err := scanDebt(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InstallmentDebt{}, store.ErrNotFound
	}
	if err != nil {
		return core.InstallmentDebt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.InstallmentDebt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE installment_debts SET
			label = ?, total_principal_cents = ?, remaining_cents = ?,
			installment_count = ?, installments_paid = ?, monthly_cents = ?,
			due_day = ?, paid_this_period = ?
		WHERE id = ?`,
		d.Label, d.TotalPrincipal.Cents, d.Remaining.Cents,
		d.InstallmentCount, d.InstallmentsPaid, d.Monthly.Cents,
		d.DueDay, boolToInt(d.PaidThisPeriod), d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "installment_debts", id)
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.InstallmentDebt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, total_principal_cents, remaining_cents, installment_count,
		       installments_paid, monthly_cents, due_day, paid_this_period
		FROM installment_debts ORDER BY label, id`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.InstallmentDebt
	for rows.Next() {
		d, err := scanDebt(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ApplyDebtPayment writes the updated debt and its payment transaction in
// one SQL transaction so a crash cannot leave the ledger half-updated.
// The UPDATE is guarded on paid_this_period so a concurrent confirmation
// that committed first turns this one into an error, not a second charge.
func (r *SQLiteRepository) ApplyDebtPayment(ctx context.Context, d core.InstallmentDebt, t core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin debt payment: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE installment_debts SET
			remaining_cents = ?, installments_paid = ?, paid_this_period = ?
		WHERE id = ? AND paid_this_period = 0`,
		d.Remaining.Cents, d.InstallmentsPaid, boolToInt(d.PaidThisPeriod), d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var paid int
		row := tx.QueryRowContext(ctx, `
			SELECT paid_this_period FROM installment_debts WHERE id = ?`, d.ID)
		if err := row.Scan(&paid); errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		} else if err != nil {
			return fmt.Errorf("check debt payment state: %w", err)
		}
		return core.ErrAlreadyPaid
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, kind, category, note, date, method, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, string(t.Kind), t.Category, t.Note, t.Date.ISO(), string(t.Method), t.CardID)
	if err != nil {
		return fmt.Errorf("insert payment transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit debt payment: %w", err)
	}

	slog.InfoContext(ctx, "Debt payment applied",
		"debt_id", d.ID,
		"installments_paid", d.InstallmentsPaid,
		"remaining_cents", d.Remaining.Cents)
	return nil
}

func (r *SQLiteRepository) PutBudgetItem(ctx context.Context, b core.BudgetItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_items (id, label, amount_cents, kind, date, method, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			amount_cents = excluded.amount_cents,
			kind = excluded.kind,
			date = excluded.date,
			method = excluded.method,
			card_id = excluded.card_id`,
		b.ID, b.Label, b.Amount.Cents, string(b.Kind), b.Date.ISO(), string(b.Method), b.CardID)
	if err != nil {
		return fmt.Errorf("put budget item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudgetItem(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "budget_items", id)
}

func (r *SQLiteRepository) ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, amount_cents, kind, date, method, card_id
		FROM budget_items ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetItem
	for rows.Next() {
		var (
			b    core.BudgetItem
			date string
		)
		if err := rows.Scan(&b.ID, &b.Label, &b.Amount.Cents, &b.Kind, &date, &b.Method, &b.CardID); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		if b.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse budget item date %q: %w", date, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PutRecurring(ctx context.Context, re core.RecurringExpense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_expenses (id, label, amount_cents, day_of_month, category, method, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			amount_cents = excluded.amount_cents,
			day_of_month = excluded.day_of_month,
			category = excluded.category,
			method = excluded.method,
			card_id = excluded.card_id`,
		re.ID, re.Label, re.Amount.Cents, re.DayOfMonth, re.Category, string(re.Method), re.CardID)
	if err != nil {
		return fmt.Errorf("put recurring expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "recurring_expenses", id)
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, amount_cents, day_of_month, category, method, card_id
		FROM recurring_expenses ORDER BY day_of_month, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringExpense
	for rows.Next() {
		var re core.RecurringExpense
		if err := rows.Scan(&re.ID, &re.Label, &re.Amount.Cents, &re.DayOfMonth, &re.Category, &re.Method, &re.CardID); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InitialPosition(ctx context.Context) (core.InitialPosition, error) {
	var p core.InitialPosition

	row := r.db.QueryRowContext(ctx, `
		SELECT starting_cash_cents, starting_liabilities_cents
		FROM initial_position WHERE id = 1`)
	err := row.Scan(&p.StartingCash.Cents, &p.StartingLiabilities.Cents)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.InitialPosition{}, fmt.Errorf("get initial position: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, value_cents FROM fixed_assets ORDER BY name, id`)
	if err != nil {
		return core.InitialPosition{}, fmt.Errorf("list fixed assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.FixedAsset
		if err := rows.Scan(&a.ID, &a.Name, &a.Value.Cents); err != nil {
			return core.InitialPosition{}, fmt.Errorf("scan fixed asset: %w", err)
		}
		p.FixedAssets = append(p.FixedAssets, a)
	}
	return p, rows.Err()
}

func (r *SQLiteRepository) SetInitialPosition(ctx context.Context, p core.InitialPosition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set initial position: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO initial_position (id, starting_cash_cents, starting_liabilities_cents)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			starting_cash_cents = excluded.starting_cash_cents,
			starting_liabilities_cents = excluded.starting_liabilities_cents`,
		p.StartingCash.Cents, p.StartingLiabilities.Cents)
	if err != nil {
		return fmt.Errorf("upsert initial position: %w", err)
	}

	// Fixed assets are replaced wholesale with the snapshot
	if _, err := tx.ExecContext(ctx, `DELETE FROM fixed_assets`); err != nil {
		return fmt.Errorf("clear fixed assets: %w", err)
	}
	for _, a := range p.FixedAssets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fixed_assets (id, name, value_cents) VALUES (?, ?, ?)`,
			a.ID, a.Name, a.Value.Cents)
		if err != nil {
			return fmt.Errorf("insert fixed asset: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return requireRow(res)
}

func scanDebt(scan func(...any) error) (core.InstallmentDebt, error) {
	var (
		d    core.InstallmentDebt
		paid int
	)
	err := scan(&d.ID, &d.Label, &d.TotalPrincipal.Cents, &d.Remaining.Cents,
		&d.InstallmentCount, &d.InstallmentsPaid, &d.Monthly.Cents, &d.DueDay, &paid)
	if err != nil {
		return core.InstallmentDebt{}, err
	}
	d.PaidThisPeriod = paid != 0
	return d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
