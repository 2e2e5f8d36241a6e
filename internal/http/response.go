package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/store"
)

// Wire representations. Amounts travel as integer cents plus a formatted
// decimal so clients never parse money themselves; dates are ISO strings.
type (
	moneyJSON struct {
		Cents   int64  `json:"cents"`
		Display string `json:"display"`
	}

	transactionJSON struct {
		ID       string    `json:"id"`
		Amount   moneyJSON `json:"amount"`
		Kind     string    `json:"kind"`
		Category string    `json:"category"`
		Note     string    `json:"note,omitempty"`
		Date     string    `json:"date"`
		Method   string    `json:"method"`
		CardID   string    `json:"card_id,omitempty"`
	}

	cardJSON struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		ClosingDay int    `json:"closing_day"`
		PaymentDay int    `json:"payment_day"`
		Color      string `json:"color,omitempty"`
	}

	debtJSON struct {
		ID               string    `json:"id"`
		Label            string    `json:"label"`
		TotalPrincipal   moneyJSON `json:"total_principal"`
		Remaining        moneyJSON `json:"remaining"`
		InstallmentCount int       `json:"installment_count"`
		InstallmentsPaid int       `json:"installments_paid"`
		Monthly          moneyJSON `json:"monthly"`
		DueDay           int       `json:"due_day"`
		PaidThisPeriod   bool      `json:"paid_this_period"`
		Settled          bool      `json:"settled"`
	}

	budgetItemJSON struct {
		ID     string    `json:"id"`
		Label  string    `json:"label"`
		Amount moneyJSON `json:"amount"`
		Kind   string    `json:"kind"`
		Date   string    `json:"date"`
		Method string    `json:"method"`
		CardID string    `json:"card_id,omitempty"`
	}

	recurringJSON struct {
		ID         string    `json:"id"`
		Label      string    `json:"label"`
		Amount     moneyJSON `json:"amount"`
		DayOfMonth int       `json:"day_of_month"`
		Category   string    `json:"category,omitempty"`
		Method     string    `json:"method"`
		CardID     string    `json:"card_id,omitempty"`
	}

	fixedAssetJSON struct {
		ID    string    `json:"id"`
		Name  string    `json:"name"`
		Value moneyJSON `json:"value"`
	}

	positionJSON struct {
		StartingCash        moneyJSON        `json:"starting_cash"`
		StartingLiabilities moneyJSON        `json:"starting_liabilities"`
		FixedAssets         []fixedAssetJSON `json:"fixed_assets"`
	}

	errorJSON struct {
		Error string `json:"error"`
	}
)

func toMoney(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Display: m.String()}
}

func toTransaction(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       t.ID,
		Amount:   toMoney(t.Amount),
		Kind:     string(t.Kind),
		Category: t.Category,
		Note:     t.Note,
		Date:     t.Date.ISO(),
		Method:   string(t.Method),
		CardID:   t.CardID,
	}
}

func toCard(c core.Card) cardJSON {
	return cardJSON{
		ID:         c.ID,
		Name:       c.Name,
		ClosingDay: c.ClosingDay,
		PaymentDay: c.PaymentDay,
		Color:      c.Color,
	}
}

func toDebt(d core.InstallmentDebt) debtJSON {
	return debtJSON{
		ID:               d.ID,
		Label:            d.Label,
		TotalPrincipal:   toMoney(d.TotalPrincipal),
		Remaining:        toMoney(d.Remaining),
		InstallmentCount: d.InstallmentCount,
		InstallmentsPaid: d.InstallmentsPaid,
		Monthly:          toMoney(d.Monthly),
		DueDay:           d.DueDay,
		PaidThisPeriod:   d.PaidThisPeriod,
		Settled:          d.Settled(),
	}
}

func toBudgetItem(b core.BudgetItem) budgetItemJSON {
	return budgetItemJSON{
		ID:     b.ID,
		Label:  b.Label,
		Amount: toMoney(b.Amount),
		Kind:   string(b.Kind),
		Date:   b.Date.ISO(),
		Method: string(b.Method),
		CardID: b.CardID,
	}
}

func toRecurring(r core.RecurringExpense) recurringJSON {
	return recurringJSON{
		ID:         r.ID,
		Label:      r.Label,
		Amount:     toMoney(r.Amount),
		DayOfMonth: r.DayOfMonth,
		Category:   r.Category,
		Method:     string(r.Method),
		CardID:     r.CardID,
	}
}

func toPosition(p core.InitialPosition) positionJSON {
	out := positionJSON{
		StartingCash:        toMoney(p.StartingCash),
		StartingLiabilities: toMoney(p.StartingLiabilities),
		FixedAssets:         []fixedAssetJSON{},
	}
	for _, a := range p.FixedAssets {
		out.FixedAssets = append(out.FixedAssets, fixedAssetJSON{ID: a.ID, Name: a.Name, Value: toMoney(a.Value)})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

// writeDomainError maps domain and storage failures onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrInvalidDay, core.ErrInvalidAmount, core.ErrEmptyLabel,
		core.ErrEmptyCategory, core.ErrUnknownKind, core.ErrUnknownMethod,
		core.ErrMissingCardRef,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
