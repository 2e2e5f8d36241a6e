package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
)

// maxBodyBytes caps request bodies; ledger records are tiny.
const maxBodyBytes = 64 << 10

type (
	transactionRequest struct {
		Amount   string `json:"amount"`
		Kind     string `json:"kind"`
		Category string `json:"category"`
		Note     string `json:"note"`
		Date     string `json:"date"`
		Method   string `json:"method"`
		CardID   string `json:"card_id"`
	}

	cardRequest struct {
		Name       string `json:"name"`
		ClosingDay int    `json:"closing_day"`
		PaymentDay int    `json:"payment_day"`
		Color      string `json:"color"`
	}

	debtRequest struct {
		Label            string `json:"label"`
		Principal        string `json:"principal"`
		InstallmentCount int    `json:"installment_count"`
		InstallmentsPaid int    `json:"installments_paid"`
		DueDay           int    `json:"due_day"`
	}

	budgetItemRequest struct {
		Label  string `json:"label"`
		Amount string `json:"amount"`
		Kind   string `json:"kind"`
		Date   string `json:"date"`
		Method string `json:"method"`
		CardID string `json:"card_id"`
	}

	recurringRequest struct {
		Label      string `json:"label"`
		Amount     string `json:"amount"`
		DayOfMonth int    `json:"day_of_month"`
		Category   string `json:"category"`
		Method     string `json:"method"`
		CardID     string `json:"card_id"`
	}

	fixedAssetRequest struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	positionRequest struct {
		StartingCash        string              `json:"starting_cash"`
		StartingLiabilities string              `json:"starting_liabilities"`
		FixedAssets         []fixedAssetRequest `json:"fixed_assets"`
	}
)

// decodeJSON reads the request body into dst, rejecting unknown fields so
// typos surface as errors instead of silently dropped data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseAmount converts a decimal amount string to Money. A zero amount
// string is rejected the same way the domain rejects zero cents.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseOptionalAmount allows empty strings, mapping them to zero. Used for
// the initial position where zero balances are legitimate.
func parseOptionalAmount(s string) (core.Money, error) {
	if strings.TrimSpace(s) == "" {
		return core.Money{}, nil
	}
	return parseAmount(s)
}

// parseDate accepts an ISO date, defaulting to today when empty.
func parseDate(s string, today core.Date) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return today, nil
	}
	return core.ParseDate(s)
}

// queryInt reads an integer query parameter with a default and an upper
// bound to keep report windows reasonable.
func queryInt(r *http.Request, key string, def, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (req transactionRequest) toDomain(today core.Date) (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date, today)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Amount:   amount,
		Kind:     core.TransactionKind(req.Kind),
		Category: strings.TrimSpace(req.Category),
		Note:     strings.TrimSpace(req.Note),
		Date:     date,
		Method:   core.PaymentMethod(req.Method),
		CardID:   strings.TrimSpace(req.CardID),
	}, nil
}

func (req budgetItemRequest) toDomain(today core.Date) (core.BudgetItem, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.BudgetItem{}, err
	}
	date, err := parseDate(req.Date, today)
	if err != nil {
		return core.BudgetItem{}, err
	}
	return core.BudgetItem{
		Label:  strings.TrimSpace(req.Label),
		Amount: amount,
		Kind:   core.TransactionKind(req.Kind),
		Date:   date,
		Method: core.PaymentMethod(req.Method),
		CardID: strings.TrimSpace(req.CardID),
	}, nil
}

func (req recurringRequest) toDomain() (core.RecurringExpense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	return core.RecurringExpense{
		Label:      strings.TrimSpace(req.Label),
		Amount:     amount,
		DayOfMonth: req.DayOfMonth,
		Category:   strings.TrimSpace(req.Category),
		Method:     core.PaymentMethod(req.Method),
		CardID:     strings.TrimSpace(req.CardID),
	}, nil
}

func (req positionRequest) toDomain() (core.InitialPosition, error) {
	cash, err := parseOptionalAmount(req.StartingCash)
	if err != nil {
		return core.InitialPosition{}, fmt.Errorf("starting cash: %w", err)
	}
	liabilities, err := parseOptionalAmount(req.StartingLiabilities)
	if err != nil {
		return core.InitialPosition{}, fmt.Errorf("starting liabilities: %w", err)
	}
	p := core.InitialPosition{StartingCash: cash, StartingLiabilities: liabilities}
	for i, a := range req.FixedAssets {
		value, err := parseAmount(a.Value)
		if err != nil {
			return core.InitialPosition{}, fmt.Errorf("fixed asset %d: %w", i, err)
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return core.InitialPosition{}, fmt.Errorf("fixed asset %d: %w", i, core.ErrEmptyLabel)
		}
		p.FixedAssets = append(p.FixedAssets, core.FixedAsset{
			ID:    fmt.Sprintf("asset-%d", i+1),
			Name:  name,
			Value: value,
		})
	}
	return p, nil
}
