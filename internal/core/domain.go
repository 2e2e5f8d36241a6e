package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Cash       PaymentMethod = "cash"
	CreditCard PaymentMethod = "credit_card"
)

type (
	TransactionKind string

	PaymentMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a recorded income or expense. Immutable once created
	// except for deletion.
	Transaction struct {
		ID       string
		Amount   Money
		Kind     TransactionKind
		Category string
		Note     string
		Date     Date
		Method   PaymentMethod
		CardID   string // set iff Method == CreditCard
	}

	// Card is a credit card with its monthly billing cycle anchors.
	Card struct {
		ID         string
		Name       string
		ClosingDay int    // 1-31, day the billing cycle closes
		PaymentDay int    // 1-31, day payment is due
		Color      string // presentation only
	}

	// InstallmentDebt is a fixed-principal obligation repaid in equal
	// monthly amounts. PaidThisPeriod is set by a confirmed payment and
	// cleared only by an explicit period reset.
	InstallmentDebt struct {
		ID               string
		Label            string
		TotalPrincipal   Money
		Remaining        Money
		InstallmentCount int
		InstallmentsPaid int
		Monthly          Money
		DueDay           int // 1-31
		PaidThisPeriod   bool
	}

	// BudgetItem is a one-off planned transaction. It is never converted
	// automatically into a Transaction.
	BudgetItem struct {
		ID     string
		Label  string
		Amount Money
		Kind   TransactionKind
		Date   Date
		Method PaymentMethod
		CardID string
	}

	// RecurringExpense is a standing monthly obligation used as a
	// forecasting input; it does not generate Transactions.
	RecurringExpense struct {
		ID         string
		Label      string
		Amount     Money
		DayOfMonth int // 1-31
		Category   string
		Method     PaymentMethod
		CardID     string
	}

	FixedAsset struct {
		ID    string
		Name  string
		Value Money
	}

	// InitialPosition is the balance sheet's opening snapshot.
	InitialPosition struct {
		StartingCash        Money
		StartingLiabilities Money
		FixedAssets         []FixedAsset
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day of month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyLabel     = errors.New("empty label")
	ErrEmptyCategory  = errors.New("empty category")
	ErrUnknownKind    = errors.New("unknown transaction kind")
	ErrUnknownMethod  = errors.New("unknown payment method")
	ErrMissingCardRef = errors.New("credit card payment without card reference")
	ErrDebtSettled    = errors.New("debt already settled")
	ErrAlreadyPaid    = errors.New("installment already paid this period")
)

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (m PaymentMethod) Valid() bool {
	return m == Cash || m == CreditCard
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates now to a calendar date.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO renders the date as YYYY-MM-DD. Lexicographic order of ISO strings
// matches chronological order, which period queries rely on.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// YearMonth renders the date as YYYY-MM, the key used for month scoping.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// ValidDayOfMonth reports whether day is usable as a monthly anchor.
// No validation against actual month length is performed.
func ValidDayOfMonth(day int) bool {
	return day >= 1 && day <= 31
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrUnknownKind
	}
	if !t.Method.Valid() {
		return ErrUnknownMethod
	}
	if t.Method == CreditCard && strings.TrimSpace(t.CardID) == "" {
		return ErrMissingCardRef
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyLabel
	}
	if !ValidDayOfMonth(c.ClosingDay) || !ValidDayOfMonth(c.PaymentDay) {
		return ErrInvalidDay
	}
	return nil
}

// Settled reports whether every installment has been paid.
func (d InstallmentDebt) Settled() bool {
	return d.InstallmentsPaid >= d.InstallmentCount
}

func (d InstallmentDebt) Validate() error {
	if strings.TrimSpace(d.Label) == "" {
		return ErrEmptyLabel
	}
	if d.InstallmentCount < 1 {
		return errors.New("installment count must be at least 1")
	}
	if d.InstallmentsPaid < 0 || d.InstallmentsPaid > d.InstallmentCount {
		return errors.New("installments paid out of range")
	}
	if !ValidDayOfMonth(d.DueDay) {
		return ErrInvalidDay
	}
	return d.TotalPrincipal.Validate()
}

func (b BudgetItem) Validate() error {
	if strings.TrimSpace(b.Label) == "" {
		return ErrEmptyLabel
	}
	if !b.Kind.Valid() {
		return ErrUnknownKind
	}
	if !b.Method.Valid() {
		return ErrUnknownMethod
	}
	if b.Method == CreditCard && strings.TrimSpace(b.CardID) == "" {
		return ErrMissingCardRef
	}
	if err := b.Date.Validate(); err != nil {
		return err
	}
	return b.Amount.Validate()
}

func (r RecurringExpense) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if !ValidDayOfMonth(r.DayOfMonth) {
		return ErrInvalidDay
	}
	if !r.Method.Valid() {
		return ErrUnknownMethod
	}
	if r.Method == CreditCard && strings.TrimSpace(r.CardID) == "" {
		return ErrMissingCardRef
	}
	return r.Amount.Validate()
}
