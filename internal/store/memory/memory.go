// Package memory provides the default in-memory store backend. It is the
// reference implementation of the persistence ports: everything lives in
// mutex-guarded slices, writes copy records, and the debt-payment
// operation applies both writes under one lock acquisition.
package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	cards        []core.Card
	debts        []core.InstallmentDebt
	budgetItems  []core.BudgetItem
	recurring    []core.RecurringExpense
	initial      core.InitialPosition
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewWithPosition seeds the store with an opening balance-sheet snapshot.
func NewWithPosition(p core.InitialPosition) *Store {
	return &Store{initial: p}
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out, nil
}

func (s *Store) PutCard(_ context.Context, c core.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.cards {
		if existing.ID == c.ID {
			s.cards[i] = c
			return nil
		}
	}
	s.cards = append(s.cards, c)
	return nil
}

func (s *Store) DeleteCard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cards {
		if c.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCards(_ context.Context) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Card, len(s.cards))
	copy(out, s.cards)
	return out, nil
}

func (s *Store) PutDebt(_ context.Context, d core.InstallmentDebt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.debts {
		if existing.ID == d.ID {
			s.debts[i] = d
			return nil
		}
	}
	s.debts = append(s.debts, d)
	return nil
}

func (s *Store) GetDebt(_ context.Context, id string) (core.InstallmentDebt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.debts {
		if d.ID == id {
			return d, nil
		}
	}
	return core.InstallmentDebt{}, store.ErrNotFound
}

func (s *Store) UpdateDebt(_ context.Context, d core.InstallmentDebt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateDebtLocked(d)
}

func (s *Store) updateDebtLocked(d core.InstallmentDebt) error {
	for i, existing := range s.debts {
		if existing.ID == d.ID {
			s.debts[i] = d
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteDebt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.debts {
		if d.ID == id {
			s.debts = append(s.debts[:i], s.debts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListDebts(_ context.Context) ([]core.InstallmentDebt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.InstallmentDebt, len(s.debts))
	copy(out, s.debts)
	return out, nil
}

// ApplyDebtPayment stores the updated debt and the generated transaction
// under a single lock acquisition. The stored debt is re-read under that
// lock: if it is already marked paid this period, a concurrent
// confirmation won and nothing is written.
func (s *Store) ApplyDebtPayment(_ context.Context, d core.InstallmentDebt, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.debts {
		if existing.ID != d.ID {
			continue
		}
		if existing.PaidThisPeriod {
			return core.ErrAlreadyPaid
		}
		s.debts[i] = d
		s.transactions = append(s.transactions, t)
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) PutBudgetItem(_ context.Context, b core.BudgetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgetItems = append(s.budgetItems, b)
	return nil
}

func (s *Store) DeleteBudgetItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgetItems {
		if b.ID == id {
			s.budgetItems = append(s.budgetItems[:i], s.budgetItems[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListBudgetItems(_ context.Context) ([]core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BudgetItem, len(s.budgetItems))
	copy(out, s.budgetItems)
	return out, nil
}

func (s *Store) PutRecurring(_ context.Context, r core.RecurringExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recurring = append(s.recurring, r)
	return nil
}

func (s *Store) DeleteRecurring(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.recurring {
		if r.ID == id {
			s.recurring = append(s.recurring[:i], s.recurring[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListRecurring(_ context.Context) ([]core.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringExpense, len(s.recurring))
	copy(out, s.recurring)
	return out, nil
}

func (s *Store) InitialPosition(_ context.Context) (core.InitialPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.initial
	p.FixedAssets = make([]core.FixedAsset, len(s.initial.FixedAssets))
	copy(p.FixedAssets, s.initial.FixedAssets)
	return p, nil
}

func (s *Store) SetInitialPosition(_ context.Context, p core.InitialPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = p
	return nil
}
