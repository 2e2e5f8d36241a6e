package core

import (
	"strings"
	"sync"
)

// CategoryRegistry is the user-managed set of category labels, kept per
// transaction kind. Categories are free-form strings; the registry only
// guarantees they are non-empty, deduplicated and returned in insertion
// order. Transactions keep whatever category they were recorded with even
// if the label is later removed from the registry.
type CategoryRegistry struct {
	mu     sync.RWMutex
	byKind map[TransactionKind][]string
}

// NewCategoryRegistry creates a registry seeded with the given labels.
func NewCategoryRegistry(income, expense []string) *CategoryRegistry {
	r := &CategoryRegistry{byKind: make(map[TransactionKind][]string)}
	for _, c := range income {
		r.add(Income, c)
	}
	for _, c := range expense {
		r.add(Expense, c)
	}
	return r
}

// Add registers a label for a kind. Adding an existing label is a no-op.
func (r *CategoryRegistry) Add(kind TransactionKind, label string) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if strings.TrimSpace(label) == "" {
		return ErrEmptyCategory
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(kind, label)
	return nil
}

func (r *CategoryRegistry) add(kind TransactionKind, label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	for _, existing := range r.byKind[kind] {
		if existing == label {
			return
		}
	}
	r.byKind[kind] = append(r.byKind[kind], label)
}

// List returns the labels registered for a kind in insertion order.
func (r *CategoryRegistry) List(kind TransactionKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.byKind[kind]))
	copy(out, r.byKind[kind])
	return out
}

// Has reports whether the label is registered for the kind.
func (r *CategoryRegistry) Has(kind TransactionKind, label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, existing := range r.byKind[kind] {
		if existing == label {
			return true
		}
	}
	return false
}
