package core

import "testing"

func TestCategoryRegistryAddList(t *testing.T) {
	r := NewCategoryRegistry([]string{"Salary"}, []string{"Food", "Housing"})

	if got := r.List(Expense); len(got) != 2 || got[0] != "Food" || got[1] != "Housing" {
		t.Fatalf("unexpected expense categories: %v", got)
	}

	if err := r.Add(Expense, "Travel"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Duplicate add keeps insertion order intact
	if err := r.Add(Expense, "Food"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.List(Expense)
	if len(got) != 3 || got[2] != "Travel" {
		t.Fatalf("unexpected categories after add: %v", got)
	}

	if !r.Has(Income, "Salary") {
		t.Fatal("expected Salary to be registered for income")
	}
	if r.Has(Income, "Food") {
		t.Fatal("Food should not be registered for income")
	}
}

func TestCategoryRegistryRejectsBadInput(t *testing.T) {
	r := NewCategoryRegistry(nil, nil)
	if err := r.Add("transfer", "x"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if err := r.Add(Expense, "  "); err == nil {
		t.Fatal("expected error for blank label")
	}
}
