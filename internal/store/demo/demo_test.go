package demo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/store"
)

func validTransaction() core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Category:    "Food",
		Amount:      core.Money{Cents: 2550},
		Description: "Groceries",
		Date:        core.NewDate(2025, 1, 15),
	}
}

func validRecurring() core.RecurringTransaction {
	return core.RecurringTransaction{
		Type:        core.Income,
		Category:    "Salary",
		Amount:      core.Money{Cents: 350000},
		Description: "Monthly salary",
		Frequency:   core.Monthly,
		NextDate:    core.NewDate(2025, 2, 1),
	}
}

func TestStore_TransactionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateTransaction() did not assign an id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("CreateTransaction() did not stamp timestamps")
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 || txs[0].ID != created.ID {
		t.Fatalf("ListTransactions() = %v, want the created record", txs)
	}

	update := created
	update.Description = "Weekly groceries"
	update.Amount = core.Money{Cents: 3000}
	updated, err := s.UpdateTransaction(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	if updated.Description != "Weekly groceries" || updated.Amount.Cents != 3000 {
		t.Errorf("UpdateTransaction() = %+v, mutation not applied", updated)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Error("UpdateTransaction() must preserve CreatedAt")
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	txs, _ = s.ListTransactions(ctx)
	if len(txs) != 0 {
		t.Errorf("ListTransactions() after delete = %v, want empty", txs)
	}
}

func TestStore_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	s := New()

	bad := validTransaction()
	bad.Category = "Gadgets"
	if _, err := s.CreateTransaction(ctx, bad); !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateTransaction() error = %v, want ErrValidation", err)
	}

	badRec := validRecurring()
	badRec.Frequency = "daily"
	if _, err := s.CreateRecurring(ctx, badRec); !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateRecurring() error = %v, want ErrValidation", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.UpdateTransaction(ctx, "missing", validTransaction()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateTransaction() error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateRecurring(ctx, "missing", validRecurring()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateRecurring() error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteRecurring(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteRecurring() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	txs, _ := s.ListTransactions(ctx)
	txs[0].Description = "tampered"

	again, _ := s.ListTransactions(ctx)
	if again[0].Description != created.Description {
		t.Error("ListTransactions() must return a copy, not the internal slice")
	}
}

func TestNewSeeded(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) == 0 {
		t.Error("NewSeeded() store has no transactions")
	}

	recs, err := s.ListRecurring(ctx)
	if err != nil {
		t.Fatalf("ListRecurring() error = %v", err)
	}
	if len(recs) == 0 {
		t.Error("NewSeeded() store has no recurring transactions")
	}
}

func TestNewFromFiles_SeedsWhenSlotsMissing(t *testing.T) {
	s := NewFromFiles(t.TempDir())

	txs, _ := s.ListTransactions(context.Background())
	if len(txs) == 0 {
		t.Error("NewFromFiles() with empty directory must fall back to seed data")
	}
}

func TestNewFromFiles_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewFromFiles(dir)
	created, err := first.CreateTransaction(ctx, validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	rec, err := first.CreateRecurring(ctx, validRecurring())
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "transactions.json")); err != nil {
		t.Fatalf("transaction snapshot slot not written: %v", err)
	}

	// A second store over the same directory sees the mutations
	second := NewFromFiles(dir)

	txs, _ := second.ListTransactions(ctx)
	var found *core.Transaction
	for i := range txs {
		if txs[i].ID == created.ID {
			found = &txs[i]
		}
	}
	if found == nil {
		t.Fatalf("reloaded store is missing transaction %s", created.ID)
	}
	if found.Amount.Cents != created.Amount.Cents {
		t.Errorf("reloaded amount = %d cents, want %d", found.Amount.Cents, created.Amount.Cents)
	}
	if found.Date.String() != "2025-01-15" {
		t.Errorf("reloaded date = %v, want 2025-01-15", found.Date.String())
	}

	recs, _ := second.ListRecurring(ctx)
	ok := false
	for _, r := range recs {
		if r.ID == rec.ID && r.NextDate.String() == "2025-02-01" && r.Frequency == core.Monthly {
			ok = true
		}
	}
	if !ok {
		t.Errorf("reloaded store is missing recurring transaction %s", rec.ID)
	}
}

func TestNewFromFiles_SkipsCorruptRows(t *testing.T) {
	dir := t.TempDir()

	data := `[
  {"id": "good", "type": "expense", "category": "Food", "amount": 10.5, "description": "ok", "date": "2025-01-10"},
  {"id": "bad-date", "type": "expense", "category": "Food", "amount": 10.5, "description": "broken", "date": "not-a-date"}
]`
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(data), 0644); err != nil {
		t.Fatalf("write slot: %v", err)
	}

	s := NewFromFiles(dir)
	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 1 || txs[0].ID != "good" {
		t.Errorf("ListTransactions() = %v, want only the well-formed row", txs)
	}
}

func TestStore_TimestampsUseClock(t *testing.T) {
	fixed := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return fixed }

	created, err := s.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if !created.CreatedAt.Equal(fixed) || !created.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v/%v, want %v", created.CreatedAt, created.UpdatedAt, fixed)
	}
}
