package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/store"
	"budget/internal/store/demo"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}

func newTestService() *BudgetService {
	s := NewBudgetService(demo.New(), nil)
	s.now = fixedNow
	return s
}

func TestBudgetService_CreateTransaction(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tx := core.Transaction{
		Type:        core.Expense,
		Category:    "Food",
		Amount:      core.Money{Cents: 2500},
		Description: "Lunch",
		Date:        core.NewDate(2025, 1, 15),
	}

	created, err := svc.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateTransaction() should assign an id")
	}

	list, err := svc.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListTransactions() returned %d transactions, want 1", len(list))
	}
}

func TestBudgetService_CreateTransaction_Invalid(t *testing.T) {
	svc := newTestService()

	tx := core.Transaction{
		Type:        core.Expense,
		Category:    "Salary", // income category on an expense
		Amount:      core.Money{Cents: 2500},
		Description: "Lunch",
		Date:        core.NewDate(2025, 1, 15),
	}

	_, err := svc.CreateTransaction(context.Background(), tx)
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateTransaction() error = %v, want ErrValidation", err)
	}
}

func TestBudgetService_CreateRecurring_DerivesNextDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		wantNext  core.Date
	}{
		{"weekly", core.Weekly, core.NewDate(2025, 1, 22)},
		{"monthly", core.Monthly, core.NewDate(2025, 2, 15)},
		{"yearly", core.Yearly, core.NewDate(2026, 1, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()

			rt := core.RecurringTransaction{
				Type:        core.Income,
				Category:    "Salary",
				Amount:      core.Money{Cents: 500000},
				Description: "Salary",
				Frequency:   tt.frequency,
				// Caller-provided value must be ignored
				NextDate: core.NewDate(1999, 1, 1),
			}

			created, err := svc.CreateRecurring(context.Background(), rt)
			if err != nil {
				t.Fatalf("CreateRecurring() error = %v", err)
			}
			if !created.NextDate.Equal(tt.wantNext.Time) {
				t.Errorf("CreateRecurring() NextDate = %v, want %v", created.NextDate, tt.wantNext)
			}
		})
	}
}

func TestBudgetService_CreateRecurring_InvalidFrequency(t *testing.T) {
	svc := newTestService()

	rt := core.RecurringTransaction{
		Type:        core.Income,
		Category:    "Salary",
		Amount:      core.Money{Cents: 500000},
		Description: "Salary",
		Frequency:   core.Frequency("daily"),
	}

	_, err := svc.CreateRecurring(context.Background(), rt)
	if !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateRecurring() error = %v, want ErrValidation", err)
	}
}

func TestBudgetService_UpdateRecurring_KeepsProvidedNextDate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecurring(ctx, core.RecurringTransaction{
		Type:        core.Expense,
		Category:    "Bills",
		Amount:      core.Money{Cents: 20000},
		Description: "Internet bill",
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}

	created.NextDate = core.NewDate(2025, 3, 1)
	updated, err := svc.UpdateRecurring(ctx, created.ID, created)
	if err != nil {
		t.Fatalf("UpdateRecurring() error = %v", err)
	}
	if !updated.NextDate.Equal(core.NewDate(2025, 3, 1).Time) {
		t.Errorf("UpdateRecurring() NextDate = %v, want 2025-03-01", updated.NextDate)
	}
}

func TestBudgetService_UpdateRecurring_DerivesWhenEmpty(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecurring(ctx, core.RecurringTransaction{
		Type:        core.Expense,
		Category:    "Bills",
		Amount:      core.Money{Cents: 20000},
		Description: "Internet bill",
		Frequency:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}

	created.Frequency = core.Weekly
	created.NextDate = core.Date{}
	updated, err := svc.UpdateRecurring(ctx, created.ID, created)
	if err != nil {
		t.Fatalf("UpdateRecurring() error = %v", err)
	}
	if !updated.NextDate.Equal(core.NewDate(2025, 1, 22).Time) {
		t.Errorf("UpdateRecurring() NextDate = %v, want 2025-01-22", updated.NextDate)
	}
}

func TestBudgetService_DeleteTransaction_NotFound(t *testing.T) {
	svc := newTestService()

	err := svc.DeleteTransaction(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}
