// Package store defines the persistence ports for the budget tracker and
// the error taxonomy shared by every backend.
package store

import (
	"context"
	"errors"

	"budget/internal/core"
)

// Failure signals surfaced by store implementations. All three are
// terminal for the triggering user action; callers never retry
// automatically and never apply partial mutations.
var (
	// ErrNotFound is returned when an id is unknown on update or delete.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a record fails domain validation at
	// the store boundary.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable is returned on transport or storage failures.
	ErrUnavailable = errors.New("store unavailable")
)

// Ports for persistence backends. Create and Update assign/refresh the
// record's ID, CreatedAt and UpdatedAt store-side; callers must not assume
// client-assigned ids survive a round trip.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	RecurringStore interface {
		ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error)
		CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
		UpdateRecurring(ctx context.Context, id string, rt core.RecurringTransaction) (core.RecurringTransaction, error)
		DeleteRecurring(ctx context.Context, id string) error
	}

	// Store combines both entity stores; every backend implements it.
	Store interface {
		TransactionStore
		RecurringStore
	}
)
