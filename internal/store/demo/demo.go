// Package demo provides a file-backed in-memory store used in demo mode.
//
// The full transaction and recurring-transaction lists live in memory and
// are persisted wholesale to two named JSON snapshot slots after every
// mutation. When the slots are absent at startup the store seeds itself
// with a fixed sample data set.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/store"
)

const (
	transactionsSlot = "transactions.json"
	recurringSlot    = "recurring.json"
)

type Store struct {
	mu        sync.Mutex
	dir       string // empty disables snapshot persistence
	txs       []core.Transaction
	recurring []core.RecurringTransaction
	now       func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store without snapshot persistence.
func New() *Store {
	return &Store{now: time.Now}
}

// NewSeeded creates an in-memory store preloaded with the sample data set.
func NewSeeded() *Store {
	return &Store{txs: seedTransactions(), recurring: seedRecurring(), now: time.Now}
}

// NewFromFiles creates a store backed by snapshot slots under dir. Missing
// or unreadable slots are replaced by the seed data set.
func NewFromFiles(dir string) *Store {
	s := &Store{dir: dir, now: time.Now}

	if txs, ok := readSlot[transactionRecord](filepath.Join(dir, transactionsSlot)); ok {
		s.txs = decodeTransactions(txs)
	} else {
		s.txs = seedTransactions()
	}
	if recs, ok := readSlot[recurringRecord](filepath.Join(dir, recurringSlot)); ok {
		s.recurring = decodeRecurring(recs)
	} else {
		s.recurring = seedRecurring()
	}
	return s
}

// ListTransactions returns a copy of the transaction collection.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

// CreateTransaction validates, assigns id and timestamps, and persists.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	next := append(append([]core.Transaction(nil), s.txs...), t)
	if err := s.persistTransactions(next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next
	return t, nil
}

// UpdateTransaction replaces the mutable fields of the record with the
// given id, preserving id and creation time.
func (s *Store) UpdateTransaction(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.txs, id, func(t core.Transaction) string { return t.ID })
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}

	t.ID = id
	t.CreatedAt = s.txs[i].CreatedAt
	t.UpdatedAt = s.now().UTC()

	next := append([]core.Transaction(nil), s.txs...)
	next[i] = t
	if err := s.persistTransactions(next); err != nil {
		return core.Transaction{}, err
	}
	s.txs = next
	return t, nil
}

// DeleteTransaction removes the record with the given id.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.txs, id, func(t core.Transaction) string { return t.ID })
	if i < 0 {
		return fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}

	next := append([]core.Transaction(nil), s.txs[:i]...)
	next = append(next, s.txs[i+1:]...)
	if err := s.persistTransactions(next); err != nil {
		return err
	}
	s.txs = next
	return nil
}

// ListRecurring returns a copy of the recurring-transaction collection.
func (s *Store) ListRecurring(_ context.Context) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringTransaction(nil), s.recurring...), nil
}

// CreateRecurring validates, assigns id and timestamps, and persists.
func (s *Store) CreateRecurring(_ context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rt.ID = uuid.NewString()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	next := append(append([]core.RecurringTransaction(nil), s.recurring...), rt)
	if err := s.persistRecurring(next); err != nil {
		return core.RecurringTransaction{}, err
	}
	s.recurring = next
	return rt, nil
}

// UpdateRecurring replaces the mutable fields of the record with the given
// id, preserving id and creation time.
func (s *Store) UpdateRecurring(_ context.Context, id string, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.recurring, id, func(rt core.RecurringTransaction) string { return rt.ID })
	if i < 0 {
		return core.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", store.ErrNotFound, id)
	}

	rt.ID = id
	rt.CreatedAt = s.recurring[i].CreatedAt
	rt.UpdatedAt = s.now().UTC()

	next := append([]core.RecurringTransaction(nil), s.recurring...)
	next[i] = rt
	if err := s.persistRecurring(next); err != nil {
		return core.RecurringTransaction{}, err
	}
	s.recurring = next
	return rt, nil
}

// DeleteRecurring removes the record with the given id.
func (s *Store) DeleteRecurring(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.recurring, id, func(rt core.RecurringTransaction) string { return rt.ID })
	if i < 0 {
		return fmt.Errorf("%w: recurring transaction %s", store.ErrNotFound, id)
	}

	next := append([]core.RecurringTransaction(nil), s.recurring[:i]...)
	next = append(next, s.recurring[i+1:]...)
	if err := s.persistRecurring(next); err != nil {
		return err
	}
	s.recurring = next
	return nil
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistTransactions(txs []core.Transaction) error {
	if s.dir == "" {
		return nil
	}
	return writeSlot(filepath.Join(s.dir, transactionsSlot), encodeTransactions(txs))
}

func (s *Store) persistRecurring(recs []core.RecurringTransaction) error {
	if s.dir == "" {
		return nil
	}
	return writeSlot(filepath.Join(s.dir, recurringSlot), encodeRecurring(recs))
}

func readSlot[T any](path string) ([]T, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func writeSlot[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create snapshot directory: %v", store.ErrUnavailable, err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", store.ErrUnavailable, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write snapshot %s: %v", store.ErrUnavailable, filepath.Base(path), err)
	}
	return nil
}
