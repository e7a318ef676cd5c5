package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/core/schedule"
	applog "budget/internal/log"
	"budget/internal/store"
)

// BudgetService is the single mutation path for transactions and
// recurring transactions. It wraps the configured store, derives next
// occurrence dates for recurring entries, and publishes change events
// for the export worker when AMQP is configured.
type BudgetService struct {
	store      store.Store
	amqpClient *amqp.Client
	now        func() time.Time

	// Listeners run after every successful mutation, whichever caller
	// drove it. Register before serving, registration is not safe for
	// concurrent use.
	onTransactionChange []func()
	onRecurringChange   []func()
}

func NewBudgetService(st store.Store, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		store:      st,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// OnTransactionChange registers fn to run after every successful
// transaction mutation. The HTTP layer hangs its cache invalidation
// here so that mutations from the recurring processor purge it too.
func (s *BudgetService) OnTransactionChange(fn func()) {
	s.onTransactionChange = append(s.onTransactionChange, fn)
}

// OnRecurringChange registers fn to run after every successful
// recurring transaction mutation.
func (s *BudgetService) OnRecurringChange(fn func()) {
	s.onRecurringChange = append(s.onRecurringChange, fn)
}

func (s *BudgetService) notifyTransactionChange() {
	for _, fn := range s.onTransactionChange {
		fn()
	}
}

func (s *BudgetService) notifyRecurringChange() {
	for _, fn := range s.onRecurringChange {
		fn()
	}
}

// ListTransactions returns all stored transactions
func (s *BudgetService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// CreateTransaction saves a transaction and publishes a change event
func (s *BudgetService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithTransaction(created.ID, string(created.Type), created.Category, created.Amount.Cents).
		ToSlice()...)

	s.notifyTransactionChange()
	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionCreated, created.ID)
	return created, nil
}

// UpdateTransaction replaces a transaction and publishes a change event
func (s *BudgetService) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	updated, err := s.store.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.notifyTransactionChange()
	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

// DeleteTransaction removes a transaction and publishes a change event
func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.notifyTransactionChange()
	s.publishChange(ctx, amqp.EntityTransaction, amqp.ActionDeleted, id)
	return nil
}

// ListRecurring returns all recurring transactions
func (s *BudgetService) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	return s.store.ListRecurring(ctx)
}

// CreateRecurring saves a recurring transaction. The next occurrence
// date is always derived from the frequency and the current date, any
// caller-provided value is ignored.
func (s *BudgetService) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	next, err := s.nextFrom(rt.Frequency)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	rt.NextDate = next

	created, err := s.store.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}

	s.notifyRecurringChange()
	s.publishChange(ctx, amqp.EntityRecurring, amqp.ActionCreated, created.ID)
	return created, nil
}

// UpdateRecurring replaces a recurring transaction. When the caller
// leaves the next occurrence date empty it is derived again from the
// frequency and the current date.
func (s *BudgetService) UpdateRecurring(ctx context.Context, id string, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if rt.NextDate.IsZero() {
		next, err := s.nextFrom(rt.Frequency)
		if err != nil {
			return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
		}
		rt.NextDate = next
	}

	updated, err := s.store.UpdateRecurring(ctx, id, rt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}

	s.notifyRecurringChange()
	s.publishChange(ctx, amqp.EntityRecurring, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

// DeleteRecurring removes a recurring transaction
func (s *BudgetService) DeleteRecurring(ctx context.Context, id string) error {
	if err := s.store.DeleteRecurring(ctx, id); err != nil {
		return err
	}

	s.notifyRecurringChange()
	s.publishChange(ctx, amqp.EntityRecurring, amqp.ActionDeleted, id)
	return nil
}

func (s *BudgetService) nextFrom(frequency core.Frequency) (core.Date, error) {
	now := s.now().UTC()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	return schedule.NextDate(frequency, today)
}

// publishChange notifies the export worker. Publish failures are logged
// and never fail the request, the record is already saved locally.
func (s *BudgetService) publishChange(ctx context.Context, entity, action, id string) {
	if s.amqpClient == nil {
		return
	}

	event := amqp.NewChangeEvent(entity, action, id)
	if err := s.amqpClient.PublishChange(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity,
			"action", action,
			"id", id,
			"error", err)
	}
}

// Close closes the AMQP connection if one is configured
func (s *BudgetService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
