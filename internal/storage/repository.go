package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a local SQLite database.
// Dates are stored as YYYY-MM-DD text, timestamps as RFC 3339 text, and
// amounts as integer cents.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions returns all transactions ordered by date, oldest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, category, amount_cents, description, date, created_at, updated_at
		 FROM transactions ORDER BY date, created_at`)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, unavailable("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate transactions", err)
	}
	return out, nil
}

// CreateTransaction validates, assigns id and timestamps, and inserts.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	now := r.now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, type, category, amount_cents, description, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Category, t.Amount.Cents, t.Description,
		t.Date.String(), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return core.Transaction{}, unavailable("insert transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

// UpdateTransaction replaces the mutable fields of the row with the given
// id, refreshing updated_at and preserving created_at.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, category = ?, amount_cents = ?, description = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		string(t.Type), t.Category, t.Amount.Cents, t.Description,
		t.Date.String(), formatTime(r.now().UTC()), id)
	if err != nil {
		return core.Transaction{}, unavailable("update transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}

	return r.getTransaction(ctx, id)
}

// DeleteTransaction removes the row with the given id.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return unavailable("delete transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}
	return nil
}

// GetTransaction retrieves a single transaction by id. Used by the export
// worker to load the record named in a change event.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return r.getTransaction(ctx, id)
}

func (r *SQLiteRepository) getTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, category, amount_cents, description, date, created_at, updated_at
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, unavailable("get transaction", err)
	}
	return t, nil
}

// ListRecurring returns all recurring transactions ordered by next date.
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, category, amount_cents, description, frequency, next_date, created_at, updated_at
		 FROM recurring_transactions ORDER BY next_date, created_at`)
	if err != nil {
		return nil, unavailable("list recurring transactions", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, unavailable("scan recurring transaction", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate recurring transactions", err)
	}
	return out, nil
}

// CreateRecurring validates, assigns id and timestamps, and inserts.
func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	now := r.now().UTC()
	rt.ID = uuid.NewString()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions (id, type, category, amount_cents, description, frequency, next_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, string(rt.Type), rt.Category, rt.Amount.Cents, rt.Description,
		string(rt.Frequency), rt.NextDate.String(), formatTime(rt.CreatedAt), formatTime(rt.UpdatedAt))
	if err != nil {
		return core.RecurringTransaction{}, unavailable("insert recurring transaction", err)
	}

	slog.InfoContext(ctx, "Recurring transaction saved",
		"id", rt.ID,
		"frequency", rt.Frequency,
		"next_date", rt.NextDate.String())

	return rt, nil
}

// UpdateRecurring replaces the mutable fields of the row with the given id.
func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, id string, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions
		 SET type = ?, category = ?, amount_cents = ?, description = ?, frequency = ?, next_date = ?, updated_at = ?
		 WHERE id = ?`,
		string(rt.Type), rt.Category, rt.Amount.Cents, rt.Description,
		string(rt.Frequency), rt.NextDate.String(), formatTime(r.now().UTC()), id)
	if err != nil {
		return core.RecurringTransaction{}, unavailable("update recurring transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.RecurringTransaction{}, fmt.Errorf("%w: recurring transaction %s", store.ErrNotFound, id)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, category, amount_cents, description, frequency, next_date, created_at, updated_at
		 FROM recurring_transactions WHERE id = ?`, id)
	out, err := scanRecurring(row)
	if err != nil {
		return core.RecurringTransaction{}, unavailable("get recurring transaction", err)
	}
	return out, nil
}

// DeleteRecurring removes the row with the given id.
func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return unavailable("delete recurring transaction", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: recurring transaction %s", store.ErrNotFound, id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		typ, date            string
		createdAt, updatedAt string
	)
	if err := s.Scan(&t.ID, &typ, &t.Category, &t.Amount.Cents, &t.Description, &date, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)

	var err error
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func scanRecurring(s scanner) (core.RecurringTransaction, error) {
	var (
		rt                   core.RecurringTransaction
		typ, freq, nextDate  string
		createdAt, updatedAt string
	)
	if err := s.Scan(&rt.ID, &typ, &rt.Category, &rt.Amount.Cents, &rt.Description, &freq, &nextDate, &createdAt, &updatedAt); err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.Type = core.TransactionType(typ)
	rt.Frequency = core.Frequency(freq)

	var err error
	if rt.NextDate, err = core.ParseDate(nextDate); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse next date %q: %w", nextDate, err)
	}
	rt.CreatedAt = parseTime(createdAt)
	rt.UpdatedAt = parseTime(updatedAt)
	return rt, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
}
