package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	TransactionType string

	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Type        TransactionType
		Category    string
		Amount      Money
		Description string
		Date        Date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	RecurringTransaction struct {
		ID          string
		Type        TransactionType
		Category    string
		Amount      Money
		Description string
		Frequency   Frequency
		NextDate    Date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrUnknownCategory  = errors.New("unknown category for transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDate      = errors.New("invalid date")
)

// categoriesByType is the static per-type category registry. Membership is
// checked at the store boundary, not only in form widgets.
var categoriesByType = map[TransactionType][]string{
	Income:  {"Salary", "Freelance", "Investment", "Business", "Other"},
	Expense: {"Food", "Transportation", "Entertainment", "Bills", "Healthcare", "Shopping", "Other"},
}

// CategoriesFor returns the allowed categories for a transaction type.
func CategoriesFor(t TransactionType) []string {
	return append([]string(nil), categoriesByType[t]...)
}

// ValidCategory reports whether category is allowed for the given type.
func ValidCategory(t TransactionType, category string) bool {
	for _, c := range categoriesByType[t] {
		if c == category {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks Money invariants. Amounts are never negative; the sign
// of a transaction is carried by its type.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !ValidCategory(t.Type, t.Category) {
		return ErrUnknownCategory
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if !rt.Type.Valid() {
		return ErrInvalidType
	}
	if !rt.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if len(strings.TrimSpace(rt.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(rt.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if !ValidCategory(rt.Type, rt.Category) {
		return ErrUnknownCategory
	}
	return nil
}
