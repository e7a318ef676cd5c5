// Package report computes aggregated views over transaction collections.
//
// Every function here is pure: the reference date is an explicit parameter,
// nothing reads the system clock, and the same input always yields the same
// output. Malformed or empty input degrades to zero/empty results instead
// of an error.
package report

import (
	"sort"

	"budget/internal/core"
)

const (
	PeriodCurrentMonth    Period = "current-month"
	PeriodLastThreeMonths Period = "last-3-months"
	PeriodYearly          Period = "yearly"
)

type (
	// Period selects a named date range relative to a reference date.
	Period string

	// Summary holds income/expense totals and their balance.
	Summary struct {
		Income   core.Money
		Expenses core.Money
		Balance  core.Money
	}

	// CategoryBreakdown accumulates income and expense totals for one category.
	CategoryBreakdown struct {
		Category string
		Income   core.Money
		Expense  core.Money
	}

	// MonthlyPoint is one month's income/expense totals in a trend series.
	MonthlyPoint struct {
		Month    string // short month + year, e.g. "Jan 2025"
		Income   core.Money
		Expenses core.Money
	}

	// CategoryTotal is a single category's accumulated amount, the input
	// shape for CategoryShares.
	CategoryTotal struct {
		Category string
		Amount   core.Money
	}

	// CategoryShare is a category's slice of the total, for chart rendering.
	CategoryShare struct {
		Category   string
		Amount     core.Money
		Percentage float64
	}
)

// Valid reports whether p is one of the known period selectors.
func (p Period) Valid() bool {
	switch p {
	case PeriodCurrentMonth, PeriodLastThreeMonths, PeriodYearly:
		return true
	default:
		return false
	}
}

// FilterByPeriod keeps the transactions falling inside the named period
// relative to ref, preserving input order. An unrecognized period returns
// the input unchanged.
func FilterByPeriod(txs []core.Transaction, period Period, ref core.Date) []core.Transaction {
	var keep func(core.Transaction) bool

	switch period {
	case PeriodCurrentMonth:
		keep = func(t core.Transaction) bool {
			return t.Date.Year() == ref.Year() && t.Date.Month() == ref.Month()
		}
	case PeriodLastThreeMonths:
		cutoff := ref.AddDate(0, -3, 0)
		keep = func(t core.Transaction) bool {
			return !t.Date.Before(cutoff)
		}
	case PeriodYearly:
		keep = func(t core.Transaction) bool {
			return t.Date.Year() == ref.Year()
		}
	default:
		return txs
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize sums income and expenses over the collection. Entries with an
// unknown type are ignored.
func Summarize(txs []core.Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// BreakdownByCategory accumulates amounts per category into the field
// matching each transaction's type. Categories absent from the input do
// not appear in the output; order follows first occurrence.
func BreakdownByCategory(txs []core.Transaction) []CategoryBreakdown {
	index := make(map[string]int)
	out := make([]CategoryBreakdown, 0)

	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryBreakdown{Category: t.Category})
		}
		switch t.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(t.Amount)
		}
	}
	return out
}

// GroupByMonth accumulates income/expense totals per month label. Months
// appear in first-occurrence order of the input; callers wanting a
// chronological series must pre-sort by date.
func GroupByMonth(txs []core.Transaction) []MonthlyPoint {
	index := make(map[string]int)
	out := make([]MonthlyPoint, 0)

	for _, t := range txs {
		label := t.Date.Format("Jan 2006")
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, MonthlyPoint{Month: label})
		}
		switch t.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		case core.Expense:
			out[i].Expenses = out[i].Expenses.Add(t.Amount)
		}
	}
	return out
}

// TotalsForType reduces a collection to per-category totals for one
// transaction type, in first-occurrence order. This is the feeder for
// CategoryShares.
func TotalsForType(txs []core.Transaction, typ core.TransactionType) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)

	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// CategoryShares computes each category's percentage of the grand total,
// sorted descending by amount. The sort is stable so ties keep their
// encounter order. A zero total yields zero percentages.
func CategoryShares(totals []CategoryTotal) []CategoryShare {
	var total int64
	for _, ct := range totals {
		total += ct.Amount.Cents
	}

	out := make([]CategoryShare, len(totals))
	for i, ct := range totals {
		share := CategoryShare{Category: ct.Category, Amount: ct.Amount}
		if total > 0 {
			share.Percentage = float64(ct.Amount.Cents) / float64(total) * 100
		}
		out[i] = share
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}
