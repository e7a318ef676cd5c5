package demo

import "budget/internal/core"

// Fixed sample data set used when the snapshot slots are absent. The
// January 2025 transactions sum to 7000 income and 970 expenses.
func seedTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Type: core.Income, Category: "Salary", Amount: core.Money{Cents: 500000}, Description: "Monthly salary", Date: core.NewDate(2025, 1, 1)},
		{ID: "2", Type: core.Income, Category: "Freelance", Amount: core.Money{Cents: 120000}, Description: "Web development project", Date: core.NewDate(2025, 1, 5)},
		{ID: "3", Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 45000}, Description: "Groceries", Date: core.NewDate(2025, 1, 3)},
		{ID: "4", Type: core.Expense, Category: "Transportation", Amount: core.Money{Cents: 12000}, Description: "Monthly bus pass", Date: core.NewDate(2025, 1, 2)},
		{ID: "5", Type: core.Expense, Category: "Entertainment", Amount: core.Money{Cents: 8000}, Description: "Movie tickets", Date: core.NewDate(2025, 1, 10)},
		{ID: "6", Type: core.Expense, Category: "Bills", Amount: core.Money{Cents: 20000}, Description: "Internet bill", Date: core.NewDate(2025, 1, 8)},
		{ID: "7", Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 2500}, Description: "Coffee shop", Date: core.NewDate(2025, 1, 12)},
		{ID: "8", Type: core.Income, Category: "Freelance", Amount: core.Money{Cents: 80000}, Description: "Logo design", Date: core.NewDate(2025, 1, 15)},
		{ID: "9", Type: core.Expense, Category: "Transportation", Amount: core.Money{Cents: 3500}, Description: "Gas", Date: core.NewDate(2025, 1, 14)},
		{ID: "10", Type: core.Expense, Category: "Entertainment", Amount: core.Money{Cents: 6000}, Description: "Streaming services", Date: core.NewDate(2025, 1, 16)},
	}
}

func seedRecurring() []core.RecurringTransaction {
	return []core.RecurringTransaction{
		{ID: "r1", Type: core.Income, Category: "Salary", Amount: core.Money{Cents: 500000}, Description: "Monthly salary", Frequency: core.Monthly, NextDate: core.NewDate(2025, 2, 1)},
		{ID: "r2", Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 10000}, Description: "Weekly groceries", Frequency: core.Weekly, NextDate: core.NewDate(2025, 1, 20)},
		{ID: "r3", Type: core.Expense, Category: "Bills", Amount: core.Money{Cents: 20000}, Description: "Internet bill", Frequency: core.Monthly, NextDate: core.NewDate(2025, 2, 8)},
		{ID: "r4", Type: core.Expense, Category: "Transportation", Amount: core.Money{Cents: 12000}, Description: "Monthly bus pass", Frequency: core.Monthly, NextDate: core.NewDate(2025, 2, 2)},
	}
}
