package report

import (
	"math"
	"testing"

	"budget/internal/core"
)

func tx(typ core.TransactionType, category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		Type:     typ,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}
}

func TestPeriod_Valid(t *testing.T) {
	tests := []struct {
		period Period
		want   bool
	}{
		{PeriodCurrentMonth, true},
		{PeriodLastThreeMonths, true},
		{PeriodYearly, true},
		{Period(""), false},
		{Period("weekly"), false},
	}

	for _, tt := range tests {
		if got := tt.period.Valid(); got != tt.want {
			t.Errorf("Period(%q).Valid() = %v, want %v", tt.period, got, tt.want)
		}
	}
}

func TestFilterByPeriod(t *testing.T) {
	ref := core.NewDate(2025, 1, 20)
	txs := []core.Transaction{
		tx(core.Income, "Salary", 100, core.NewDate(2025, 1, 5)),
		tx(core.Expense, "Food", 200, core.NewDate(2024, 12, 15)),
		tx(core.Expense, "Bills", 300, core.NewDate(2024, 10, 19)),
		tx(core.Income, "Freelance", 400, core.NewDate(2024, 3, 1)),
	}

	tests := []struct {
		name   string
		period Period
		want   int
	}{
		{"current month", PeriodCurrentMonth, 1},
		{"last three months", PeriodLastThreeMonths, 2},
		{"yearly", PeriodYearly, 1},
		{"unknown period passes through", Period("bogus"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPeriod(txs, tt.period, ref)
			if len(got) != tt.want {
				t.Errorf("FilterByPeriod(%q) kept %d transactions, want %d", tt.period, len(got), tt.want)
			}
		})
	}

	t.Run("cutoff boundary is inclusive", func(t *testing.T) {
		boundary := []core.Transaction{
			tx(core.Expense, "Food", 100, core.NewDate(2024, 10, 20)),
		}
		got := FilterByPeriod(boundary, PeriodLastThreeMonths, ref)
		if len(got) != 1 {
			t.Errorf("transaction exactly at the cutoff must be kept, got %d", len(got))
		}
	})
}

func TestFilterByPeriod_Idempotent(t *testing.T) {
	ref := core.NewDate(2025, 1, 20)
	txs := []core.Transaction{
		tx(core.Income, "Salary", 100, core.NewDate(2025, 1, 5)),
		tx(core.Expense, "Food", 200, core.NewDate(2024, 12, 15)),
		tx(core.Expense, "Bills", 300, core.NewDate(2024, 10, 20)),
		tx(core.Income, "Freelance", 400, core.NewDate(2024, 3, 1)),
	}

	for _, period := range []Period{PeriodCurrentMonth, PeriodLastThreeMonths, PeriodYearly} {
		t.Run(string(period), func(t *testing.T) {
			once := FilterByPeriod(txs, period, ref)
			twice := FilterByPeriod(once, period, ref)

			if len(twice) != len(once) {
				t.Fatalf("re-filtering dropped transactions: %d -> %d", len(once), len(twice))
			}
			for i := range once {
				if twice[i] != once[i] {
					t.Errorf("transaction %d changed on re-filter", i)
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 500000, core.NewDate(2025, 1, 1)),
		tx(core.Income, "Freelance", 200000, core.NewDate(2025, 1, 10)),
		tx(core.Expense, "Food", 45000, core.NewDate(2025, 1, 12)),
		tx(core.Expense, "Bills", 52000, core.NewDate(2025, 1, 15)),
	}

	s := Summarize(txs)
	if s.Income.Cents != 700000 {
		t.Errorf("Income = %d, want 700000", s.Income.Cents)
	}
	if s.Expenses.Cents != 97000 {
		t.Errorf("Expenses = %d, want 97000", s.Expenses.Cents)
	}
	if s.Balance.Cents != 603000 {
		t.Errorf("Balance = %d, want 603000", s.Balance.Cents)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Income.Cents != 0 || s.Expenses.Cents != 0 || s.Balance.Cents != 0 {
		t.Errorf("Summarize(nil) = %+v, want all zero", s)
	}
}

func TestSummarize_NegativeBalance(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 1000, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "Bills", 2500, core.NewDate(2025, 1, 2)),
	}

	s := Summarize(txs)
	if s.Balance.Cents != -1500 {
		t.Errorf("Balance = %d, want -1500", s.Balance.Cents)
	}
}

func TestBreakdownByCategory(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", 2000, core.NewDate(2025, 1, 5)),
		tx(core.Income, "Other", 9000, core.NewDate(2025, 1, 6)),
		tx(core.Expense, "Food", 3000, core.NewDate(2025, 1, 7)),
		tx(core.Expense, "Other", 1000, core.NewDate(2025, 1, 8)),
	}

	got := BreakdownByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2", len(got))
	}

	// First-occurrence order: Food before Other
	if got[0].Category != "Food" || got[0].Expense.Cents != 5000 || got[0].Income.Cents != 0 {
		t.Errorf("Food breakdown = %+v", got[0])
	}
	// Income and expense accumulate into the same category entry
	if got[1].Category != "Other" || got[1].Income.Cents != 9000 || got[1].Expense.Cents != 1000 {
		t.Errorf("Other breakdown = %+v", got[1])
	}
}

func TestBreakdownByCategory_MatchesSummary(t *testing.T) {
	tests := []struct {
		name string
		txs  []core.Transaction
	}{
		{"empty", nil},
		{
			"single category",
			[]core.Transaction{
				tx(core.Expense, "Food", 1200, core.NewDate(2025, 1, 5)),
			},
		},
		{
			"mixed categories and types",
			[]core.Transaction{
				tx(core.Income, "Salary", 500000, core.NewDate(2025, 1, 1)),
				tx(core.Expense, "Food", 4500, core.NewDate(2025, 1, 5)),
				tx(core.Income, "Other", 9000, core.NewDate(2025, 1, 6)),
				tx(core.Expense, "Other", 1000, core.NewDate(2025, 1, 8)),
				tx(core.Expense, "Bills", 52000, core.NewDate(2025, 1, 15)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Summarize(tt.txs)

			var income, expense int64
			for _, b := range BreakdownByCategory(tt.txs) {
				income += b.Income.Cents
				expense += b.Expense.Cents
			}

			if income != summary.Income.Cents {
				t.Errorf("breakdown income sum = %d, summary income = %d", income, summary.Income.Cents)
			}
			if expense != summary.Expenses.Cents {
				t.Errorf("breakdown expense sum = %d, summary expenses = %d", expense, summary.Expenses.Cents)
			}
		})
	}
}

func TestGroupByMonth(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", 100000, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "Food", 5000, core.NewDate(2025, 1, 20)),
		tx(core.Expense, "Bills", 7000, core.NewDate(2025, 2, 3)),
	}

	got := GroupByMonth(txs)
	if len(got) != 2 {
		t.Fatalf("got %d months, want 2", len(got))
	}
	if got[0].Month != "Jan 2025" || got[0].Income.Cents != 100000 || got[0].Expenses.Cents != 5000 {
		t.Errorf("January point = %+v", got[0])
	}
	if got[1].Month != "Feb 2025" || got[1].Expenses.Cents != 7000 {
		t.Errorf("February point = %+v", got[1])
	}
}

func TestCategoryShares(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", 3000, core.NewDate(2025, 1, 1)),
		tx(core.Expense, "Bills", 6000, core.NewDate(2025, 1, 2)),
		tx(core.Expense, "Food", 1000, core.NewDate(2025, 1, 3)),
		tx(core.Income, "Salary", 99999, core.NewDate(2025, 1, 4)),
	}

	shares := CategoryShares(TotalsForType(txs, core.Expense))
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}

	// Sorted descending by amount
	if shares[0].Category != "Bills" || shares[0].Amount.Cents != 6000 {
		t.Errorf("shares[0] = %+v, want Bills 6000", shares[0])
	}
	if shares[1].Category != "Food" || shares[1].Amount.Cents != 4000 {
		t.Errorf("shares[1] = %+v, want Food 4000", shares[1])
	}

	if math.Abs(shares[0].Percentage-60) > 1e-9 {
		t.Errorf("Bills percentage = %v, want 60", shares[0].Percentage)
	}
	if math.Abs(shares[1].Percentage-40) > 1e-9 {
		t.Errorf("Food percentage = %v, want 40", shares[1].Percentage)
	}
}

func TestCategoryShares_ZeroTotal(t *testing.T) {
	shares := CategoryShares([]CategoryTotal{
		{Category: "Food", Amount: core.Money{}},
	})
	if len(shares) != 1 {
		t.Fatalf("got %d shares, want 1", len(shares))
	}
	if shares[0].Percentage != 0 {
		t.Errorf("Percentage = %v, want 0 for zero total", shares[0].Percentage)
	}
}
