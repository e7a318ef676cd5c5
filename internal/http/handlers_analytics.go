package http

import (
	"net/http"
	"strings"

	"budget/internal/core"
	"budget/internal/core/report"
)

type summaryResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type categoryBreakdownDTO struct {
	Category string  `json:"category"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
}

type monthlyPointDTO struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type categoryShareDTO struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// periodTransactions loads the transaction collection filtered by the
// optional period and date query parameters. ok is false when the
// response has already been written.
func (s *Server) periodTransactions(w http.ResponseWriter, r *http.Request) ([]core.Transaction, bool) {
	txs, err := s.listTransactions(r.Context())
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return nil, false
	}

	ref, ok := s.referenceDate(w, r)
	if !ok {
		return nil, false
	}

	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return txs, true
	}

	period := report.Period(raw)
	if !period.Valid() {
		respondDetail(w, http.StatusUnprocessableEntity, "unknown period: "+raw)
		return nil, false
	}

	return report.FilterByPeriod(txs, period, ref), true
}

// referenceDate resolves the optional date query parameter, the
// reference date period filtering is anchored to. It defaults to
// today. ok is false when the response has already been written.
func (s *Server) referenceDate(w http.ResponseWriter, r *http.Request) (core.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		now := s.now().UTC()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), true
	}

	ref, err := core.ParseDate(raw)
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid date: "+raw)
		return core.Date{}, false
	}
	return ref, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.periodTransactions(w, r)
	if !ok {
		return
	}

	summary := report.Summarize(txs)
	respondJSON(w, http.StatusOK, summaryResponse{
		Income:   summary.Income.Float(),
		Expenses: summary.Expenses.Float(),
		Balance:  summary.Balance.Float(),
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.periodTransactions(w, r)
	if !ok {
		return
	}

	breakdown := report.BreakdownByCategory(txs)
	out := make([]categoryBreakdownDTO, 0, len(breakdown))
	for _, b := range breakdown {
		out = append(out, categoryBreakdownDTO{
			Category: b.Category,
			Income:   b.Income.Float(),
			Expense:  b.Expense.Float(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.periodTransactions(w, r)
	if !ok {
		return
	}

	points := report.GroupByMonth(txs)
	out := make([]monthlyPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, monthlyPointDTO{
			Month:    p.Month,
			Income:   p.Income.Float(),
			Expenses: p.Expenses.Float(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryShares(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(strings.TrimSpace(r.URL.Query().Get("type")))
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Valid() {
		respondDetail(w, http.StatusUnprocessableEntity, "unknown transaction type: "+string(typ))
		return
	}

	txs, ok := s.periodTransactions(w, r)
	if !ok {
		return
	}

	shares := report.CategoryShares(report.TotalsForType(txs, typ))
	out := make([]categoryShareDTO, 0, len(shares))
	for _, sh := range shares {
		out = append(out, categoryShareDTO{
			Category:   sh.Category,
			Amount:     sh.Amount.Float(),
			Percentage: sh.Percentage,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
