package demo

import (
	"time"

	"budget/internal/core"
)

// Snapshot records mirror the wire shapes: amounts as whole currency
// units, dates as YYYY-MM-DD strings.
type (
	transactionRecord struct {
		ID          string    `json:"id"`
		Type        string    `json:"type"`
		Category    string    `json:"category"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Date        string    `json:"date"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	recurringRecord struct {
		ID          string    `json:"id"`
		Type        string    `json:"type"`
		Category    string    `json:"category"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Frequency   string    `json:"frequency"`
		NextDate    string    `json:"nextDate"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
)

func encodeTransactions(txs []core.Transaction) []transactionRecord {
	out := make([]transactionRecord, len(txs))
	for i, t := range txs {
		out[i] = transactionRecord{
			ID:          t.ID,
			Type:        string(t.Type),
			Category:    t.Category,
			Amount:      t.Amount.Float(),
			Description: t.Description,
			Date:        t.Date.String(),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
	}
	return out
}

func decodeTransactions(records []transactionRecord) []core.Transaction {
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		date, err := core.ParseDate(r.Date)
		if err != nil {
			continue // skip corrupt rows rather than failing startup
		}
		amount, err := core.MoneyFromFloat(r.Amount)
		if err != nil {
			continue
		}
		out = append(out, core.Transaction{
			ID:          r.ID,
			Type:        core.TransactionType(r.Type),
			Category:    r.Category,
			Amount:      amount,
			Description: r.Description,
			Date:        date,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

func encodeRecurring(recs []core.RecurringTransaction) []recurringRecord {
	out := make([]recurringRecord, len(recs))
	for i, rt := range recs {
		out[i] = recurringRecord{
			ID:          rt.ID,
			Type:        string(rt.Type),
			Category:    rt.Category,
			Amount:      rt.Amount.Float(),
			Description: rt.Description,
			Frequency:   string(rt.Frequency),
			NextDate:    rt.NextDate.String(),
			CreatedAt:   rt.CreatedAt,
			UpdatedAt:   rt.UpdatedAt,
		}
	}
	return out
}

func decodeRecurring(records []recurringRecord) []core.RecurringTransaction {
	out := make([]core.RecurringTransaction, 0, len(records))
	for _, r := range records {
		next, err := core.ParseDate(r.NextDate)
		if err != nil {
			continue
		}
		amount, err := core.MoneyFromFloat(r.Amount)
		if err != nil {
			continue
		}
		out = append(out, core.RecurringTransaction{
			ID:          r.ID,
			Type:        core.TransactionType(r.Type),
			Category:    r.Category,
			Amount:      amount,
			Description: r.Description,
			Frequency:   core.Frequency(r.Frequency),
			NextDate:    next,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}
