package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/store"
)

// transactionDTO is the wire shape of a transaction. Amounts travel as
// decimal numbers, dates as YYYY-MM-DD strings.
type transactionDTO struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type recurringDTO struct {
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

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
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

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

func toRecurringDTO(rt core.RecurringTransaction) recurringDTO {
	return recurringDTO{
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

func toRecurringDTOs(rts []core.RecurringTransaction) []recurringDTO {
	out := make([]recurringDTO, 0, len(rts))
	for _, rt := range rts {
		out = append(out, toRecurringDTO(rt))
	}
	return out
}

// transactionPayload carries create and update bodies. Pointer fields
// distinguish absent fields from zero values so updates can be partial.
type transactionPayload struct {
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type recurringPayload struct {
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Frequency   *string  `json:"frequency"`
}

// apply merges the payload onto base, converting wire values to domain
// values. Unknown amounts and malformed dates are validation errors.
func (p transactionPayload) apply(base core.Transaction) (core.Transaction, error) {
	if p.Type != nil {
		base.Type = core.TransactionType(*p.Type)
	}
	if p.Category != nil {
		base.Category = *p.Category
	}
	if p.Amount != nil {
		amount, err := core.MoneyFromFloat(*p.Amount)
		if err != nil {
			return core.Transaction{}, err
		}
		base.Amount = amount
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	if p.Date != nil {
		date, err := core.ParseDate(*p.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		base.Date = date
	}
	return base, nil
}

func (p recurringPayload) apply(base core.RecurringTransaction) (core.RecurringTransaction, error) {
	if p.Type != nil {
		base.Type = core.TransactionType(*p.Type)
	}
	if p.Category != nil {
		base.Category = *p.Category
	}
	if p.Amount != nil {
		amount, err := core.MoneyFromFloat(*p.Amount)
		if err != nil {
			return core.RecurringTransaction{}, err
		}
		base.Amount = amount
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	if p.Frequency != nil {
		base.Frequency = core.Frequency(*p.Frequency)
	}
	return base, nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondDetail writes an error body in the {"detail": ...} shape.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// respondStoreError maps the store error taxonomy to HTTP statuses.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		respondDetail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		slog.ErrorContext(ctx, "Store unavailable", "error", err)
		respondDetail(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		slog.ErrorContext(ctx, "Unexpected error", "error", err)
		respondDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
