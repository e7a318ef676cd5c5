package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
	"budget/internal/core/schedule"
)

// RecurringProcessor materializes due recurring transactions into
// concrete transactions and advances their next occurrence dates.
type RecurringProcessor struct {
	service *BudgetService
}

func NewRecurringProcessor(service *BudgetService) *RecurringProcessor {
	return &RecurringProcessor{service: service}
}

// ProcessDue creates a transaction for every recurring entry whose next
// occurrence date is on or before now, then moves that entry forward by
// one period. Returns the number of entries processed.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.service == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.NewDate(now.Year(), int(now.Month()), now.Day())

	recurring, err := p.service.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total", len(recurring),
		"processing_date", today.String())

	processedCount := 0

	for _, rt := range recurring {
		if rt.NextDate.After(today.Time) {
			continue
		}

		tx := core.Transaction{
			Type:        rt.Type,
			Category:    rt.Category,
			Amount:      rt.Amount,
			Description: rt.Description,
			Date:        rt.NextDate,
		}

		if _, err := p.service.CreateTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", rt.ID,
				"description", rt.Description,
				"error", err)
			continue
		}

		next, err := schedule.NextDate(rt.Frequency, rt.NextDate)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to advance next occurrence date",
				"recurring_id", rt.ID,
				"frequency", rt.Frequency,
				"error", err)
			continue
		}

		rt.NextDate = next
		if _, err := p.service.UpdateRecurring(ctx, rt.ID, rt); err != nil {
			slog.ErrorContext(ctx, "Failed to update next occurrence date",
				"recurring_id", rt.ID,
				"error", err)
			// Continue anyway, the transaction was created
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", rt.ID,
			"description", rt.Description,
			"amount_cents", rt.Amount.Cents,
			"frequency", rt.Frequency)
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processedCount,
		"total_checked", len(recurring))

	return processedCount, nil
}
