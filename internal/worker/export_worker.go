package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/export"
	"budget/internal/metrics"
	"budget/internal/store"
)

// TransactionReader loads single transactions for export. The SQLite
// repository satisfies it.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// ExportWorker mirrors transaction changes into the export spreadsheet.
// It consumes change events and keeps one row per transaction.
type ExportWorker struct {
	reader    TransactionReader
	writer    export.Writer
	collector *metrics.Collector
}

func NewExportWorker(reader TransactionReader, writer export.Writer, collector *metrics.Collector) *ExportWorker {
	return &ExportWorker{
		reader:    reader,
		writer:    writer,
		collector: collector,
	}
}

// HandleChangeEvent processes one change event. Returning an error
// requeues the delivery, so events that can never succeed are logged
// and dropped instead.
func (w *ExportWorker) HandleChangeEvent(ctx context.Context, event *amqp.ChangeEvent) error {
	if event.Entity != amqp.EntityTransaction {
		// Recurring templates are not mirrored, only materialized transactions
		slog.DebugContext(ctx, "Skipping non-transaction event",
			"entity", event.Entity,
			"action", event.Action,
			"id", event.ID)
		return nil
	}

	start := time.Now()
	err := w.apply(ctx, event)
	if w.collector != nil {
		w.collector.RecordExport(err == nil, time.Since(start))
	}
	return err
}

func (w *ExportWorker) apply(ctx context.Context, event *amqp.ChangeEvent) error {
	switch event.Action {
	case amqp.ActionDeleted:
		if err := w.writer.RemoveTransaction(ctx, event.ID); err != nil {
			return fmt.Errorf("remove exported row: %w", err)
		}
		return nil

	case amqp.ActionCreated, amqp.ActionUpdated:
		tx, err := w.reader.GetTransaction(ctx, event.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted before the event was consumed, nothing to export
			slog.WarnContext(ctx, "Transaction vanished before export", "id", event.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}

		if event.Action == amqp.ActionUpdated {
			// Replace the row rather than appending a duplicate
			if err := w.writer.RemoveTransaction(ctx, event.ID); err != nil {
				return fmt.Errorf("remove stale row: %w", err)
			}
		}

		ref, err := w.writer.AppendTransaction(ctx, tx)
		if err != nil {
			return fmt.Errorf("append row: %w", err)
		}

		slog.InfoContext(ctx, "Exported transaction",
			"id", tx.ID,
			"action", event.Action,
			"sheets_ref", ref)
		return nil

	default:
		slog.WarnContext(ctx, "Unknown change action", "action", event.Action, "id", event.ID)
		return nil
	}
}
