package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/store"
)

type fakeReader struct {
	txs map[string]core.Transaction
}

func (r *fakeReader) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	tx, ok := r.txs[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}
	return tx, nil
}

type fakeWriter struct {
	appended []string
	removed  []string
	fail     error
}

func (w *fakeWriter) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if w.fail != nil {
		return "", w.fail
	}
	w.appended = append(w.appended, t.ID)
	return "Transactions!A2:F2", nil
}

func (w *fakeWriter) RemoveTransaction(_ context.Context, id string) error {
	if w.fail != nil {
		return w.fail
	}
	w.removed = append(w.removed, id)
	return nil
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        core.Expense,
		Category:    "Food",
		Amount:      core.Money{Cents: 2500},
		Description: "Lunch",
		Date:        core.NewDate(2025, 1, 15),
	}
}

func TestExportWorker_Created(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"t1": sampleTx("t1")}}
	writer := &fakeWriter{}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityTransaction, amqp.ActionCreated, "t1"))
	if err != nil {
		t.Fatalf("HandleChangeEvent() error = %v", err)
	}
	if len(writer.appended) != 1 || writer.appended[0] != "t1" {
		t.Errorf("appended = %v, want [t1]", writer.appended)
	}
	if len(writer.removed) != 0 {
		t.Errorf("removed = %v, want none", writer.removed)
	}
}

func TestExportWorker_UpdatedReplacesRow(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"t1": sampleTx("t1")}}
	writer := &fakeWriter{}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityTransaction, amqp.ActionUpdated, "t1"))
	if err != nil {
		t.Fatalf("HandleChangeEvent() error = %v", err)
	}
	if len(writer.removed) != 1 || writer.removed[0] != "t1" {
		t.Errorf("removed = %v, want [t1]", writer.removed)
	}
	if len(writer.appended) != 1 {
		t.Errorf("appended = %v, want one entry", writer.appended)
	}
}

func TestExportWorker_Deleted(t *testing.T) {
	reader := &fakeReader{}
	writer := &fakeWriter{}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityTransaction, amqp.ActionDeleted, "t1"))
	if err != nil {
		t.Fatalf("HandleChangeEvent() error = %v", err)
	}
	if len(writer.removed) != 1 {
		t.Errorf("removed = %v, want [t1]", writer.removed)
	}
}

func TestExportWorker_VanishedTransactionIsDropped(t *testing.T) {
	reader := &fakeReader{}
	writer := &fakeWriter{}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityTransaction, amqp.ActionCreated, "gone"))
	if err != nil {
		t.Errorf("HandleChangeEvent() error = %v, want nil for vanished transaction", err)
	}
	if len(writer.appended) != 0 {
		t.Errorf("appended = %v, want none", writer.appended)
	}
}

func TestExportWorker_SkipsRecurringEvents(t *testing.T) {
	reader := &fakeReader{}
	writer := &fakeWriter{}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityRecurring, amqp.ActionCreated, "r1"))
	if err != nil {
		t.Errorf("HandleChangeEvent() error = %v, want nil for recurring event", err)
	}
	if len(writer.appended) != 0 || len(writer.removed) != 0 {
		t.Error("recurring events must not touch the writer")
	}
}

func TestExportWorker_WriterFailureRequeues(t *testing.T) {
	reader := &fakeReader{txs: map[string]core.Transaction{"t1": sampleTx("t1")}}
	writer := &fakeWriter{fail: errors.New("spreadsheet down")}
	w := NewExportWorker(reader, writer, nil)

	err := w.HandleChangeEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityTransaction, amqp.ActionCreated, "t1"))
	if err == nil {
		t.Error("HandleChangeEvent() error = nil, want failure to trigger requeue")
	}
}
