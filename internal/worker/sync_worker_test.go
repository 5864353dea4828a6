package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"divebooks/internal/amqp"
	"divebooks/internal/core"
	"divebooks/internal/ledger/memory"
)

type fakeExporter struct {
	appended []core.Transaction
	removed  []string
	fail     bool
}

func (f *fakeExporter) AppendTransaction(_ context.Context, t core.Transaction) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, t)
	return nil
}

func (f *fakeExporter) RemoveTransaction(_ context.Context, id string) error {
	if f.fail {
		return errors.New("sheets unavailable")
	}
	f.removed = append(f.removed, id)
	return nil
}

func seed(t *testing.T, store *memory.Store) core.Transaction {
	t.Helper()
	created, err := store.CreateTransaction(context.Background(), core.Transaction{
		Type:     core.Expense,
		Category: "Fuel",
		Amount:   core.Money{Cents: 2500},
		Currency: core.EGP,
		Date:     time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return created
}

func TestHandleUpsertExportsCurrentRow(t *testing.T) {
	store := memory.New()
	created := seed(t, store)
	exp := &fakeExporter{}
	w := NewSyncWorker(store, exp)

	if err := w.HandleEvent(context.Background(), amqp.NewUpsertEvent(created.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.appended) != 1 || exp.appended[0].ID != created.ID {
		t.Errorf("appended = %+v", exp.appended)
	}
}

func TestHandleUpsertForVanishedRowRemoves(t *testing.T) {
	store := memory.New()
	exp := &fakeExporter{}
	w := NewSyncWorker(store, exp)

	if err := w.HandleEvent(context.Background(), amqp.NewUpsertEvent("gone")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.removed) != 1 || exp.removed[0] != "gone" {
		t.Errorf("removed = %v, want [gone]", exp.removed)
	}
}

func TestHandleDelete(t *testing.T) {
	store := memory.New()
	exp := &fakeExporter{}
	w := NewSyncWorker(store, exp)

	if err := w.HandleEvent(context.Background(), amqp.NewDeleteEvent("abc")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(exp.removed) != 1 || exp.removed[0] != "abc" {
		t.Errorf("removed = %v", exp.removed)
	}
}

func TestHandleExporterFailurePropagates(t *testing.T) {
	store := memory.New()
	created := seed(t, store)
	w := NewSyncWorker(store, &fakeExporter{fail: true})

	if err := w.HandleEvent(context.Background(), amqp.NewUpsertEvent(created.ID)); err == nil {
		t.Fatal("exporter failure must propagate so the event is requeued")
	}
}

func TestHandleUnknownAction(t *testing.T) {
	w := NewSyncWorker(memory.New(), &fakeExporter{})
	event := &amqp.TransactionEvent{ID: "x", Action: "explode"}
	if err := w.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("unknown action must error")
	}
}

func TestExportAll(t *testing.T) {
	store := memory.New()
	seed(t, store)
	seed(t, store)
	exp := &fakeExporter{}
	w := NewSyncWorker(store, exp)

	count, err := w.ExportAll(context.Background())
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if count != 2 || len(exp.appended) != 2 {
		t.Errorf("count = %d, appended = %d, want 2 each", count, len(exp.appended))
	}
}
