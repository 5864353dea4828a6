// Package worker contains the sync-worker's event handling: it mirrors
// transaction changes from the store into the export spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"divebooks/internal/amqp"
	"divebooks/internal/ledger"
	"divebooks/internal/sheets"
)

type SyncWorker struct {
	store    ledger.TransactionStore
	exporter sheets.RowExporter
}

func NewSyncWorker(store ledger.TransactionStore, exporter sheets.RowExporter) *SyncWorker {
	return &SyncWorker{store: store, exporter: exporter}
}

// HandleEvent processes one change event. Upserts fetch the current row from
// the store so the export always reflects the latest write, not the event
// payload. A row that vanished between the event and the fetch is treated as
// deleted.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", event.ID,
		"action", event.Action)

	switch event.Action {
	case amqp.ActionUpsert:
		t, err := w.store.GetTransaction(ctx, event.ID)
		if errors.Is(err, ledger.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before export, removing row", "id", event.ID)
			return w.exporter.RemoveTransaction(ctx, event.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction for export: %w", err)
		}
		if err := w.exporter.AppendTransaction(ctx, t); err != nil {
			return fmt.Errorf("export transaction: %w", err)
		}
		return nil

	case amqp.ActionDelete:
		if err := w.exporter.RemoveTransaction(ctx, event.ID); err != nil {
			return fmt.Errorf("remove exported transaction: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown event action %q", event.Action)
	}
}

// ExportAll pushes every stored transaction to the exporter. Used at worker
// startup to catch rows whose events were lost while the worker was down.
func (w *SyncWorker) ExportAll(ctx context.Context) (int, error) {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions for startup export: %w", err)
	}
	exported := 0
	for _, t := range txs {
		if err := w.exporter.AppendTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Startup export failed for transaction",
				"id", t.ID, "error", err)
			continue
		}
		exported++
	}
	return exported, nil
}
