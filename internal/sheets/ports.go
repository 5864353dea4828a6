// Package sheets defines the export port the sync-worker writes through.
package sheets

import (
	"context"

	"divebooks/internal/core"
)

// RowExporter mirrors ledger rows into an external spreadsheet. Export is a
// convenience for the owner's offline bookkeeping; the SQLite store stays the
// canonical record.
type RowExporter interface {
	// AppendTransaction writes one row for the transaction. Re-exporting an
	// id that already has a row replaces it.
	AppendTransaction(ctx context.Context, t core.Transaction) error
	// RemoveTransaction clears the row holding the given id, if any.
	RemoveTransaction(ctx context.Context, id string) error
}
