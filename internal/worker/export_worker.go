// Package worker consumes ledger events and mirrors the affected rows to the
// Google Sheets export.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"movimenti/internal/amqp"
	"movimenti/internal/core"
)

// TransactionReader loads transaction rows for export. Soft-deleted rows are
// still readable so a deletion can be mirrored after the fact.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id int64) (core.StoredTransaction, error)
}

// LedgerExporter appends rows to the external mirror.
type LedgerExporter interface {
	AppendTransaction(ctx context.Context, t core.StoredTransaction) (string, error)
	AppendDeletion(ctx context.Context, t core.StoredTransaction) (string, error)
}

// ExportWorker resolves ledger events against storage and forwards the rows
// to the exporter.
type ExportWorker struct {
	storage  TransactionReader
	exporter LedgerExporter
}

func NewExportWorker(storage TransactionReader, exporter LedgerExporter) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		exporter: exporter,
	}
}

// HandleLedgerEvent processes one event. A returned error requeues the
// delivery, so only transient failures should surface; unknown event types
// are dropped with a warning.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	txn, err := w.storage.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", msg.TransactionID, err)
	}

	switch msg.Type {
	case amqp.EventTransactionCreated:
		ref, err := w.exporter.AppendTransaction(ctx, txn)
		if err != nil {
			return fmt.Errorf("export transaction %d: %w", txn.ID, err)
		}
		slog.InfoContext(ctx, "Transaction exported",
			"event_id", msg.EventID, "transaction_id", txn.ID, "ref", ref)
	case amqp.EventTransactionDeleted:
		ref, err := w.exporter.AppendDeletion(ctx, txn)
		if err != nil {
			return fmt.Errorf("export deletion of transaction %d: %w", txn.ID, err)
		}
		slog.InfoContext(ctx, "Transaction deletion exported",
			"event_id", msg.EventID, "transaction_id", txn.ID, "ref", ref)
	default:
		slog.WarnContext(ctx, "Dropping ledger event of unknown type",
			"event_id", msg.EventID, "type", msg.Type)
	}

	return nil
}
