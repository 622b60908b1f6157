// Package worker mirrors the local snapshot to the spreadsheet when a
// dataset-replaced message arrives. Keeping the sheet write out of the
// request path means a flaky sheet API delays sync instead of failing edits.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"presupuesto/internal/amqp"
	"presupuesto/internal/sheets"
)

type SyncWorker struct {
	source sheets.TableLoader   // local snapshot (sqlite)
	target sheets.TableReplacer // spreadsheet
}

func NewSyncWorker(source sheets.TableLoader, target sheets.TableReplacer) *SyncWorker {
	return &SyncWorker{source: source, target: target}
}

// HandleDatasetReplaced reloads the snapshot and rewrites the sheet. The
// message is only a trigger; the snapshot is the source of truth, so
// out-of-order deliveries converge on the latest state.
func (w *SyncWorker) HandleDatasetReplaced(ctx context.Context, msg *amqp.DatasetReplacedMessage) error {
	table, err := w.source.LoadTable(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := w.target.ReplaceTable(ctx, table); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	slog.InfoContext(ctx, "Synced snapshot to sheet",
		"rows", len(table.Rows),
		"trigger_rows", msg.Rows,
		"trigger_source", msg.Source)
	return nil
}
