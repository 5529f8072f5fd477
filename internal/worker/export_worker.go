// Package worker mirrors the persisted collection to a CSV file. It
// reacts to change messages from the broker and also runs a periodic
// pass to catch anything missed while the worker was down.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"saldo/internal/amqp"
	"saldo/internal/csvio"
	"saldo/internal/storage"
)

// ExportWorker writes CSV snapshots of the stored collection.
type ExportWorker struct {
	slot       storage.Slot
	exportPath string
}

func NewExportWorker(slot storage.Slot, exportPath string) *ExportWorker {
	return &ExportWorker{
		slot:       slot,
		exportPath: exportPath,
	}
}

// HandleChange reloads the collection and rewrites the export file.
// The message only announces that something changed; storage stays the
// source of truth.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Handling change message",
		"op", msg.Op, "count", msg.Count, "version", msg.Version)
	return w.Export(ctx)
}

// Export loads the collection and writes it to the export path. The
// file is written to a temp name first and renamed, so readers never
// see a partial export.
func (w *ExportWorker) Export(ctx context.Context) error {
	items, err := w.slot.Load(ctx)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}

	csv := csvio.Export(items)

	if dir := filepath.Dir(w.exportPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	tmp := w.exportPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(csv), 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	if err := os.Rename(tmp, w.exportPath); err != nil {
		return fmt.Errorf("replace export file: %w", err)
	}

	slog.InfoContext(ctx, "Collection exported",
		"path", w.exportPath, "count", len(items))
	return nil
}
