package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/csvio"
	"saldo/internal/log"
	"saldo/internal/store"
)

// ErrNotFound is returned when an id does not match any transaction.
var ErrNotFound = errors.New("transaction not found")

// Publisher announces collection changes to interested consumers.
type Publisher interface {
	PublishChange(ctx context.Context, op string, count int, version uint64) error
	Close() error
}

// TrackerService orchestrates store commands, CSV transfer and change
// notifications. Publishing is best-effort: a broker outage never fails
// the command that triggered it.
type TrackerService struct {
	store     *store.Store
	publisher Publisher
}

func NewTrackerService(st *store.Store, publisher Publisher) *TrackerService {
	return &TrackerService{
		store:     st,
		publisher: publisher,
	}
}

// Store exposes the underlying store for read-side callers.
func (s *TrackerService) Store() *store.Store {
	return s.store
}

// AddResult reports the stored transaction and whether the current
// filters hide it from the paginated view.
type AddResult struct {
	Transaction     core.Transaction
	HiddenByFilters bool
}

// Add validates and stores a new transaction.
func (s *TrackerService) Add(ctx context.Context, description string, amount float64, typ core.TransactionType, date string) (AddResult, error) {
	t := core.NewTransaction(description, amount, typ, date)
	if err := t.Validate(); err != nil {
		return AddResult{}, fmt.Errorf("validate transaction: %w", err)
	}

	s.store.Add(ctx, t)

	snap := s.store.Snapshot()
	s.publishChange(ctx, log.OpAdd, snap)

	return AddResult{
		Transaction:     t,
		HiddenByFilters: !store.MatchesFilters(t, snap.Filters),
	}, nil
}

// Update replaces an existing transaction by id.
func (s *TrackerService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if !s.exists(t.ID) {
		return ErrNotFound
	}

	s.store.Update(ctx, t)
	s.publishChange(ctx, log.OpUpdate, s.store.Snapshot())
	return nil
}

// Delete removes a transaction by id.
func (s *TrackerService) Delete(ctx context.Context, id string) error {
	if !s.exists(id) {
		return ErrNotFound
	}

	s.store.Delete(ctx, id)
	s.publishChange(ctx, log.OpDelete, s.store.Snapshot())
	return nil
}

// Undo reverts the last collection change. Returns false when there is
// nothing to undo.
func (s *TrackerService) Undo(ctx context.Context) bool {
	if !s.store.CanUndo() {
		return false
	}
	s.store.Undo(ctx)
	s.publishChange(ctx, log.OpUndo, s.store.Snapshot())
	return true
}

// Redo re-applies the last undone change. Returns false when there is
// nothing to redo.
func (s *TrackerService) Redo(ctx context.Context) bool {
	if !s.store.CanRedo() {
		return false
	}
	s.store.Redo(ctx)
	s.publishChange(ctx, log.OpRedo, s.store.Snapshot())
	return true
}

// ImportCSV parses CSV text and appends the accepted rows as one batch.
func (s *TrackerService) ImportCSV(ctx context.Context, text string) (csvio.ImportResult, error) {
	snap := s.store.Snapshot()
	result, err := csvio.Import(text, snap.Items)
	if err != nil {
		return csvio.ImportResult{}, err
	}

	if len(result.Transactions) > 0 {
		s.store.ImportMany(ctx, result.Transactions)
		s.publishChange(ctx, log.OpImport, s.store.Snapshot())
	}

	slog.InfoContext(ctx, "Imported CSV",
		log.FieldOperation, log.OpImport,
		"imported", len(result.Transactions),
		"skipped", result.Skipped)

	return result, nil
}

// ExportCSV renders the full collection as CSV text.
func (s *TrackerService) ExportCSV(ctx context.Context) string {
	snap := s.store.Snapshot()
	slog.DebugContext(ctx, "Exported CSV",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(snap.Items))
	return csvio.Export(snap.Items)
}

func (s *TrackerService) exists(id string) bool {
	for _, t := range s.store.Snapshot().Items {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (s *TrackerService) publishChange(ctx context.Context, op string, snap store.State) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, op, len(snap.Items), snap.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			log.FieldOperation, op, log.FieldError, err)
		// Don't fail the request, the collection is saved locally
	}
}

// Close releases the publisher connection if one was configured.
func (s *TrackerService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
