// Package store owns the canonical transaction collection, its one-level
// undo/redo history and the filter/pagination state. Commands mutate the
// state and persist the resulting collection through the storage slot;
// derived views are computed by the pure selectors in this package.
package store

import (
	"context"
	"log/slog"
	"sync"

	"saldo/internal/core"
	"saldo/internal/storage"
)

const (
	All         TypeFilter = "ALL"
	Deposits    TypeFilter = "DEPOSIT"
	Withdrawals TypeFilter = "WITHDRAWAL"
)

const DefaultPageSize = 5

type (
	TypeFilter string

	// Filters narrows which transactions the derived views show.
	// Zero values mean "no constraint".
	Filters struct {
		Search    string     `json:"search"`
		Type      TypeFilter `json:"type"`
		FromDate  string     `json:"fromDate"`
		ToDate    string     `json:"toDate"`
		MinAmount *float64   `json:"minAmount"`
		MaxAmount *float64   `json:"maxAmount"`
	}

	// State is an immutable snapshot of the store, the input to all
	// selectors. Version changes whenever any part of the state does.
	State struct {
		Items    []core.Transaction
		Filters  Filters
		Page     int
		PageSize int
		Version  uint64
	}
)

func DefaultFilters() Filters {
	return Filters{Type: All}
}

// Store is the single owner of the transaction state. Collections are
// treated as immutable values: every command builds a fresh slice, so the
// undo snapshots can share the old ones safely.
type Store struct {
	mu       sync.Mutex
	slot     storage.Slot
	items    []core.Transaction
	past     []core.Transaction // nil when there is nothing to undo
	future   []core.Transaction // nil when there is nothing to redo
	filters  Filters
	page     int
	pageSize int
	version  uint64
	subs     []func()
}

// New loads the initial collection from the slot. A load failure degrades
// to an empty collection; undo history always starts empty.
func New(ctx context.Context, slot storage.Slot, pageSize int) *Store {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	s := &Store{
		slot:     slot,
		filters:  DefaultFilters(),
		page:     1,
		pageSize: pageSize,
	}

	items, err := slot.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Loading transactions failed, starting empty", "error", err)
		items = nil
	}
	s.items = make([]core.Transaction, len(items))
	copy(s.items, items)

	return s
}

// Subscribe registers a callback invoked after every state change.
// Re-rendering is the subscriber's concern, not the store's.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state for the selectors.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]core.Transaction, len(s.items))
	copy(items, s.items)
	return State{
		Items:    items,
		Filters:  s.filters,
		Page:     s.page,
		PageSize: s.pageSize,
		Version:  s.version,
	}
}

// Add appends the transaction to the collection.
func (s *Store) Add(ctx context.Context, t core.Transaction) {
	s.mu.Lock()
	next := make([]core.Transaction, len(s.items), len(s.items)+1)
	copy(next, s.items)
	next = append(next, t)
	s.commitLocked(ctx, next)
	s.notify(s.unlock())
}

// Update replaces the record with a matching id. An unknown id is a
// silent no-op: no snapshot is taken and nothing is persisted.
func (s *Store) Update(ctx context.Context, t core.Transaction) {
	s.mu.Lock()
	idx := indexByID(s.items, t.ID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	next := make([]core.Transaction, len(s.items))
	copy(next, s.items)
	next[idx] = t
	s.commitLocked(ctx, next)
	s.notify(s.unlock())
}

// Delete removes the record with the given id; unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	if indexByID(s.items, id) < 0 {
		s.mu.Unlock()
		return
	}
	next := make([]core.Transaction, 0, len(s.items)-1)
	for _, t := range s.items {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.commitLocked(ctx, next)
	s.notify(s.unlock())
}

// ImportMany appends all transactions in one commit, so a single undo
// reverts the whole batch. An empty batch does not burn the undo slot.
func (s *Store) ImportMany(ctx context.Context, ts []core.Transaction) {
	if len(ts) == 0 {
		return
	}
	s.mu.Lock()
	next := make([]core.Transaction, len(s.items), len(s.items)+len(ts))
	copy(next, s.items)
	next = append(next, ts...)
	s.commitLocked(ctx, next)
	s.notify(s.unlock())
}

// Undo swaps the collection with the one-level past snapshot.
func (s *Store) Undo(ctx context.Context) {
	s.mu.Lock()
	if s.past == nil {
		s.mu.Unlock()
		return
	}
	s.future = s.items
	s.items = s.past
	s.past = nil
	s.version++
	s.persistLocked(ctx)
	s.notify(s.unlock())
}

// Redo swaps the collection with the one-level future snapshot.
func (s *Store) Redo(ctx context.Context) {
	s.mu.Lock()
	if s.future == nil {
		s.mu.Unlock()
		return
	}
	s.past = s.items
	s.items = s.future
	s.future = nil
	s.version++
	s.persistLocked(ctx)
	s.notify(s.unlock())
}

// CanUndo reports whether a past snapshot is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.past != nil
}

// CanRedo reports whether a future snapshot is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.future != nil
}

// SetSearch updates the search filter and resets pagination.
func (s *Store) SetSearch(search string) {
	s.mu.Lock()
	s.filters.Search = search
	s.page = 1
	s.version++
	s.notify(s.unlock())
}

// SetType updates the type filter and resets pagination.
func (s *Store) SetType(tf TypeFilter) {
	s.mu.Lock()
	s.filters.Type = tf
	s.page = 1
	s.version++
	s.notify(s.unlock())
}

// SetDateRange updates both date bounds ("" clears a bound) and resets
// pagination.
func (s *Store) SetDateRange(from, to string) {
	s.mu.Lock()
	s.filters.FromDate = from
	s.filters.ToDate = to
	s.page = 1
	s.version++
	s.notify(s.unlock())
}

// SetAmountRange updates both amount bounds (nil clears a bound) and
// resets pagination.
func (s *Store) SetAmountRange(min, max *float64) {
	s.mu.Lock()
	s.filters.MinAmount = min
	s.filters.MaxAmount = max
	s.page = 1
	s.version++
	s.notify(s.unlock())
}

// SetPage moves to the target page. The value is not range-checked here;
// an out-of-range page simply yields an empty slice from the selectors.
func (s *Store) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	s.version++
	s.notify(s.unlock())
}

// commitLocked installs the new collection, records the undo snapshot,
// clears the redo branch and persists. Callers hold the lock.
func (s *Store) commitLocked(ctx context.Context, next []core.Transaction) {
	s.past = s.items
	s.future = nil
	s.items = next
	s.version++
	s.persistLocked(ctx)
}

// persistLocked saves best-effort; the in-memory collection stays
// authoritative when the slot is unavailable.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.slot.Save(ctx, s.items); err != nil {
		slog.WarnContext(ctx, "Persisting transactions failed, continuing in memory",
			"error", err, "count", len(s.items))
	}
}

// unlock releases the mutex and returns the subscriber list so callbacks
// run outside the critical section.
func (s *Store) unlock() []func() {
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	return subs
}

func (s *Store) notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

func indexByID(items []core.Transaction, id string) int {
	for i, t := range items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
