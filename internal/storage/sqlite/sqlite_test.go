package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"saldo/internal/core"
)

func newTestSlot(t *testing.T) *Slot {
	t.Helper()
	slot, err := New(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = slot.Close() })
	return slot
}

func TestLoadEmpty(t *testing.T) {
	slot := newTestSlot(t)

	items, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	slot := newTestSlot(t)
	ctx := context.Background()

	in := []core.Transaction{
		core.NewTransaction("Salary", 1000, core.Deposit, "2026-02-01"),
		core.NewTransaction("Rent", 500, core.Withdrawal, "2026-02-02"),
	}
	if err := slot.Save(ctx, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	// Rows created in the same second come back ordered by id, so match
	// by id instead of position.
	byID := make(map[string]core.Transaction, len(out))
	for _, item := range out {
		byID[item.ID] = item
	}
	for _, want := range in {
		if got, ok := byID[want.ID]; !ok || got != want {
			t.Errorf("item %s = %+v, want %+v", want.ID, got, want)
		}
	}
}

func TestSaveReplacesCollection(t *testing.T) {
	slot := newTestSlot(t)
	ctx := context.Background()

	first := []core.Transaction{core.NewTransaction("Salary", 1000, core.Deposit, "2026-02-01")}
	if err := slot.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := []core.Transaction{core.NewTransaction("Coffee", 3.5, core.Withdrawal, "2026-02-03")}
	if err := slot.Save(ctx, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(out) != 1 || out[0].Description != "Coffee" {
		t.Fatalf("save should replace the whole collection, got %+v", out)
	}
}
