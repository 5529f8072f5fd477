package storage

import (
	"context"

	"saldo/internal/core"
)

// Slot is the outbound port for the persistent transaction slot.
// The store treats it as best-effort: a Load error degrades to an empty
// collection and a Save error is logged and swallowed.
type Slot interface {
	// Load returns the full persisted collection.
	Load(ctx context.Context) ([]core.Transaction, error)

	// Save replaces the persisted collection with the given one.
	Save(ctx context.Context, items []core.Transaction) error
}
