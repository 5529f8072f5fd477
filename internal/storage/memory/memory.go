package memory

import (
	"context"
	"sync"

	"saldo/internal/core"
)

// Slot keeps the collection in process memory only. It is the default
// backend and the test double for the persistent slot.
type Slot struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Slot {
	return &Slot{}
}

// NewSeeded returns a slot preloaded with the given collection.
func NewSeeded(items []core.Transaction) *Slot {
	s := &Slot{}
	s.items = append(s.items, items...)
	return s
}

func (s *Slot) Load(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Slot) Save(_ context.Context, items []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]core.Transaction, len(items))
	copy(s.items, items)
	return nil
}
