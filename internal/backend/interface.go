// Package backend selects and constructs the storage slot the store
// persists through, based on configuration.
package backend

import (
	"context"

	"saldo/internal/storage"
)

// BackendType identifies a storage slot implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	BoltBackend   BackendType = "bolt"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) String() string {
	return string(t)
}

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, BoltBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the slot instance and optional cleanup function.
type Result struct {
	Slot    storage.Slot
	Cleanup CleanupFunc
}

// Factory creates storage slots based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// BoltDB configuration
	BoltDBPath string

	// SQLite configuration
	SQLiteDBPath string
}
