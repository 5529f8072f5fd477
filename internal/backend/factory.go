package backend

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/storage/bolt"
	"saldo/internal/storage/memory"
	"saldo/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case BoltBackend:
		return f.createBoltBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Slot:    memory.New(),
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

func (f *DefaultFactory) createBoltBackend(config Config) (*Result, error) {
	slot, err := bolt.New(config.BoltDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize BoltDB slot: %w", err)
	}

	f.logger.Info("Initialized bolt backend", "db_path", config.BoltDBPath)

	return &Result{
		Slot:    slot,
		Cleanup: slot.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	slot, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Slot:    slot,
		Cleanup: slot.Close,
	}, nil
}
