// Package bolt persists the transaction collection as a single JSON
// value in an embedded BoltDB file. The slot is a plain key/value pair,
// so the whole collection is written and read atomically.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	boltdb "github.com/boltdb/bolt"

	"saldo/internal/core"
)

const (
	bucketName = "transactions"
	slotKey    = "collection"
)

// Slot wraps a BoltDB database holding the persisted collection.
type Slot struct {
	db *boltdb.DB
}

// New opens (or creates) the database file and ensures the bucket exists.
func New(path string) (*Slot, error) {
	db, err := boltdb.Open(path, 0600, &boltdb.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *boltdb.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Slot{db: db}, nil
}

// Close releases the database file lock.
func (s *Slot) Close() error {
	return s.db.Close()
}

// Load reads the stored collection. A missing or unparsable value yields
// an empty collection, matching the slot contract.
func (s *Slot) Load(_ context.Context) ([]core.Transaction, error) {
	var items []core.Transaction

	err := s.db.View(func(tx *boltdb.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(slotKey))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &items); err != nil {
			items = nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}

	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// Save replaces the stored collection in one write.
func (s *Slot) Save(_ context.Context, items []core.Transaction) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	err = s.db.Update(func(tx *boltdb.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(slotKey), data)
	})
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}
