package address

import (
	"context"
	"sync"

	"nameledger/internal/registry/models"
	"nameledger/pkg/platform/sentinel"
)

// MemoryStore keeps address records in a map. Records are write-once, so the
// store exposes no update or delete path.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.AddressRecord
}

// NewMemory constructs an empty in-memory address store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.AddressRecord)}
}

// Create inserts the record. Returns sentinel.ErrConflict when the address
// already has a record.
func (s *MemoryStore) Create(_ context.Context, rec *models.AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Address]; ok {
		return sentinel.ErrConflict
	}
	s.records[rec.Address] = *rec
	return nil
}

// Find returns the record for the address, or sentinel.ErrNotFound.
func (s *MemoryStore) Find(_ context.Context, address string) (*models.AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}
