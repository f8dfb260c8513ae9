package domain

import (
	"context"
	"sync"

	"nameledger/internal/registry/models"
	"nameledger/pkg/platform/sentinel"
)

// MemoryStore keeps domain records and the accumulated fee balance in memory.
// The fee balance lives here because purchases and withdrawals mutate it
// together with domain ownership inside one transaction boundary.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.DomainRecord
	fees    uint64
}

// NewMemory constructs an empty in-memory domain store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.DomainRecord)}
}

// Create inserts the record. Returns sentinel.ErrConflict when the name is
// already registered.
func (s *MemoryStore) Create(_ context.Context, rec *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Name]; ok {
		return sentinel.ErrConflict
	}
	s.records[rec.Name] = *rec
	return nil
}

// Find returns the record for the name, or sentinel.ErrNotFound.
func (s *MemoryStore) Find(_ context.Context, name string) (*models.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Update overwrites the stored record. Returns sentinel.ErrNotFound when the
// name is not registered.
func (s *MemoryStore) Update(_ context.Context, rec *models.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Name]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[rec.Name] = *rec
	return nil
}

// Delete removes the record. Returns sentinel.ErrNotFound when the name is
// not registered.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, name)
	return nil
}

// Exists reports whether the name is registered.
func (s *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[name]
	return ok, nil
}

// ListByOwner returns every domain owned by owner as a name to address
// mapping. The result carries no defined order.
func (s *MemoryStore) ListByOwner(_ context.Context, owner string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string)
	for name, rec := range s.records {
		if rec.Owner == owner {
			out[name] = rec.Address
		}
	}
	return out, nil
}

// AddFees increases the fee balance by amount.
func (s *MemoryStore) AddFees(_ context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees += amount
	return nil
}

// DeductFees decreases the fee balance by amount. Returns
// sentinel.ErrInsufficientFunds when the balance is lower than amount,
// leaving the balance untouched.
func (s *MemoryStore) DeductFees(_ context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fees < amount {
		return sentinel.ErrInsufficientFunds
	}
	s.fees -= amount
	return nil
}

// FeeBalance returns the current fee balance.
func (s *MemoryStore) FeeBalance(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fees, nil
}
