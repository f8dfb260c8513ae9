package notify

import (
	"context"
	"sync"

	"nameledger/internal/registry/models"
)

// MemorySink collects emitted events in memory. It backs deployments without
// a database and doubles as the assertion point in service tests.
type MemorySink struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit records the event.
func (s *MemorySink) Emit(_ context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all recorded events in emission order.
func (s *MemorySink) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Event{}, s.events...)
}

// Clear drops all recorded events.
func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
