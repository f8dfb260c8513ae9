// Package notify delivers registry notifications to external listeners.
//
// Notifications are written to a transactional outbox in the same database
// transaction as the state change they describe, then relayed to Kafka by a
// background worker. Listeners are strictly downstream: the registry never
// reads notifications back, and a failed relay attempt is retried on the
// next poll without affecting registry state.
package notify

import (
	"time"

	"github.com/google/uuid"

	"nameledger/internal/registry/models"
)

// Entry is one outbox row awaiting publication.
type Entry struct {
	ID        uuid.UUID
	EventType models.EventType
	Key       string
	Payload   []byte
	CreatedAt time.Time
}
