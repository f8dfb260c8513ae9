package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nameledger/internal/registry/models"
	"nameledger/pkg/platform/circuit"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Publisher delivers a serialized event to the downstream transport.
type Publisher interface {
	Publish(ctx context.Context, eventType models.EventType, key string, payload []byte) error
}

// OutboxStore is the slice of the outbox the relay consumes.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

// Relay polls the outbox and publishes committed entries. Run one relay per
// process; entries that fail to publish stay unmarked and are retried on the
// next poll. A circuit breaker guards the publisher so a dead broker costs
// one probe per poll instead of a full batch of timeouts.
type Relay struct {
	outbox    OutboxStore
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	breaker   *circuit.Breaker
}

// RelayOption customizes relay behavior.
type RelayOption func(*Relay)

// WithPollInterval overrides how often the relay polls the outbox.
func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		r.interval = d
	}
}

// WithBatchSize overrides how many entries a single poll drains.
func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		r.batchSize = n
	}
}

// WithBreaker overrides the publisher circuit breaker.
func WithBreaker(b *circuit.Breaker) RelayOption {
	return func(r *Relay) {
		r.breaker = b
	}
}

// NewRelay constructs a relay over the outbox and publisher.
func NewRelay(outbox OutboxStore, publisher Publisher, logger *slog.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
		breaker:   circuit.New("notifications"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Drain(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes one batch of unpublished entries. Exported so tests and
// shutdown paths can flush without waiting for the ticker.
//
// While the breaker is open only the first entry is attempted as a probe;
// everything else stays queued until a probe succeeds.
func (r *Relay) Drain(ctx context.Context) error {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return err
	}

	for i, entry := range entries {
		if i > 0 && r.breaker.IsOpen() {
			break
		}

		if err := r.publisher.Publish(ctx, entry.EventType, entry.Key, entry.Payload); err != nil {
			_, change := r.breaker.RecordFailure()
			if change.Opened {
				r.logger.WarnContext(ctx, "notification publisher circuit opened",
					"breaker", r.breaker.Name(),
					"entry_id", entry.ID,
					"error", err,
				)
				break
			}
			r.logger.WarnContext(ctx, "notification publish failed, will retry",
				"entry_id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			if r.breaker.IsOpen() {
				break
			}
			continue
		}

		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "notification publisher circuit closed",
				"breaker", r.breaker.Name(),
			)
		}
		if err := r.outbox.MarkPublished(ctx, entry.ID); err != nil {
			return err
		}
	}
	return nil
}
