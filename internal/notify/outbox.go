package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nameledger/internal/registry/models"
	txcontext "nameledger/pkg/platform/tx"
)

// PostgresOutbox implements event emission using the transactional outbox
// pattern. Emit joins the ambient SQL transaction when one is carried in the
// context, so the outbox row commits or rolls back together with the registry
// mutation that produced it. The relay worker publishes committed rows to
// Kafka and marks them published.
type PostgresOutbox struct {
	db *sql.DB
}

// NewPostgresOutbox creates an outbox store on the given database.
func NewPostgresOutbox(db *sql.DB) *PostgresOutbox {
	return &PostgresOutbox{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (o *PostgresOutbox) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return o.db
}

// Emit writes the event to the outbox table for later publication.
func (o *PostgresOutbox) Emit(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	query := `
		INSERT INTO notifications_outbox (id, event_type, entity_key, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = o.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Type()),
		event.Key(),
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit committed entries that have not been
// published yet, oldest first.
func (o *PostgresOutbox) FetchUnpublished(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, event_type, entity_key, payload, created_at
		FROM notifications_outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := o.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var eventType string
		if err := rows.Scan(&e.ID, &eventType, &e.Key, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		e.EventType = models.EventType(eventType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the entry so it is not relayed again.
func (o *PostgresOutbox) MarkPublished(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications_outbox SET published_at = $1 WHERE id = $2`
	if _, err := o.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("mark outbox entry published: %w", err)
	}
	return nil
}
