// Package store holds the database schema shared by the registry stores.
// The schema is idempotent so the server can apply it at startup and test
// containers can apply it per run without coordination.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the registry tables. fee_balance is a singleton row so the
// accumulated fees live under the same transactional boundary as the domain
// records they are collected from.
const Schema = `
CREATE TABLE IF NOT EXISTS address_records (
	address     TEXT PRIMARY KEY,
	content_ref TEXT NOT NULL,
	owner       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS domain_records (
	name       TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	owner      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domain_records_owner ON domain_records (owner);

CREATE TABLE IF NOT EXISTS fee_balance (
	id      SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

INSERT INTO fee_balance (id, balance) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;

CREATE TABLE IF NOT EXISTS notifications_outbox (
	id           UUID PRIMARY KEY,
	event_type   TEXT NOT NULL,
	entity_key   TEXT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_notifications_outbox_unpublished
	ON notifications_outbox (created_at) WHERE published_at IS NULL;
`

// ApplySchema runs the schema against db.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply registry schema: %w", err)
	}
	return nil
}
