package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nameledger/internal/registry/models"
	"nameledger/pkg/platform/sentinel"
	txcontext "nameledger/pkg/platform/tx"
)

// PostgresStore persists address records in PostgreSQL. All methods join the
// ambient SQL transaction when one is carried in the context, so implicit
// allotment during domain assignment commits atomically with the domain row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed address store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts the record. Returns sentinel.ErrConflict when the address
// already has a record, including when a concurrent transaction wins the
// insert race.
func (s *PostgresStore) Create(ctx context.Context, rec *models.AddressRecord) error {
	query := `
		INSERT INTO address_records (address, content_ref, owner, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, rec.Address, rec.ContentRef, rec.Owner, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create address record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create address record: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

// Find returns the record for the address, or sentinel.ErrNotFound.
func (s *PostgresStore) Find(ctx context.Context, address string) (*models.AddressRecord, error) {
	query := `
		SELECT address, content_ref, owner, created_at
		FROM address_records
		WHERE address = $1
	`
	var rec models.AddressRecord
	err := s.execer(ctx).QueryRowContext(ctx, query, address).
		Scan(&rec.Address, &rec.ContentRef, &rec.Owner, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find address record: %w", err)
	}
	return &rec, nil
}
