package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nameledger/internal/registry/models"
	"nameledger/pkg/platform/sentinel"
	txcontext "nameledger/pkg/platform/tx"
)

// PostgresStore persists domain records and the fee balance in PostgreSQL.
// All methods join the ambient SQL transaction when one is carried in the
// context. Inside a transaction, Find locks the row so an owner check and
// the write that follows it see a stable record even under concurrent
// purchases and transfers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed domain store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) (querier, bool) {
	if tx, ok := txcontext.From(ctx); ok {
		return tx, true
	}
	return s.db, false
}

// Create inserts the record. Returns sentinel.ErrConflict when the name is
// already registered, including when a concurrent transaction wins the
// insert race.
func (s *PostgresStore) Create(ctx context.Context, rec *models.DomainRecord) error {
	query := `
		INSERT INTO domain_records (name, address, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
	`
	q, _ := s.execer(ctx)
	res, err := q.ExecContext(ctx, query, rec.Name, rec.Address, rec.Owner, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create domain record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create domain record: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

// Find returns the record for the name, or sentinel.ErrNotFound.
func (s *PostgresStore) Find(ctx context.Context, name string) (*models.DomainRecord, error) {
	query := `
		SELECT name, address, owner, created_at, updated_at
		FROM domain_records
		WHERE name = $1
	`
	q, inTx := s.execer(ctx)
	if inTx {
		query += ` FOR UPDATE`
	}

	var rec models.DomainRecord
	err := q.QueryRowContext(ctx, query, name).
		Scan(&rec.Name, &rec.Address, &rec.Owner, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find domain record: %w", err)
	}
	return &rec, nil
}

// Update overwrites the stored record. Returns sentinel.ErrNotFound when the
// name is not registered.
func (s *PostgresStore) Update(ctx context.Context, rec *models.DomainRecord) error {
	query := `
		UPDATE domain_records
		SET address = $2, owner = $3, updated_at = $4
		WHERE name = $1
	`
	q, _ := s.execer(ctx)
	res, err := q.ExecContext(ctx, query, rec.Name, rec.Address, rec.Owner, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update domain record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update domain record: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the record. Returns sentinel.ErrNotFound when the name is
// not registered.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	q, _ := s.execer(ctx)
	res, err := q.ExecContext(ctx, `DELETE FROM domain_records WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete domain record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete domain record: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Exists reports whether the name is registered.
func (s *PostgresStore) Exists(ctx context.Context, name string) (bool, error) {
	q, _ := s.execer(ctx)
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM domain_records WHERE name = $1)`, name).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check domain record: %w", err)
	}
	return exists, nil
}

// ListByOwner returns every domain owned by owner as a name to address
// mapping. The result carries no defined order.
func (s *PostgresStore) ListByOwner(ctx context.Context, owner string) (map[string]string, error) {
	q, _ := s.execer(ctx)
	rows, err := q.QueryContext(ctx, `SELECT name, address FROM domain_records WHERE owner = $1`, owner)
	if err != nil {
		return nil, fmt.Errorf("list domains by owner: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, address string
		if err := rows.Scan(&name, &address); err != nil {
			return nil, fmt.Errorf("scan domain record: %w", err)
		}
		out[name] = address
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain records: %w", err)
	}
	return out, nil
}

// AddFees increases the fee balance by amount.
func (s *PostgresStore) AddFees(ctx context.Context, amount uint64) error {
	q, _ := s.execer(ctx)
	_, err := q.ExecContext(ctx, `UPDATE fee_balance SET balance = balance + $1 WHERE id = 1`, int64(amount))
	if err != nil {
		return fmt.Errorf("add fees: %w", err)
	}
	return nil
}

// DeductFees decreases the fee balance by amount. Returns
// sentinel.ErrInsufficientFunds when the balance is lower than amount,
// leaving the balance untouched.
func (s *PostgresStore) DeductFees(ctx context.Context, amount uint64) error {
	query := `UPDATE fee_balance SET balance = balance - $1 WHERE id = 1 AND balance >= $1`
	q, _ := s.execer(ctx)
	res, err := q.ExecContext(ctx, query, int64(amount))
	if err != nil {
		return fmt.Errorf("deduct fees: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct fees: rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInsufficientFunds
	}
	return nil
}

// FeeBalance returns the current fee balance.
func (s *PostgresStore) FeeBalance(ctx context.Context) (uint64, error) {
	q, _ := s.execer(ctx)
	var balance int64
	err := q.QueryRowContext(ctx, `SELECT balance FROM fee_balance WHERE id = 1`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("read fee balance: %w", err)
	}
	return uint64(balance), nil
}
