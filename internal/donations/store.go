package donations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, d *Donation) error
	ListAll(ctx context.Context, limit int) ([]Donation, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Donation, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *Donation) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()
	const q = `
		INSERT INTO donations (id, account_id, amount_cents, note, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, q, d.ID, d.AccountID, d.AmountCents, d.Note, d.Status, d.CreatedAt)
	return err
}

func (s *PostgresStore) ListAll(ctx context.Context, limit int) ([]Donation, error) {
	const q = `
		SELECT id, account_id, amount_cents, note, status, created_at
		FROM donations ORDER BY created_at DESC LIMIT $1
	`
	return s.query(ctx, q, clampLimit(limit))
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Donation, error) {
	const q = `
		SELECT id, account_id, amount_cents, note, status, created_at
		FROM donations WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2
	`
	return s.query(ctx, q, accountID, clampLimit(limit))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...interface{}) ([]Donation, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Donation
	for rows.Next() {
		var d Donation
		if err := rows.Scan(&d.ID, &d.AccountID, &d.AmountCents, &d.Note, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
