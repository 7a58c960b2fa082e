package events

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound = errors.New("event not found")
	// ErrAlreadyRSVPed is returned when the (event, account) pair already
	// exists; the unique index resolves concurrent RSVPs.
	ErrAlreadyRSVPed = errors.New("already RSVPed to this event")
)

type Store interface {
	Create(ctx context.Context, e *Event) error
	List(ctx context.Context, f Filter) ([]Event, error)
	Get(ctx context.Context, id uuid.UUID) (*Event, error)
	AddRSVP(ctx context.Context, eventID, accountID uuid.UUID) error
	ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]RSVP, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.CreatedAt = time.Now().UTC()
	const q = `
		INSERT INTO events (id, title, description, location, starts_at, tags, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, q,
		e.ID, e.Title, e.Description, e.Location, e.StartsAt,
		pq.Array(e.Tags), e.CreatedBy, e.CreatedAt)
	return err
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Event, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1
	if !f.Since.IsZero() {
		clauses = append(clauses, "starts_at >= $"+itoa(idx))
		args = append(args, f.Since)
		idx++
	}
	if !f.Until.IsZero() {
		clauses = append(clauses, "starts_at <= $"+itoa(idx))
		args = append(args, f.Until)
		idx++
	}
	if f.Tag != "" {
		clauses = append(clauses, "$"+itoa(idx)+" = ANY(tags)")
		args = append(args, f.Tag)
		idx++
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := "SELECT id, title, description, location, starts_at, tags, created_by, created_at" +
		" FROM events WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY starts_at ASC LIMIT " + itoa(limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var e Event
		var tags pq.StringArray
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location,
			&e.StartsAt, &tags, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Tags = []string(tags)
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	const q = `
		SELECT id, title, description, location, starts_at, tags, created_by, created_at
		FROM events WHERE id = $1
	`
	var e Event
	var tags pq.StringArray
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Title, &e.Description,
		&e.Location, &e.StartsAt, &tags, &e.CreatedBy, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	e.Tags = []string(tags)
	return &e, nil
}

func (s *PostgresStore) AddRSVP(ctx context.Context, eventID, accountID uuid.UUID) error {
	const q = `
		INSERT INTO event_rsvps (event_id, account_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, q, eventID, accountID, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case uniqueViolation:
				return ErrAlreadyRSVPed
			case "23503": // foreign key: the event does not exist
				return ErrEventNotFound
			}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]RSVP, error) {
	const q = `
		SELECT event_id, account_id, created_at FROM event_rsvps
		WHERE event_id = $1 ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []RSVP
	for rows.Next() {
		var r RSVP
		if err := rows.Scan(&r.EventID, &r.AccountID, &r.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
