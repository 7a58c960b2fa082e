// Package directory serves role-scoped listings over the accounts table.
// It reads public profile fields only; password hashes never leave the
// auth store's queries, and this package's queries do not select them.
package directory

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"alumniconnect/internal/auth"
)

type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Filter struct {
	Role  auth.Role
	Name  string
	Limit int
}

type Store interface {
	List(ctx context.Context, f Filter) ([]Profile, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Profile, error) {
	clauses := []string{"role = $1"}
	args := []interface{}{f.Role}
	idx := 2
	if f.Name != "" {
		clauses = append(clauses, "full_name ILIKE $"+strconv.Itoa(idx))
		args = append(args, "%"+f.Name+"%")
		idx++
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := "SELECT id, full_name, email, role, phone, created_at FROM accounts WHERE " +
		strings.Join(clauses, " AND ") + " ORDER BY full_name ASC LIMIT " + strconv.Itoa(limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
