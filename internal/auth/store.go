package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Store interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

// Create inserts the account relying on the unique email index for conflict
// detection. There is deliberately no prior existence check: two concurrent
// inserts for the same email must race at the index, where exactly one wins.
func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	const q = `
		INSERT INTO accounts (id, full_name, email, password_hash, role, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, q, a.ID, a.FullName, a.Email, a.PasswordHash, a.Role, a.Phone, a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
		SELECT id, full_name, email, password_hash, role, phone, created_at
		FROM accounts WHERE email = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	const q = `
		SELECT id, full_name, email, password_hash, role, phone, created_at
		FROM accounts WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Account, error) {
	a := &Account{}
	if err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.Role, &a.Phone, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

type seedFile struct {
	Accounts []struct {
		FullName string `yaml:"full_name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
		Phone    string `yaml:"phone"`
	} `yaml:"accounts"`
}

// SeedFromFile bootstraps accounts (typically the first admin) from a YAML
// file. Existing emails are skipped so the seed is idempotent across restarts.
func SeedFromFile(ctx context.Context, store Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return err
	}
	for _, entry := range sf.Accounts {
		role, ok := ParseRole(entry.Role)
		if !ok || entry.Email == "" || entry.Password == "" {
			continue
		}
		if _, err := store.GetByEmail(ctx, entry.Email); err == nil {
			continue
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), hashCost)
		if err != nil {
			return err
		}
		a := &Account{
			FullName:     entry.FullName,
			Email:        entry.Email,
			PasswordHash: string(hash),
			Role:         role,
			Phone:        entry.Phone,
		}
		if err := store.Create(ctx, a); err != nil && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}
	return nil
}
