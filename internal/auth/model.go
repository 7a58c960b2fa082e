package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole normalizes a caller-supplied role to the closed set. Matching is
// case-insensitive; the stored form is always lowercase.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAlumni:
		return RoleAlumni, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStudent:
		return RoleStudent, true
	}
	return "", false
}

type Account struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary is the safe subset returned by login. The hash is excluded from
// Account's JSON form already; Summary additionally drops phone and
// created_at, which login has no reason to echo.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

func (a *Account) Summary() Summary {
	return Summary{ID: a.ID, FullName: a.FullName, Email: a.Email, Role: a.Role}
}
