package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must surface it identically for both cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when the accounts unique index rejects an insert.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountNotFound is returned for lookups of accounts that do not exist,
	// including stale tokens whose subject has vanished.
	ErrAccountNotFound = errors.New("account not found")
)

// ValidationError reports every failing field of a request, not just the
// first one encountered.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid fields: " + strings.Join(keys, ", ")
}
