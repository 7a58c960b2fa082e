// Package auth implements the credential and session gate: account
// registration, login, session-token issuance and verification, and the
// role checks the rest of the API is guarded with.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenTTL is the fixed session lifetime. There is no server-side
	// revocation: a token stays valid until this window closes even if the
	// client logged out, which is an accepted limitation of the design.
	TokenTTL = 7 * 24 * time.Hour

	hashCost = 12

	minNameLen     = 3
	minPasswordLen = 6
)

// dummyHash is compared against when login hits an unknown email, so that
// the unknown-email and wrong-password paths cost the same bcrypt work and
// cannot be told apart by timing.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

type Gate struct {
	store  Store
	secret []byte
}

func NewGate(store Store, secret string) *Gate {
	return &Gate{store: store, secret: []byte(secret)}
}

type RegisterInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone_number"`
}

// Register validates the input, hashes the password and persists a new
// account. Every failing field is reported; nothing touches the store unless
// validation passes in full. A duplicate email surfaces as ErrEmailTaken
// regardless of whether it was present before the call or inserted
// concurrently during it.
func (g *Gate) Register(ctx context.Context, in RegisterInput) error {
	fields := map[string]string{}
	if len(in.FullName) < minNameLen {
		fields["full_name"] = "must be at least 3 characters"
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "must be at least 6 characters"
	}
	role, ok := ParseRole(in.Role)
	if !ok {
		fields["role"] = "must be one of alumni, admin, student"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a := &Account{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        in.Phone,
	}
	return g.store.Create(ctx, a)
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password both return ErrInvalidCredentials; the unknown-email path
// still performs a bcrypt comparison so the two are indistinguishable.
func (g *Gate) Login(ctx context.Context, email, password string) (*Account, string, error) {
	account, err := g.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := g.issueToken(account)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return account, token, nil
}

type Claims struct {
	FullName string `json:"name"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

func (g *Gate) issueToken(a *Account) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		FullName: a.FullName,
		Role:     a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(g.secret)
}

// ParseToken checks signature and expiry and returns the embedded claims.
// Malformed, tampered and expired tokens are all the same failure to the
// caller; only logs distinguish them.
func (g *Gate) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetIdentity loads the account behind an already-verified subject. The
// account can legitimately be gone if it was removed after the token was
// issued; that stale-token case is ErrAccountNotFound, not an auth failure.
func (g *Gate) GetIdentity(ctx context.Context, id Identity) (*Account, error) {
	return g.store.GetByID(ctx, id.ID)
}
