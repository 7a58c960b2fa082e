package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"alumniconnect/internal/httpx"
)

// Identity is the claims-derived view of the caller attached to the request
// context. The role is the one embedded at issuance time; it is not
// re-checked against the store on every request.
type Identity struct {
	ID       uuid.UUID
	FullName string
	Role     Role
}

type contextKey string

const identityContextKey contextKey = "alumniconnect_identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// SessionCookie is the name of the HTTP-only cookie carrying the token.
const SessionCookie = "token"

// tokenFromRequest reads the session token from the cookie, falling back to
// a bearer Authorization header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// SessionMiddleware rejects requests without a valid session token and
// attaches the caller's identity to the context for downstream handlers.
// Missing, malformed and expired tokens all yield the same 401.
func SessionMiddleware(gate *Gate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			claims, err := gate.ParseToken(tokenStr)
			if err != nil {
				logger.Debug("reject session token", "err", err)
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			subject, err := uuid.Parse(claims.Subject)
			if err != nil {
				logger.Debug("reject session token", "err", err)
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			id := Identity{
				ID:       subject,
				FullName: claims.FullName,
				Role:     claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole narrows an authenticated route to the given roles. The caller
// is authenticated but not permitted, so this is 403 rather than 401.
func RequireRole(next http.HandlerFunc, roles ...Role) http.HandlerFunc {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			httpx.Error(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	}
}
