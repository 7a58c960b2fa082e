package directory

import (
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"alumniconnect/internal/auth"
	"alumniconnect/internal/httpx"
)

// Handler serves /api/v1/directory/{alumni|students|admins}. The alumni and
// student listings are open to any session; the admin listing is admin-only.
type Handler struct {
	Store  Store
	Logger *slog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Path is /api/v1/directory/{segment}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var role auth.Role
	switch parts[3] {
	case "alumni":
		role = auth.RoleAlumni
	case "students":
		role = auth.RoleStudent
	case "admins":
		if id.Role != auth.RoleAdmin {
			httpx.Error(w, http.StatusForbidden, "insufficient role")
			return
		}
		role = auth.RoleAdmin
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	filter := Filter{Role: role, Name: q.Get("name")}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = l
		}
	}
	profiles, err := h.Store.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("list directory", "err", err, "role", role)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profiles == nil {
		profiles = []Profile{}
	}
	httpx.JSON(w, http.StatusOK, profiles)
}
