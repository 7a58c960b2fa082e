package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"alumniconnect/internal/auth"
	"alumniconnect/internal/httpx"
)

// CollectionHandler serves /api/v1/events: GET lists upcoming events for any
// session, POST creates one and is admin-only.
type CollectionHandler struct {
	Store  Store
	Logger *slog.Logger
}

func (h *CollectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *CollectionHandler) list(w http.ResponseWriter, r *http.Request) {
	// Authentication is handled by middleware; we just ensure it ran.
	if _, ok := auth.IdentityFromContext(r.Context()); !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	q := r.URL.Query()
	filter := Filter{Tag: q.Get("tag")}
	if sinceStr := q.Get("since"); sinceStr != "" {
		if t, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			filter.Since = t
		}
	}
	if untilStr := q.Get("until"); untilStr != "" {
		if t, err := time.Parse(time.RFC3339, untilStr); err == nil {
			filter.Until = t
		}
	}
	evts, err := h.Store.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("list events", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if evts == nil {
		evts = []Event{}
	}
	httpx.JSON(w, http.StatusOK, evts)
}

func (h *CollectionHandler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if id.Role != auth.RoleAdmin {
		httpx.Error(w, http.StatusForbidden, "insufficient role")
		return
	}
	var e Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if e.Title == "" || e.StartsAt.IsZero() {
		httpx.Error(w, http.StatusBadRequest, "title and starts_at are required")
		return
	}
	e.CreatedBy = id.ID
	if err := h.Store.Create(r.Context(), &e); err != nil {
		h.Logger.Error("create event", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

// DetailHandler serves /api/v1/events/{id}/rsvp (POST, any session) and
// /api/v1/events/{id}/rsvps (GET, admin).
type DetailHandler struct {
	Store  Store
	Logger *slog.Logger
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Path is /api/v1/events/{id}/rsvp[s]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 5 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	eventID, err := uuid.Parse(parts[3])
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}
	switch parts[4] {
	case "rsvp":
		h.rsvp(w, r, eventID)
	case "rsvps":
		h.listRSVPs(w, r, eventID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DetailHandler) rsvp(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.Store.AddRSVP(r.Context(), eventID, id.ID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRSVPed):
			httpx.Error(w, http.StatusConflict, ErrAlreadyRSVPed.Error())
		case errors.Is(err, ErrEventNotFound):
			httpx.Error(w, http.StatusNotFound, ErrEventNotFound.Error())
		default:
			h.Logger.Error("add rsvp", "err", err, "event", eventID)
			httpx.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"msg": "rsvp recorded"})
}

func (h *DetailHandler) listRSVPs(w http.ResponseWriter, r *http.Request, eventID uuid.UUID) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if id.Role != auth.RoleAdmin {
		httpx.Error(w, http.StatusForbidden, "insufficient role")
		return
	}
	rsvps, err := h.Store.ListRSVPs(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("list rsvps", "err", err, "event", eventID)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rsvps == nil {
		rsvps = []RSVP{}
	}
	httpx.JSON(w, http.StatusOK, rsvps)
}
