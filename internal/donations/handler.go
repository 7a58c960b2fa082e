package donations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"alumniconnect/internal/auth"
	"alumniconnect/internal/httpx"
)

// Handler serves /api/v1/donations. POST records a donation for the calling
// alumni/admin account; GET returns all donations for admins and the
// caller's own for everyone else.
type Handler struct {
	Store  Store
	Logger *slog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if id.Role != auth.RoleAlumni && id.Role != auth.RoleAdmin {
		httpx.Error(w, http.StatusForbidden, "insufficient role")
		return
	}
	var in struct {
		AmountCents int64  `json:"amount_cents"`
		Note        string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.AmountCents <= 0 {
		httpx.Error(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}
	d := &Donation{
		AccountID:   id.ID,
		AmountCents: in.AmountCents,
		Note:        in.Note,
		Status:      charge(in.AmountCents),
	}
	if err := h.Store.Create(r.Context(), d); err != nil {
		h.Logger.Error("record donation", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

// charge stands in for the payment gateway. It always succeeds; real
// processing happens outside this service.
func charge(amountCents int64) Status {
	return StatusCompleted
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}
	var (
		ds  []Donation
		err error
	)
	if id.Role == auth.RoleAdmin {
		ds, err = h.Store.ListAll(r.Context(), limit)
	} else {
		ds, err = h.Store.ListByAccount(r.Context(), id.ID, limit)
	}
	if err != nil {
		h.Logger.Error("list donations", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ds == nil {
		ds = []Donation{}
	}
	httpx.JSON(w, http.StatusOK, ds)
}
