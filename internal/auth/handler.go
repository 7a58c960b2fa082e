package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"alumniconnect/internal/httpx"
)

type Handler struct {
	Gate   *Gate
	Logger *slog.Logger
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Gate.Register(r.Context(), in); err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			httpx.FieldErrors(w, verr.Fields)
		case errors.Is(err, ErrEmailTaken):
			httpx.Error(w, http.StatusConflict, ErrEmailTaken.Error())
		default:
			h.Logger.Error("register account", "err", err)
			httpx.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"msg": "account created"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	account, token, err := h.Gate.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		h.Logger.Error("login", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Secure and SameSite are left unset; TLS and cross-site policy are a
	// deployment concern in front of this service.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(TokenTTL),
		HttpOnly: true,
	})
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"user": account.Summary()})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	account, err := h.Gate.GetIdentity(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httpx.Error(w, http.StatusNotFound, ErrAccountNotFound.Error())
			return
		}
		h.Logger.Error("load identity", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

// Logout clears the session cookie. The token itself stays valid until its
// natural expiry; there is no server-side revocation.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
