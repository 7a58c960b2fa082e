package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"alumniconnect/internal/auth"
	"alumniconnect/internal/directory"
	"alumniconnect/internal/donations"
	"alumniconnect/internal/events"
)

func NewRouter(
	logger *slog.Logger,
	gate *auth.Gate,
	eventStore events.Store,
	donationStore donations.Store,
	directoryStore directory.Store,
) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Auth
	authHandler := &auth.Handler{Gate: gate, Logger: logger}
	mux.HandleFunc("/auth/register", authHandler.Register)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/logout", authHandler.Logout)

	secured := auth.SessionMiddleware(gate, logger)
	mux.Handle("/auth/me", secured(http.HandlerFunc(authHandler.Me)))

	// Events
	eventsHandler := &events.CollectionHandler{Store: eventStore, Logger: logger}
	rsvpHandler := &events.DetailHandler{Store: eventStore, Logger: logger}
	mux.Handle("/api/v1/events", secured(eventsHandler))
	mux.Handle("/api/v1/events/", secured(rsvpHandler))

	// Donations
	donationsHandler := &donations.Handler{Store: donationStore, Logger: logger}
	mux.Handle("/api/v1/donations", secured(donationsHandler))

	// Directory
	directoryHandler := &directory.Handler{Store: directoryStore, Logger: logger}
	mux.Handle("/api/v1/directory/", secured(directoryHandler))

	// CORS wrapper (simple, for local UI/tools).
	return withCORS(mux)
}
