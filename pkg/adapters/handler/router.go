package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shortlyhq/shortly/pkg/config"
	"github.com/shortlyhq/shortly/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.LinkService) http.Handler {
	h := NewHTTPHandler(service, cfg.BaseURL)
	mw := NewMiddleware(cfg)
	authHandler := NewAuthHandler(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Shortening is open to anonymous callers; identity is attached when a
	// valid token is present so the link gets an owner.
	mux.Handle("POST /api/v1/links", mw.OptionalAuth(http.HandlerFunc(h.Create)))

	// Owner-scoped routes
	mux.Handle("GET /api/v1/links", mw.RequireAuth(http.HandlerFunc(h.List)))
	mux.Handle("PUT /api/v1/links/{short_code}", mw.RequireAuth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/v1/links/{short_code}", mw.RequireAuth(http.HandlerFunc(h.Delete)))

	// Redirect goes last so it only matches single-segment paths
	mux.HandleFunc("GET /{short_code}", h.Redirect)

	return mux
}
