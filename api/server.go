/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

AUTHENTICATION:
  Read endpoints are public. Mutating admin endpoints sit behind
  RequireAdmin, which compares the X-Admin-Secret header against the
  configured bcrypt hash. The login endpoint itself is throttled
  separately by the gate.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// AdminSecretHeader carries the shared admin secret on gated requests.
const AdminSecretHeader = "X-Admin-Secret"

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", AdminSecretHeader},
		AllowCredentials: true,
	}))

	admin := h.RequireAdmin

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", h.GetLeaderboard)

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.With(admin).Post("/", h.SubmitEntry)
			r.With(admin).Put("/", h.ReplaceEntry)
			r.With(admin).Post("/initialize", h.InitializePeriod)
		})

		// Participant routes
		r.Route("/participants/{name}", func(r chi.Router) {
			r.Get("/streak", h.GetStreak)
			r.Get("/badges", h.GetBadges)
			r.Get("/achievements", h.GetAchievements)
		})

		// Badge routes
		r.Route("/badges", func(r chi.Router) {
			r.Get("/", h.ListBadges)
			r.With(admin).Post("/", h.AwardBadge)
			r.With(admin).Delete("/", h.RevokeBadge)
		})

		r.Get("/achievements", h.ListAllAchievements)

		// Challenge routes
		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", h.ListChallenges)
			r.With(admin).Post("/", h.CreateChallenge)
			r.Route("/{name}", func(r chi.Router) {
				r.With(admin).Delete("/", h.DeleteChallenge)
				r.Post("/join", h.JoinChallenge)
				r.With(admin).Post("/approve", h.ApproveChallenge)
				r.With(admin).Post("/reject", h.RejectChallenge)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.With(admin).Post("/punishments", h.ApplyPunishment)
			r.With(admin).Get("/stats", h.GetStats)
		})
	})

	return r
}

// RequireAdmin gates a route on the X-Admin-Secret header. The check is
// unthrottled; only the login endpoint rate-limits attempts.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.App.Gate().Check(r.Header.Get(AdminSecretHeader)); err != nil {
			writeError(w, http.StatusUnauthorized, "Admin authorization required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
