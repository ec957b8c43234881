/*
handlers.go - HTTP API handlers for the leaderboard engine

PURPOSE:
  Exposes the scoring and gamification engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the application
  context.

ENDPOINTS:
  Leaderboard:
    GET    /api/leaderboard?window=month|week|all  Ranked cumulative rows

  Entries:
    GET    /api/entries                  Full point log
    POST   /api/entries                  Append an entry (admin)
    PUT    /api/entries                  Replace a (name, day) snapshot (admin)
    POST   /api/entries/initialize       Zero entries for the roster (admin)

  Participants:
    GET    /api/participants/{name}/streak
    GET    /api/participants/{name}/badges
    GET    /api/participants/{name}/achievements

  Badges:
    GET    /api/badges                   Full ledger + catalog
    POST   /api/badges                   Award (admin)
    DELETE /api/badges                   Revoke (admin)

  Challenges:
    GET    /api/challenges
    POST   /api/challenges               Create (admin)
    DELETE /api/challenges/{name}        Remove (admin)
    POST   /api/challenges/{name}/join
    POST   /api/challenges/{name}/approve  (admin)
    POST   /api/challenges/{name}/reject   (admin)

  Admin:
    POST   /api/admin/login              Credential check (throttled)
    POST   /api/admin/punishments        Negative bonus entry (admin)
    GET    /api/admin/stats              Dashboard summary (admin)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Bad admin secret
  - 404: Unknown challenge / missing pending request
  - 429: Login throttled
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/app"
	"github.com/sarsor/leaderboard/auth"
	"github.com/sarsor/leaderboard/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	App *app.App
}

// NewHandler creates a new handler over the application context.
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// =============================================================================
// LEADERBOARD
// =============================================================================

// GetLeaderboard returns the ranked cumulative rows for a window.
// GET /api/leaderboard?window=month|week|all
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	window, err := engine.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown window selector", err)
		return
	}

	rows, err := h.App.Leaderboard(r.Context(), window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toRowDTOs(rows))
}

// =============================================================================
// ENTRIES
// =============================================================================

// ListEntries returns the full normalized point log.
// GET /api/entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.App.Entries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitEntry appends a point entry and runs the award pipeline.
// POST /api/entries
func (h *Handler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	req, day, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	result, err := h.App.SubmitEntry(r.Context(), req.Name, day, parseCategoryPoints(req.Categories), engine.ParsePoints(req.Bonus))
	if err != nil {
		writeEngineError(w, "Failed to submit entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCheckResultDTO(result))
}

// ReplaceEntry swaps every row for (name, day) with the given snapshot.
// PUT /api/entries
func (h *Handler) ReplaceEntry(w http.ResponseWriter, r *http.Request) {
	req, day, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	result, err := h.App.ReplaceEntry(r.Context(), req.Name, day, parseCategoryPoints(req.Categories), engine.ParsePoints(req.Bonus))
	if err != nil {
		writeEngineError(w, "Failed to replace entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResultDTO(result))
}

// InitializePeriod appends one zero entry per configured participant.
// POST /api/entries/initialize
func (h *Handler) InitializePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.App.InitializePeriod(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to initialize period", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "initialized"})
}

func (h *Handler) decodeEntry(w http.ResponseWriter, r *http.Request) (SubmitEntryRequest, engine.Day, bool) {
	var req SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, engine.Day{}, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Participant name is required", nil)
		return req, engine.Day{}, false
	}

	day := engine.Today()
	if req.Date != "" {
		parsed, err := engine.ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return req, engine.Day{}, false
		}
		day = parsed
	}
	return req, day, true
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

// GetStreak returns a participant's streak state.
// GET /api/participants/{name}/streak
func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	state, err := h.App.StreakOf(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load streak", err)
		return
	}
	writeJSON(w, http.StatusOK, toStreakDTO(state))
}

// GetBadges returns a participant's badge list.
// GET /api/participants/{name}/badges
func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	badges, err := h.App.BadgesOf(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load badges", err)
		return
	}
	if badges == nil {
		badges = []string{}
	}
	writeJSON(w, http.StatusOK, badges)
}

// GetAchievements returns a participant's trigger counts by category.
// GET /api/participants/{name}/achievements
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	records, err := h.App.AchievementsOf(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// =============================================================================
// BADGES
// =============================================================================

// ListBadges returns the full ledger plus the configured catalog.
// GET /api/badges
func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.App.AllBadges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load badges", err)
		return
	}

	catalog := make([]BadgeCatalogDTO, 0)
	for _, b := range h.App.Config().Badges {
		catalog = append(catalog, BadgeCatalogDTO{Name: b.Name, Description: b.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ledger":  ledger,
		"catalog": catalog,
	})
}

// AwardBadge adds a badge to a participant. Duplicate awards are no-ops.
// POST /api/badges
func (h *Handler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req BadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Badge == "" {
		writeError(w, http.StatusBadRequest, "Participant and badge are required", nil)
		return
	}

	added, err := h.App.AwardBadge(r.Context(), req.Name, req.Badge)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to award badge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"awarded": added})
}

// RevokeBadge removes a badge from a participant.
// DELETE /api/badges
func (h *Handler) RevokeBadge(w http.ResponseWriter, r *http.Request) {
	var req BadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.App.RevokeBadge(r.Context(), req.Name, req.Badge); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revoke badge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ListAllAchievements returns every participant's trigger counts plus the
// configured rule table.
// GET /api/achievements
func (h *Handler) ListAllAchievements(w http.ResponseWriter, r *http.Request) {
	records, err := h.App.AllAchievements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"rules":   h.App.AchievementRules(),
	})
}

// =============================================================================
// CHALLENGES
// =============================================================================

// ListChallenges returns all challenges with workflow state.
// GET /api/challenges
func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	data, err := h.App.Challenges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load challenges", err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeDTOs(data))
}

// CreateChallenge creates a challenge.
// POST /api/challenges
func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Challenge name is required", nil)
		return
	}

	err := h.App.AddChallenge(r.Context(), req.Name, req.Description, engine.ParsePoints(req.BonusPoints))
	if errors.Is(err, engine.ErrChallengeExists) {
		writeError(w, http.StatusConflict, "Challenge already exists", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create challenge", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// DeleteChallenge removes a challenge and its pending queue.
// DELETE /api/challenges/{name}
func (h *Handler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.App.RemoveChallenge(r.Context(), name)
	if errors.Is(err, engine.ErrChallengeNotFound) {
		writeError(w, http.StatusNotFound, "Challenge not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove challenge", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// JoinChallenge queues a participant's completion request. Idempotent.
// POST /api/challenges/{name}/join
func (h *Handler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Participant == "" {
		writeError(w, http.StatusBadRequest, "Participant is required", nil)
		return
	}

	queued, err := h.App.RequestJoin(r.Context(), req.Participant, name)
	if errors.Is(err, engine.ErrChallengeNotFound) {
		writeError(w, http.StatusNotFound, "Challenge not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to request join", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"queued": queued})
}

// ApproveChallenge grants a pending request and awards the bonus entry.
// POST /api/challenges/{name}/approve
func (h *Handler) ApproveChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Participant == "" {
		writeError(w, http.StatusBadRequest, "Participant is required", nil)
		return
	}

	var points decimal.Decimal
	if req.Points != "" {
		parsed, err := decimal.NewFromString(req.Points)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid point value", err)
			return
		}
		points = parsed
	} else {
		// Default to the challenge's configured bonus.
		data, err := h.App.Challenges(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load challenges", err)
			return
		}
		ch, ok := data.Challenges[name]
		if !ok {
			writeError(w, http.StatusNotFound, "Challenge not found", nil)
			return
		}
		points = ch.BonusPoints
	}

	result, err := h.App.ApproveChallenge(r.Context(), req.Participant, name, points)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "No pending request for participant", err)
		return
	}
	if err != nil {
		writeEngineError(w, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResultDTO(result))
}

// RejectChallenge discards a pending request.
// POST /api/challenges/{name}/reject
func (h *Handler) RejectChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.App.RejectChallenge(r.Context(), req.Participant, name)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "No pending request for participant", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// =============================================================================
// ADMIN
// =============================================================================

// Login checks the admin secret. Throttled to one attempt per window.
// POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.App.Gate().Login(req.Secret)
	if errors.Is(err, auth.ErrThrottled) {
		writeError(w, http.StatusTooManyRequests, "Too many attempts, wait before retrying", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect admin secret", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// ApplyPunishment writes the named penalty as a negative bonus entry.
// POST /api/admin/punishments
func (h *Handler) ApplyPunishment(w http.ResponseWriter, r *http.Request) {
	var req PunishmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Participant == "" {
		writeError(w, http.StatusBadRequest, "Participant is required", nil)
		return
	}

	result, err := h.App.ApplyPunishment(r.Context(), req.Participant, req.Punishment)
	if errors.Is(err, engine.ErrUnknownPunishment) {
		writeError(w, http.StatusBadRequest, "Unknown punishment", err)
		return
	}
	if err != nil {
		writeEngineError(w, "Failed to apply punishment", err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckResultDTO(result))
}

// GetStats returns the admin dashboard summary.
// GET /api/admin/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.App.AdminStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}

	dto := StatsDTO{
		PointsToday:        stats.PointsToday.String(),
		ActiveParticipants: stats.ActiveParticipants,
		TrailingTotals:     []DayTotalDTO{},
	}
	for _, dt := range stats.TrailingTotals {
		dto.TrailingTotals = append(dto.TrailingTotals, DayTotalDTO{
			Date:  dt.Day.String(),
			Total: dt.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseCategoryPoints applies the tolerant parse rule per category.
func parseCategoryPoints(raw map[string]string) map[string]decimal.Decimal {
	points := make(map[string]decimal.Decimal, len(raw))
	for cat, v := range raw {
		points[cat] = engine.ParsePoints(v)
	}
	return points
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine validation failures to 400 and everything
// else to 500.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	if engine.IsClientError(err) {
		writeError(w, http.StatusBadRequest, message, err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}
