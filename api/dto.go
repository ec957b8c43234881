/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

POINT VALUES:
  Point values cross the wire as JSON strings ("15", "-10") so clients
  never see float artifacts. Entry category and bonus fields parse with
  the tolerant rule (non-numeric becomes zero); an explicit approval
  point value must parse or the request is rejected.

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"sort"

	"github.com/sarsor/leaderboard/app"
	"github.com/sarsor/leaderboard/engine"
)

// =============================================================================
// LEADERBOARD & ENTRIES
// =============================================================================

// RowDTO is one leaderboard row.
type RowDTO struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Base  string `json:"base_points"`
	Bonus string `json:"bonus_points"`
	Total string `json:"total_points"`
}

// EntryDTO is one point log row.
type EntryDTO struct {
	Name       string            `json:"name"`
	Date       string            `json:"date"`
	Categories map[string]string `json:"categories"`
	Base       string            `json:"base_points"`
	Bonus      string            `json:"bonus_points"`
	Total      string            `json:"total_points"`
}

// SubmitEntryRequest creates or replaces a point entry.
type SubmitEntryRequest struct {
	Name       string            `json:"name"`
	Date       string            `json:"date,omitempty"` // defaults to today
	Categories map[string]string `json:"categories"`
	Bonus      string            `json:"bonus,omitempty"`
}

// =============================================================================
// AWARDS & CELEBRATION
// =============================================================================

// CheckResultDTO reports what a mutation awarded; drives the client's
// celebration effect and refresh.
type CheckResultDTO struct {
	Entry         EntryDTO         `json:"entry"`
	Rank          int              `json:"rank"`
	Streak        StreakDTO        `json:"streak"`
	NewBadges     []string         `json:"new_badges"`
	NewMilestones []string         `json:"new_milestones"`
	Achievements  []AchievementHit `json:"achievements"`
	Celebrate     bool             `json:"celebrate"`
}

// AchievementHit is one achievement criterion satisfied by a mutation.
type AchievementHit struct {
	Category    string `json:"category"`
	Achievement string `json:"achievement"`
	Count       int    `json:"count"`
	Tier        string `json:"tier,omitempty"`
}

// StreakDTO is a participant's streak state.
type StreakDTO struct {
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

// =============================================================================
// BADGES
// =============================================================================

// BadgeRequest awards or revokes a badge.
type BadgeRequest struct {
	Name  string `json:"name"`
	Badge string `json:"badge"`
}

// BadgeCatalogDTO is one configured badge for the admin award UI.
type BadgeCatalogDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// CHALLENGES
// =============================================================================

// ChallengeDTO is one challenge with its workflow state.
type ChallengeDTO struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	BonusPoints  string               `json:"bonus_points"`
	Participants []string             `json:"participants"`
	Completed    []CompletedRecordDTO `json:"completed"`
	Pending      []string             `json:"pending"`
}

// CompletedRecordDTO is one approved completion.
type CompletedRecordDTO struct {
	ID          string `json:"id"`
	Participant string `json:"participant"`
	Points      string `json:"points"`
	Date        string `json:"date"`
}

// CreateChallengeRequest creates a challenge.
type CreateChallengeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BonusPoints string `json:"bonus_points"`
}

// JoinRequest queues a participant's completion request.
type JoinRequest struct {
	Participant string `json:"participant"`
}

// DecideRequest approves or rejects a pending request. Points override the
// challenge's configured bonus when set.
type DecideRequest struct {
	Participant string `json:"participant"`
	Points      string `json:"points,omitempty"`
}

// =============================================================================
// ADMIN
// =============================================================================

// LoginRequest checks the admin secret.
type LoginRequest struct {
	Secret string `json:"secret"`
}

// PunishmentRequest applies a named penalty to a participant.
type PunishmentRequest struct {
	Participant string `json:"participant"`
	Punishment  string `json:"punishment"`
}

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	PointsToday        string        `json:"points_today"`
	ActiveParticipants int           `json:"active_participants"`
	TrailingTotals     []DayTotalDTO `json:"trailing_totals"`
}

// DayTotalDTO is one cell of the trailing activity series.
type DayTotalDTO struct {
	Date  string `json:"date"`
	Total string `json:"total"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRowDTOs(rows []engine.CumulativeRow) []RowDTO {
	dtos := make([]RowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = RowDTO{
			Rank:  row.Rank,
			Name:  row.Name,
			Base:  row.Base.String(),
			Bonus: row.Bonus.String(),
			Total: row.Total.String(),
		}
	}
	return dtos
}

func toEntryDTO(e engine.Entry) EntryDTO {
	cats := make(map[string]string, len(e.Categories))
	for k, v := range e.Categories {
		cats[k] = v.String()
	}
	return EntryDTO{
		Name:       e.Name,
		Date:       e.Day.String(),
		Categories: cats,
		Base:       e.Base.String(),
		Bonus:      e.Bonus.String(),
		Total:      e.Total.String(),
	}
}

func toStreakDTO(s engine.StreakState) StreakDTO {
	return StreakDTO{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		LastActivityDate: s.LastActivityDate,
	}
}

func toCheckResultDTO(r app.CheckResult) CheckResultDTO {
	dto := CheckResultDTO{
		Entry:         toEntryDTO(r.Entry),
		Rank:          r.Rank,
		Streak:        toStreakDTO(r.Streak),
		NewBadges:     r.NewBadges,
		NewMilestones: r.NewMilestones,
		Achievements:  []AchievementHit{},
		Celebrate:     r.Celebrate(),
	}
	if dto.NewBadges == nil {
		dto.NewBadges = []string{}
	}
	if dto.NewMilestones == nil {
		dto.NewMilestones = []string{}
	}
	for _, t := range r.Achievements {
		dto.Achievements = append(dto.Achievements, AchievementHit{
			Category:    t.Category,
			Achievement: t.Achievement,
			Count:       t.Count,
			Tier:        t.Tier,
		})
	}
	return dto
}

func toChallengeDTOs(data engine.ChallengeData) []ChallengeDTO {
	dtos := make([]ChallengeDTO, 0, len(data.Challenges))
	for name, ch := range data.Challenges {
		dto := ChallengeDTO{
			Name:         name,
			Description:  ch.Description,
			BonusPoints:  ch.BonusPoints.String(),
			Participants: ch.Participants,
			Completed:    []CompletedRecordDTO{},
			Pending:      data.Pending[name],
		}
		if dto.Participants == nil {
			dto.Participants = []string{}
		}
		if dto.Pending == nil {
			dto.Pending = []string{}
		}
		for _, rec := range ch.Completed {
			dto.Completed = append(dto.Completed, CompletedRecordDTO{
				ID:          rec.ID,
				Participant: rec.Participant,
				Points:      rec.Points.String(),
				Date:        rec.Date,
			})
		}
		dtos = append(dtos, dto)
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Name < dtos[j].Name })
	return dtos
}
