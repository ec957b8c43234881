/*
Package file provides the plain-text store: a CSV entry log plus JSON
documents for the derived-state ledgers.

PURPOSE:
  Everything this store writes is meant to be opened in a text editor or a
  spreadsheet. The entry log is one CSV with a column per scoring category;
  badges, achievements, streaks, and challenges are each a single JSON
  document.

WRITE MODEL:
  Every mutation is a whole-file overwrite: read the file into memory,
  apply the change, write the file back. There is no partial write or
  transaction log; the consistency guarantee is last-writer-wins at file
  granularity, which is the system's stated single-admin model.

CORRUPTION RECOVERY:
  A missing or unparseable file loads as the empty default, never an error.
  Within the CSV, a row whose date cannot be normalized is filtered out;
  a point field that fails to parse contributes zero.

SEE ALSO:
  - engine/store.go: Interface definitions
  - store/sqlite:    Database-backed alternative
*/
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/engine"
)

const (
	entriesFile      = "entries.csv"
	badgesFile       = "badges.json"
	achievementsFile = "achievements.json"
	streaksFile      = "streaks.json"
	challengesFile   = "challenges.json"
)

// Fixed CSV columns; everything after them is a scoring category.
var fixedColumns = []string{"Name", "Date", "Base Points", "Bonus Points", "Total Points"}

// Store persists all leaderboard state as plain-text files in one directory.
type Store struct {
	dir        string
	categories []string
	mu         sync.Mutex
}

// New creates the store rooted at dir. The category list fixes the CSV
// column order for writes; reads are header-driven and tolerate other
// orders.
func New(dir string, categories []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, categories: categories}, nil
}

var _ engine.Store = (*Store)(nil)

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// =============================================================================
// ENTRY LOG (CSV)
// =============================================================================

func (s *Store) AppendEntry(_ context.Context, e engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.readEntries()
	entries = append(entries, e)
	return s.writeEntries(entries)
}

func (s *Store) ReplaceEntry(_ context.Context, day engine.Day, name string, e engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.readEntries()
	kept := entries[:0]
	for _, existing := range entries {
		if existing.Name == name && existing.Day.Equal(day) {
			continue
		}
		kept = append(kept, existing)
	}
	kept = append(kept, e)
	return s.writeEntries(kept)
}

func (s *Store) LoadEntries(_ context.Context) ([]engine.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEntries(), nil
}

// readEntries loads and normalizes the CSV log. Malformed files and rows
// degrade to the empty/filtered state.
func (s *Store) readEntries() []engine.Entry {
	f, err := os.Open(s.path(entriesFile))
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil || len(records) < 1 {
		return nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	var categoryCols []string
	for _, h := range header {
		h = strings.TrimSpace(h)
		if !isFixedColumn(h) {
			categoryCols = append(categoryCols, h)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var entries []engine.Entry
	for _, row := range records[1:] {
		day, err := engine.ParseDay(field(row, "Date"))
		if err != nil {
			continue // unparseable date: row is rejected, not fatal
		}
		name := strings.TrimSpace(field(row, "Name"))
		if name == "" {
			continue
		}
		cats := make(map[string]decimal.Decimal, len(categoryCols))
		for _, c := range categoryCols {
			cats[c] = engine.ParsePoints(field(row, c))
		}
		entries = append(entries, engine.Entry{
			Name:       name,
			Day:        day,
			Categories: cats,
			Base:       engine.ParsePoints(field(row, "Base Points")),
			Bonus:      engine.ParsePoints(field(row, "Bonus Points")),
			Total:      engine.ParsePoints(field(row, "Total Points")),
		})
	}
	return entries
}

func (s *Store) writeEntries(entries []engine.Entry) error {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	header := append(append([]string{}, fixedColumns...), s.categories...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write entries header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Name,
			e.Day.String(),
			e.Base.String(),
			e.Bonus.String(),
			e.Total.String(),
		}
		for _, c := range s.categories {
			row = append(row, e.Categories[c].String())
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write entry row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush entries: %w", err)
	}
	if err := os.WriteFile(s.path(entriesFile), []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", entriesFile, err)
	}
	return nil
}

func isFixedColumn(name string) bool {
	for _, c := range fixedColumns {
		if c == name {
			return true
		}
	}
	return false
}

// =============================================================================
// DERIVED-STATE DOCUMENTS (JSON)
// =============================================================================

func (s *Store) LoadBadges(_ context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	badges := make(map[string][]string)
	s.readJSON(badgesFile, &badges)
	return badges, nil
}

func (s *Store) SaveBadges(_ context.Context, badges map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(badgesFile, badges)
}

func (s *Store) LoadAchievements(_ context.Context) (engine.AchievementData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make(engine.AchievementData)
	s.readJSON(achievementsFile, &data)
	return data, nil
}

func (s *Store) SaveAchievements(_ context.Context, data engine.AchievementData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(achievementsFile, data)
}

func (s *Store) LoadStreaks(_ context.Context) (engine.StreakData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := engine.NewStreakData()
	s.readJSON(streaksFile, &data)
	if data.Participants == nil {
		data.Participants = make(map[string]engine.StreakState)
	}
	if data.MilestonesAwarded == nil {
		data.MilestonesAwarded = make(map[string][]string)
	}
	return data, nil
}

func (s *Store) SaveStreaks(_ context.Context, data engine.StreakData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(streaksFile, data)
}

func (s *Store) LoadChallenges(_ context.Context) (engine.ChallengeData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := engine.NewChallengeData()
	s.readJSON(challengesFile, &data)
	if data.Challenges == nil {
		data.Challenges = make(map[string]engine.Challenge)
	}
	if data.Pending == nil {
		data.Pending = make(map[string][]string)
	}
	return data, nil
}

func (s *Store) SaveChallenges(_ context.Context, data engine.ChallengeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(challengesFile, data)
}

// readJSON fills v from a JSON document. Missing or corrupt files leave v
// at its default; persistence problems never take the session down.
func (s *Store) readJSON(name string, v any) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func (s *Store) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
