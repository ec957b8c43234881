/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.Store on SQLite for deployments that prefer a single
  database file over the plain-text directory. The write model keeps the
  same whole-document semantics as the file store: saving a ledger replaces
  its tables inside one transaction.

KEY TABLES:
  entries:              Point log, one row per entry, categories as JSON
  badges:               Badge ledger, ordered per participant
  achievements:         Trigger counters
  streaks / milestones: Streak state and awarded tiers
  challenges, challenge_participants, challenge_completed,
  challenge_pending:    Challenge workflow state

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better crash
  recovery. The mutex serializes whole-document writes so the HTTP layer
  cannot interleave two saves of the same ledger.

USAGE:
  store, err := sqlite.New("./data/leaderboard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go:     Interface definitions
  - store/file:          Plain-text implementation
  - engine/store:        In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/sarsor/leaderboard/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ engine.Store = (*Store)(nil)

func (s *Store) migrate() error {
	schema := `
	-- Point log
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		base TEXT NOT NULL,
		bonus TEXT NOT NULL,
		total TEXT NOT NULL,
		categories_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_name_date ON entries(name, date);

	-- Badge ledger
	CREATE TABLE IF NOT EXISTS badges (
		participant TEXT NOT NULL,
		badge TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (participant, badge)
	);

	-- Achievement trigger counters
	CREATE TABLE IF NOT EXISTS achievements (
		participant TEXT NOT NULL,
		category TEXT NOT NULL,
		achievement TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (participant, category, achievement)
	);

	-- Streak state and milestone awards
	CREATE TABLE IF NOT EXISTS streaks (
		participant TEXT PRIMARY KEY,
		current_streak INTEGER NOT NULL,
		longest_streak INTEGER NOT NULL,
		last_activity_date TEXT
	);
	CREATE TABLE IF NOT EXISTS milestones (
		participant TEXT NOT NULL,
		tier TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (participant, tier)
	);

	-- Challenge workflow
	CREATE TABLE IF NOT EXISTS challenges (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		bonus_points TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS challenge_participants (
		challenge TEXT NOT NULL,
		participant TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (challenge, participant)
	);
	CREATE TABLE IF NOT EXISTS challenge_completed (
		id TEXT PRIMARY KEY,
		challenge TEXT NOT NULL,
		participant TEXT NOT NULL,
		points TEXT NOT NULL,
		date TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS challenge_pending (
		challenge TEXT NOT NULL,
		participant TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (challenge, participant)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY LOG
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertEntry(ctx, s.db, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, e engine.Entry) error {
	cats := make(map[string]string, len(e.Categories))
	for k, v := range e.Categories {
		cats[k] = v.String()
	}
	catsJSON, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO entries (name, date, base, bonus, total, categories_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Day.String(), e.Base.String(), e.Bonus.String(), e.Total.String(), string(catsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *Store) ReplaceEntry(ctx context.Context, day engine.Day, name string, e engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE name = ? AND date = ?`, name, day.String()); err != nil {
			return fmt.Errorf("delete entry rows: %w", err)
		}
		return insertEntry(ctx, tx, e)
	})
}

func (s *Store) LoadEntries(ctx context.Context) ([]engine.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, date, base, bonus, total, categories_json
		FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.Entry
	for rows.Next() {
		var name, date, base, bonus, total, catsJSON string
		if err := rows.Scan(&name, &date, &base, &bonus, &total, &catsJSON); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		day, err := engine.ParseDay(date)
		if err != nil {
			continue // unparseable date: skip the row, don't fail the load
		}
		raw := make(map[string]string)
		_ = json.Unmarshal([]byte(catsJSON), &raw)
		cats := make(map[string]decimal.Decimal, len(raw))
		for k, v := range raw {
			cats[k] = engine.ParsePoints(v)
		}
		entries = append(entries, engine.Entry{
			Name:       name,
			Day:        day,
			Categories: cats,
			Base:       engine.ParsePoints(base),
			Bonus:      engine.ParsePoints(bonus),
			Total:      engine.ParsePoints(total),
		})
	}
	return entries, rows.Err()
}

// =============================================================================
// BADGE LEDGER
// =============================================================================

func (s *Store) LoadBadges(ctx context.Context) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT participant, badge FROM badges ORDER BY participant, position`)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	badges := make(map[string][]string)
	for rows.Next() {
		var participant, badge string
		if err := rows.Scan(&participant, &badge); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges[participant] = append(badges[participant], badge)
	}
	return badges, rows.Err()
}

func (s *Store) SaveBadges(ctx context.Context, badges map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM badges`); err != nil {
			return err
		}
		for participant, list := range badges {
			for i, badge := range list {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO badges (participant, badge, position) VALUES (?, ?, ?)`,
					participant, badge, i,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// =============================================================================
// ACHIEVEMENTS
// =============================================================================

func (s *Store) LoadAchievements(ctx context.Context) (engine.AchievementData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT participant, category, achievement, count FROM achievements`)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	data := make(engine.AchievementData)
	for rows.Next() {
		var participant, category, achievement string
		var count int
		if err := rows.Scan(&participant, &category, &achievement, &count); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		if data[participant] == nil {
			data[participant] = make(map[string]map[string]int)
		}
		if data[participant][category] == nil {
			data[participant][category] = make(map[string]int)
		}
		data[participant][category][achievement] = count
	}
	return data, rows.Err()
}

func (s *Store) SaveAchievements(ctx context.Context, data engine.AchievementData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM achievements`); err != nil {
			return err
		}
		for participant, categories := range data {
			for category, counts := range categories {
				for achievement, count := range counts {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO achievements (participant, category, achievement, count)
						VALUES (?, ?, ?, ?)`,
						participant, category, achievement, count,
					); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// =============================================================================
// STREAKS & MILESTONES
// =============================================================================

func (s *Store) LoadStreaks(ctx context.Context) (engine.StreakData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := engine.NewStreakData()

	rows, err := s.db.QueryContext(ctx, `
		SELECT participant, current_streak, longest_streak, COALESCE(last_activity_date, '')
		FROM streaks`)
	if err != nil {
		return data, fmt.Errorf("query streaks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var participant string
		var state engine.StreakState
		if err := rows.Scan(&participant, &state.CurrentStreak, &state.LongestStreak, &state.LastActivityDate); err != nil {
			return data, fmt.Errorf("scan streak: %w", err)
		}
		data.Participants[participant] = state
	}
	if err := rows.Err(); err != nil {
		return data, err
	}

	tierRows, err := s.db.QueryContext(ctx, `
		SELECT participant, tier FROM milestones ORDER BY participant, position`)
	if err != nil {
		return data, fmt.Errorf("query milestones: %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var participant, tier string
		if err := tierRows.Scan(&participant, &tier); err != nil {
			return data, fmt.Errorf("scan milestone: %w", err)
		}
		data.MilestonesAwarded[participant] = append(data.MilestonesAwarded[participant], tier)
	}
	return data, tierRows.Err()
}

func (s *Store) SaveStreaks(ctx context.Context, data engine.StreakData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM streaks`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM milestones`); err != nil {
			return err
		}
		for participant, state := range data.Participants {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO streaks (participant, current_streak, longest_streak, last_activity_date)
				VALUES (?, ?, ?, ?)`,
				participant, state.CurrentStreak, state.LongestStreak, state.LastActivityDate,
			); err != nil {
				return err
			}
		}
		for participant, tiers := range data.MilestonesAwarded {
			for i, tier := range tiers {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO milestones (participant, tier, position) VALUES (?, ?, ?)`,
					participant, tier, i,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// =============================================================================
// CHALLENGES
// =============================================================================

func (s *Store) LoadChallenges(ctx context.Context) (engine.ChallengeData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := engine.NewChallengeData()

	rows, err := s.db.QueryContext(ctx, `SELECT name, description, bonus_points FROM challenges`)
	if err != nil {
		return data, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, description, bonus string
		if err := rows.Scan(&name, &description, &bonus); err != nil {
			return data, fmt.Errorf("scan challenge: %w", err)
		}
		data.Challenges[name] = engine.Challenge{
			Name:         name,
			Description:  description,
			BonusPoints:  engine.ParsePoints(bonus),
			Participants: []string{},
			Completed:    []engine.CompletedRecord{},
		}
	}
	if err := rows.Err(); err != nil {
		return data, err
	}

	pRows, err := s.db.QueryContext(ctx, `
		SELECT challenge, participant FROM challenge_participants ORDER BY challenge, position`)
	if err != nil {
		return data, fmt.Errorf("query challenge participants: %w", err)
	}
	defer pRows.Close()
	for pRows.Next() {
		var challenge, participant string
		if err := pRows.Scan(&challenge, &participant); err != nil {
			return data, fmt.Errorf("scan challenge participant: %w", err)
		}
		if ch, ok := data.Challenges[challenge]; ok {
			ch.Participants = append(ch.Participants, participant)
			data.Challenges[challenge] = ch
		}
	}
	if err := pRows.Err(); err != nil {
		return data, err
	}

	cRows, err := s.db.QueryContext(ctx, `
		SELECT id, challenge, participant, points, date FROM challenge_completed ORDER BY rowid`)
	if err != nil {
		return data, fmt.Errorf("query completed records: %w", err)
	}
	defer cRows.Close()
	for cRows.Next() {
		var id, challenge, participant, points, date string
		if err := cRows.Scan(&id, &challenge, &participant, &points, &date); err != nil {
			return data, fmt.Errorf("scan completed record: %w", err)
		}
		if ch, ok := data.Challenges[challenge]; ok {
			ch.Completed = append(ch.Completed, engine.CompletedRecord{
				ID:          id,
				Participant: participant,
				Points:      engine.ParsePoints(points),
				Date:        date,
			})
			data.Challenges[challenge] = ch
		}
	}
	if err := cRows.Err(); err != nil {
		return data, err
	}

	qRows, err := s.db.QueryContext(ctx, `
		SELECT challenge, participant FROM challenge_pending ORDER BY challenge, position`)
	if err != nil {
		return data, fmt.Errorf("query pending requests: %w", err)
	}
	defer qRows.Close()
	for qRows.Next() {
		var challenge, participant string
		if err := qRows.Scan(&challenge, &participant); err != nil {
			return data, fmt.Errorf("scan pending request: %w", err)
		}
		data.Pending[challenge] = append(data.Pending[challenge], participant)
	}
	return data, qRows.Err()
}

func (s *Store) SaveChallenges(ctx context.Context, data engine.ChallengeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"challenges", "challenge_participants", "challenge_completed", "challenge_pending"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		for name, ch := range data.Challenges {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO challenges (name, description, bonus_points) VALUES (?, ?, ?)`,
				name, ch.Description, ch.BonusPoints.String(),
			); err != nil {
				return err
			}
			for i, participant := range ch.Participants {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO challenge_participants (challenge, participant, position)
					VALUES (?, ?, ?)`,
					name, participant, i,
				); err != nil {
					return err
				}
			}
			for _, record := range ch.Completed {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO challenge_completed (id, challenge, participant, points, date)
					VALUES (?, ?, ?, ?, ?)`,
					record.ID, name, record.Participant, record.Points.String(), record.Date,
				); err != nil {
					return err
				}
			}
		}
		for challenge, queue := range data.Pending {
			for i, participant := range queue {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO challenge_pending (challenge, participant, position)
					VALUES (?, ?, ?)`,
					challenge, participant, i,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
