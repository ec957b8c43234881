/*
scoring.go - Cumulative scoring engine

PURPOSE:
  Derives the leaderboard from the full entry log for a time window. Nothing
  here is persisted; every call recomputes from scratch. The log is small
  enough that an incremental index would be premature (see DESIGN.md).

RECONCILIATION:
  Several entries can exist for one (participant, day): a corrected form
  submission, a punishment, a challenge bonus. Per day, the last-written
  base/bonus pair is the authoritative snapshot of "today's form", while
  total points are summed so same-day bonuses and punishments accumulate.

RANKING:
  Standard competition ranking: a participant's rank is the number of
  strictly greater cumulative totals, plus one. Ties share the minimum rank;
  the next distinct total resumes at the count-based position.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// dayAggregate is the reconciled view of one (participant, day) group.
type dayAggregate struct {
	day   Day
	base  decimal.Decimal // last-written snapshot
	bonus decimal.Decimal // last-written snapshot
	total decimal.Decimal // summed
}

// Scoreboard computes the cumulative leaderboard over the window anchored at
// asOf. Participants with no entry in the window are absent from the result.
// An empty window yields an empty slice, never an error.
func Scoreboard(entries []Entry, w Window, asOf Day) []CumulativeRow {
	// 1. Filter to window, group by (name, day).
	type groupKey struct {
		name string
		day  string
	}
	groups := make(map[groupKey]*dayAggregate)
	order := make(map[string]int) // first-seen order for deterministic iteration
	for _, e := range entries {
		if !w.Contains(e.Day, asOf) {
			continue
		}
		k := groupKey{name: e.Name, day: e.Day.String()}
		g, ok := groups[k]
		if !ok {
			g = &dayAggregate{day: e.Day, total: decimal.Zero}
			groups[k] = g
		}
		// Last write wins for the snapshot, totals accumulate.
		g.base = e.Base
		g.bonus = e.Bonus
		g.total = g.total.Add(e.Total)
		if _, seen := order[e.Name]; !seen {
			order[e.Name] = len(order)
		}
	}
	if len(groups) == 0 {
		return []CumulativeRow{}
	}

	// 2. Fold day aggregates into per-participant rows. The displayed
	// base/bonus come from the participant's most recent day in the window.
	type accum struct {
		latest Day
		base   decimal.Decimal
		bonus  decimal.Decimal
		total  decimal.Decimal
	}
	byName := make(map[string]*accum)
	for k, g := range groups {
		a, ok := byName[k.name]
		if !ok {
			a = &accum{latest: g.day, base: g.base, bonus: g.bonus, total: decimal.Zero}
			byName[k.name] = a
		}
		if g.day.AfterOrEqual(a.latest) {
			a.latest = g.day
			a.base = g.base
			a.bonus = g.bonus
		}
		a.total = a.total.Add(g.total)
	}

	rows := make([]CumulativeRow, 0, len(byName))
	for name, a := range byName {
		rows = append(rows, CumulativeRow{
			Name:  name,
			Base:  a.base,
			Bonus: a.bonus,
			Total: a.total,
		})
	}

	// 3. Competition ranking: strictly greater totals + 1.
	for i := range rows {
		rank := 1
		for j := range rows {
			if rows[j].Total.GreaterThan(rows[i].Total) {
				rank++
			}
		}
		rows[i].Rank = rank
	}

	// 4. Deterministic order: rank, then name.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rank != rows[j].Rank {
			return rows[i].Rank < rows[j].Rank
		}
		return rows[i].Name < rows[j].Name
	})

	return rows
}

// RankOf returns the rank of a participant on a scoreboard, or 0 when the
// participant has no row in the window.
func RankOf(rows []CumulativeRow, name string) int {
	for _, r := range rows {
		if r.Name == name {
			return r.Rank
		}
	}
	return 0
}

// AllTimeTotal sums every entry total for a participant across the whole log.
// Milestones key off this, not a window.
func AllTimeTotal(entries []Entry, name string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Name == name {
			total = total.Add(e.Total)
		}
	}
	return total
}
