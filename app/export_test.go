package app

import "github.com/sarsor/leaderboard/engine"

// SetToday pins the application clock for tests.
func (a *App) SetToday(f func() engine.Day) { a.today = f }
