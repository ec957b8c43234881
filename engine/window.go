package engine

// =============================================================================
// WINDOW - Time-range selector for the leaderboard
// =============================================================================

// Window scopes the leaderboard to a time range anchored at a reference day.
type Window string

const (
	// WindowMonth covers the calendar month containing the reference day.
	WindowMonth Window = "month"

	// WindowWeek covers the trailing 7 days ending at the reference day.
	WindowWeek Window = "week"

	// WindowAllTime covers the whole log.
	WindowAllTime Window = "all"
)

// ParseWindow maps a selector string to a Window.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowMonth, WindowWeek, WindowAllTime:
		return Window(s), nil
	case "":
		return WindowMonth, nil
	}
	return "", ErrUnknownWindow
}

// Contains reports whether a day falls inside the window anchored at asOf.
func (w Window) Contains(d, asOf Day) bool {
	switch w {
	case WindowWeek:
		start := asOf.AddDays(-6)
		return d.AfterOrEqual(start) && d.BeforeOrEqual(asOf)
	case WindowMonth:
		return d.AfterOrEqual(StartOfMonth(asOf)) && d.BeforeOrEqual(EndOfMonth(asOf))
	default:
		return true
	}
}
