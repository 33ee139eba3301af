package quota

import (
	"fmt"
	"time"
)

type WindowKind string

const (
	// WindowDaily rolls at midnight in the ledger's location (world chat).
	WindowDaily WindowKind = "daily"
	// WindowWeekly rolls at the start of the ISO week (problem posts).
	WindowWeekly WindowKind = "weekly"
)

// windowID identifies the window containing t. The id is computed at the
// moment of consumption, so two sends straddling midnight land in
// different windows.
func windowID(kind WindowKind, t time.Time) string {
	switch kind {
	case WindowWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}

// windowReset returns the instant the window containing t ends.
func windowReset(kind WindowKind, t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch kind {
	case WindowWeekly:
		// next Monday 00:00
		days := (8 - int(t.Weekday())) % 7
		if days == 0 {
			days = 7
		}
		return midnight.AddDate(0, 0, days)
	default:
		return midnight.AddDate(0, 0, 1)
	}
}
