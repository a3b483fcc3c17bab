package service

import "time"

// isoMillis is the fixed-width timestamp layout used wherever ordering
// matters: every value is UTC with exactly three fractional digits, so
// lexicographic comparison equals chronological comparison.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
