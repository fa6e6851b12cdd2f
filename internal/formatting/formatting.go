package formatting

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "Jan 2, 2006, 03:04 PM"
	dayLabelLayout = "Mon, Jan 2"

	// Unavailable is rendered for a duration that does not parse.
	Unavailable = "n/a"
)

var ErrEmptyDuration = errors.New("empty duration")

// ParseDurationMillis reads the raw Call Duration text as a decimal count of
// milliseconds. Fractions are floored.
func ParseDurationMillis(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmptyDuration
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("parse duration %q: out of range", raw)
	}
	return int64(math.Floor(f)), nil
}

// DurationSeconds converts the raw duration to whole seconds, floor(ms/1000).
// Every total, average and per-record rendering goes through here.
func DurationSeconds(raw string) (int64, error) {
	ms, err := ParseDurationMillis(raw)
	if err != nil {
		return 0, err
	}
	return ms / 1000, nil
}

// FormatDuration renders one call's duration: H:MM:SS when there is at least
// an hour, otherwise "M : SS". The spaced form is what existing exports carry.
func FormatDuration(raw string) string {
	secs, err := DurationSeconds(raw)
	if err != nil {
		return Unavailable
	}
	return FormatSeconds(secs)
}

// FormatSeconds is FormatDuration for an already converted value.
func FormatSeconds(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d : %02d", m, s)
}

// FormatClock renders HH:MM:SS with hours left unbounded.
func FormatClock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatMinutesSeconds renders M:SS after rounding to the nearest second.
func FormatMinutesSeconds(secs float64) string {
	if secs < 0 || math.IsNaN(secs) {
		secs = 0
	}
	total := int64(math.Round(secs))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDate renders epoch milliseconds as display text in loc.
func FormatDate(epochMs int64, loc *time.Location) string {
	return time.UnixMilli(epochMs).In(location(loc)).Format(dateLayout)
}

// DayLabel is the short label used on daily chart buckets.
func DayLabel(day time.Time) string {
	return day.Format(dayLabelLayout)
}

// StartOfDay returns local midnight of the day containing epochMs.
func StartOfDay(epochMs int64, loc *time.Location) time.Time {
	t := time.UnixMilli(epochMs).In(location(loc))
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
