package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/stockcast/schema"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 weeks ago", "3 months ago", "1 day ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "3 days ago" into a time.Time before now.
// Calendar units keep the wall clock so a relative as-of lands on the same hour.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch unit := matches[2]; unit {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(-value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit: %s", unit)
	}
}

// Define the regular expression to capture "N [units]".
var humanDurationRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute)s?$`)

// ParseTTL converts strings like "6h" or "2 days" into a positive time.Duration.
// It first tries Go's built-in time.ParseDuration, then falls back to the
// human-readable form.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("duration must be positive (received %s)", d)
		}
		return d, nil
	}

	matches := humanDurationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	var unit time.Duration
	switch matches[2] {
	case "week":
		unit = 7 * 24 * time.Hour
	case "day":
		unit = 24 * time.Hour
	case "hour":
		unit = time.Hour
	default:
		unit = time.Minute
	}

	if value == 0 {
		return 0, errors.New("zero duration is not useful")
	}
	return time.Duration(value) * unit, nil
}

// ParseAsOf parses the reference instant of a forecast. It accepts RFC3339,
// a plain date (read as noon in loc) or a relative time such as "2 weeks ago".
func ParseAsOf(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(schema.DayLabelLayout, s, loc); err == nil {
		return t.Add(12 * time.Hour), nil
	}
	if t, err := ParseRelativeTime(s, now.In(loc)); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid as-of '%s'. Expected RFC3339, YYYY-MM-DD or 'N days ago'", s)
}
